package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPlaced          OrderStatus = "Placed"
	OrderStatusDispatched      OrderStatus = "Dispatched"
	OrderStatusDelivered       OrderStatus = "Delivered"
	OrderStatusCancelled       OrderStatus = "Cancelled"
	OrderStatusReturnRequested OrderStatus = "Return Requested"
	OrderStatusReturned        OrderStatus = "Returned"
)

// orderTransitions is the allowed next-state set per status. Cancelled and
// Returned are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPlaced:          {OrderStatusDispatched, OrderStatusCancelled},
	OrderStatusDispatched:      {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:       {OrderStatusReturnRequested},
	OrderStatusReturnRequested: {OrderStatusReturned},
}

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusDispatched, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusReturnRequested, OrderStatusReturned:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status machine allows moving from s
// to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is an immutable checkout snapshot; only its status (and, through
// the return flow, the return reason) changes after creation. Address and
// phone are captured at order time and never follow later profile edits.
type Order struct {
	ID             string          `json:"id" db:"id"`
	UserID         int64           `json:"user_id" db:"user_id"`
	UserName       string          `json:"user_name" db:"user_name"`
	Status         OrderStatus     `json:"status" db:"status"`
	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	GSTAmount      decimal.Decimal `json:"gst_amount" db:"gst_amount"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge" db:"delivery_charge"`
	DiscountCode   string          `json:"discount_code,omitempty" db:"discount_code"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Address        string          `json:"address" db:"address"`
	Phone          string          `json:"phone" db:"phone"`
	ReturnReason   string          `json:"return_reason,omitempty" db:"return_reason"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// OrderItem is a purchase-time snapshot of one cart line. Price is the unit
// price resolved when the order was placed and must never be recomputed from
// the current product. ProductID is a reference, not ownership: it may
// dangle once the product is deleted, in which case ProductDetails stays nil.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   string          `json:"order_id" db:"order_id"`
	ProductID int64           `json:"product_id" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Size      string          `json:"size" db:"size"`

	// ProductDetails is read-time enrichment for display, never persisted.
	ProductDetails *Product `json:"product_details,omitempty"`
}
