package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartItem is one line in a shopping cart. Its identity is the
// (product id, size) pair: the same product in two sizes yields two lines,
// while adding the same product and size again merges quantities.
type CartItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Size     string  `json:"size"`
}

// CartItemID builds the composite line identity. An empty size means
// "no size applies" and is part of the identity like any other value.
func CartItemID(productID int64, size string) string {
	return fmt.Sprintf("%d-%s", productID, size)
}

// LineTotal is the resolved unit price times quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotals is the derived money view of a cart, recomputed on every read.
type CartTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	GSTAmount      decimal.Decimal `json:"gst_amount"`
	DeliveryCharge decimal.Decimal `json:"delivery_charge"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
}
