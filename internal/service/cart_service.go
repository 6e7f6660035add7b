package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"stayraw/internal/domain"
	"stayraw/internal/repository"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDiscountCode = errors.New("invalid or expired discount code")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrCartLineNotFound    = errors.New("cart line not found")
)

// discountCodeErrorMessage is the state-level error surfaced on the cart
// after a failed apply attempt, mirroring the storefront copy.
const discountCodeErrorMessage = "Invalid or expired discount code."

var (
	gstRate     = decimal.New(5, -2)  // 5% GST on the subtotal
	deliveryFee = decimal.NewFromInt(50) // flat fee whenever the cart is non-empty
)

// CartView is a read-only snapshot of one cart. Totals are recomputed from
// the lines on every read, never cached.
type CartView struct {
	Items         []domain.CartItem `json:"items"`
	Totals        domain.CartTotals `json:"totals"`
	CartCount     int               `json:"cart_count"`
	AppliedCode   string            `json:"applied_code,omitempty"`
	DiscountError string            `json:"discount_error,omitempty"`
}

// CartService owns the per-user shopping carts for the duration of a
// checkout session. At most one discount code is applied at a time.
type CartService interface {
	Get(userID int64) CartView
	AddToCart(userID int64, product domain.Product, quantity int, size string) (CartView, error)
	SetQuantity(userID int64, lineID string, quantity int) (CartView, error)
	RemoveLine(userID int64, lineID string) CartView
	Clear(userID int64)
	ApplyDiscountCode(ctx context.Context, userID int64, code string) (CartView, error)
	RemoveDiscount(userID int64) CartView
}

// cart is the mutable per-user state behind the service lock.
type cart struct {
	items          []domain.CartItem
	appliedCode    string
	discountAmount decimal.Decimal
	discountError  string
}

type cartService struct {
	couponRepo repository.CouponRepository

	mu    sync.Mutex
	carts map[int64]*cart
}

// NewCartService creates a new instance of CartService
func NewCartService(couponRepo repository.CouponRepository) CartService {
	return &cartService{
		couponRepo: couponRepo,
		carts:      make(map[int64]*cart),
	}
}

func (s *cartService) Get(userID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view(s.cart(userID))
}

// AddToCart appends a new line for the (product, size) identity or, when one
// already exists, increments its quantity. Add does not clamp to stock; only
// SetQuantity does.
func (s *cartService) AddToCart(userID int64, product domain.Product, quantity int, size string) (CartView, error) {
	if quantity < 1 {
		return CartView{}, ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	lineID := domain.CartItemID(product.ID, size)

	for i := range c.items {
		if c.items[i].ID == lineID {
			c.items[i].Quantity += quantity
			return s.view(c), nil
		}
	}

	c.items = append(c.items, domain.CartItem{
		ID:       lineID,
		Product:  product,
		Quantity: quantity,
		Size:     size,
	})

	return s.view(c), nil
}

// SetQuantity sets a line's quantity clamped to [1, product stock]. A
// quantity of zero or less removes the line.
func (s *cartService) SetQuantity(userID int64, lineID string, quantity int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)

	if quantity <= 0 {
		c.remove(lineID)
		return s.view(c), nil
	}

	for i := range c.items {
		if c.items[i].ID != lineID {
			continue
		}
		if stock := c.items[i].Product.Stock; quantity > stock {
			quantity = stock
		}
		if quantity < 1 {
			quantity = 1
		}
		c.items[i].Quantity = quantity
		return s.view(c), nil
	}

	return s.view(c), fmt.Errorf("%w: %s", ErrCartLineNotFound, lineID)
}

// RemoveLine removes the line; removing an absent line is a no-op.
func (s *cartService) RemoveLine(userID int64, lineID string) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	c.remove(lineID)
	return s.view(c)
}

// Clear empties the cart and drops any applied discount, since a cleared
// cart has no discount context left.
func (s *cartService) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
}

// ApplyDiscountCode matches the code case-insensitively against active
// coupons. A failed match clears any previously applied discount and records
// the error on the cart; a successful match stores the uppercased code and
// the discount clamped to [0, subtotal].
func (s *cartService) ApplyDiscountCode(ctx context.Context, userID int64, code string) (CartView, error) {
	coupon, err := s.couponRepo.FindActiveByCode(ctx, code)

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)

	if err != nil {
		c.appliedCode = ""
		c.discountAmount = decimal.Zero
		c.discountError = discountCodeErrorMessage
		if errors.Is(err, repository.ErrCouponNotFound) {
			return s.view(c), ErrInvalidDiscountCode
		}
		return s.view(c), fmt.Errorf("failed to look up discount code: %w", err)
	}

	c.appliedCode = strings.ToUpper(coupon.Code)
	c.discountAmount = coupon.DiscountFor(c.subtotal())
	c.discountError = ""

	return s.view(c), nil
}

// RemoveDiscount clears the applied code, amount and error.
func (s *cartService) RemoveDiscount(userID int64) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(userID)
	c.appliedCode = ""
	c.discountAmount = decimal.Zero
	c.discountError = ""
	return s.view(c)
}

// cart returns the user's cart, creating it on first touch. Callers hold the
// lock.
func (s *cartService) cart(userID int64) *cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &cart{discountAmount: decimal.Zero}
		s.carts[userID] = c
	}
	return c
}

func (s *cartService) view(c *cart) CartView {
	items := make([]domain.CartItem, len(c.items))
	copy(items, c.items)

	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}

	return CartView{
		Items:         items,
		Totals:        c.totals(),
		CartCount:     count,
		AppliedCode:   c.appliedCode,
		DiscountError: c.discountError,
	}
}

func (c *cart) remove(lineID string) {
	for i := range c.items {
		if c.items[i].ID == lineID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *cart) subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for i := range c.items {
		subtotal = subtotal.Add(c.items[i].LineTotal())
	}
	return subtotal
}

// totals derives the money view. The discount is re-clamped to the current
// subtotal so the grand total can never fall below GST plus delivery even
// when lines were removed after the code was applied.
func (c *cart) totals() domain.CartTotals {
	subtotal := c.subtotal()

	gst := subtotal.Mul(gstRate)

	delivery := decimal.Zero
	if subtotal.IsPositive() {
		delivery = deliveryFee
	}

	discount := c.discountAmount
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	return domain.CartTotals{
		Subtotal:       subtotal,
		GSTAmount:      gst,
		DeliveryCharge: delivery,
		DiscountAmount: discount,
		GrandTotal:     subtotal.Add(gst).Add(delivery).Sub(discount),
	}
}
