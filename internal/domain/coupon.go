package domain

import "github.com/shopspring/decimal"

// CouponType discriminates how a coupon's value is interpreted.
type CouponType string

const (
	// CouponPercentage discounts value% of the cart subtotal.
	CouponPercentage CouponType = "percentage"
	// CouponFixed discounts a fixed amount.
	CouponFixed CouponType = "fixed"
)

// Coupon is a named discount rule applicable at checkout. Codes are matched
// case-insensitively; only active coupons apply.
type Coupon struct {
	ID       int64           `json:"id" db:"id"`
	Code     string          `json:"code" db:"code"`
	Type     CouponType      `json:"type" db:"type"`
	Value    decimal.Decimal `json:"value" db:"value"`
	IsActive bool            `json:"is_active" db:"is_active"`
}

// DiscountFor computes the raw discount this coupon yields on the given
// subtotal, clamped to [0, subtotal] so a discount can never exceed the
// amount it discounts.
func (c *Coupon) DiscountFor(subtotal decimal.Decimal) decimal.Decimal {
	var raw decimal.Decimal
	switch c.Type {
	case CouponPercentage:
		raw = subtotal.Mul(c.Value).Div(decimal.NewFromInt(100))
	default:
		raw = c.Value
	}
	if raw.IsNegative() {
		return decimal.Zero
	}
	if raw.GreaterThan(subtotal) {
		return subtotal
	}
	return raw
}
