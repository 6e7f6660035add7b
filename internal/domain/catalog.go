package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog. Rating and ReviewCount are
// derived values maintained by the review engine; everything else is
// admin-managed.
type Product struct {
	ID            int64               `json:"id" db:"id"`
	CategoryID    int64               `json:"cat_id" db:"category_id"`
	Name          string              `json:"name" db:"name"`
	Description   string              `json:"description" db:"description"`
	Price         decimal.Decimal     `json:"price" db:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price,omitempty" db:"discount_price"`
	Stock         int                 `json:"stock" db:"stock"`
	ImageURL      string              `json:"image_url" db:"image_url"`
	Rating        decimal.Decimal     `json:"rating" db:"rating"`
	ReviewCount   int                 `json:"review_count" db:"review_count"`
	IsAssured     bool                `json:"is_assured" db:"is_assured"`
	Sizes         []string            `json:"sizes,omitempty" db:"sizes"`
	CreatedAt     time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at" db:"updated_at"`
}

// EffectivePrice is the unit price charged at checkout: the discount price
// when one is set, the list price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// Category represents a product category. Deleting a category does not
// cascade to products; an orphaned CategoryID is a display concern.
type Category struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	ImageURL string `json:"image" db:"image_url"`
}

// Banner is a promotional banner shown on the storefront home page.
type Banner struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	ImageURL    string `json:"image" db:"image_url"`
	Link        string `json:"link,omitempty" db:"link"`
}
