package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultStockLimit is the per-product quantity cap used when a product has no stock figure.
const DefaultStockLimit = 10

// Category is a product category as stored in the backend
type Category struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	Slug          string `json:"slug"`
	Gender        string `json:"gender,omitempty"`
	FeaturedOrder *int   `json:"featured_order,omitempty"`
}

// Product is a read-only product snapshot as returned by the backend.
// Nullable numeric columns are pointers: a nil Discount means no discount and a nil
// StockQuantity means stock is not tracked.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	CategoryID    string          `json:"category_id,omitempty"`
	ImageURL      string          `json:"image_url"`
	HoverImageURL string          `json:"hover_image_url,omitempty"`
	IsNew         bool            `json:"is_new"`
	IsSale        bool            `json:"is_sale"`
	Discount      *int            `json:"discount,omitempty"`
	StockQuantity *int            `json:"stock_quantity,omitempty"`
	Slug          string          `json:"slug"`
	Gender        string          `json:"gender,omitempty"`
	Category      *Category       `json:"category,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Testimonial is a published customer quote
type Testimonial struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url,omitempty"`
	Quote     string    `json:"quote"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// OnDiscount reports whether the discount is currently applied to the price.
func (p Product) OnDiscount() bool {
	return p.IsSale && p.Discount != nil && *p.Discount != 0
}

// EffectivePrice returns the unit price used for totals: the discounted price while the
// product is on sale, otherwise the list price. Discounts are clamped to 0-100.
func (p Product) EffectivePrice() decimal.Decimal {
	if !p.OnDiscount() {
		return p.Price
	}
	discount := min(max(*p.Discount, 0), 100)
	factor := decimal.NewFromInt(100 - int64(discount)).Div(decimal.NewFromInt(100))
	return p.Price.Mul(factor)
}

// InStock is false only when the backend explicitly reports zero stock.
func (p Product) InStock() bool {
	return p.StockQuantity == nil || *p.StockQuantity > 0
}

// StockLimit returns the maximum quantity a shopper may hold of this product.
func (p Product) StockLimit() int {
	if p.StockQuantity == nil || *p.StockQuantity <= 0 {
		return DefaultStockLimit
	}
	return *p.StockQuantity
}
