package readmodel

import (
	"github.com/shopspring/decimal"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
)

// CartItemReadModel represents an item in the cart
type CartItemReadModel struct {
	Product        catalog.Product `json:"product"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	EffectivePrice decimal.Decimal `json:"effective_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
	StockLimit     int             `json:"stock_limit"`
}

// CartReadModel is the cart page and checkout summary
type CartReadModel struct {
	Items          []CartItemReadModel `json:"items"`
	Count          int                 `json:"count"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Shipping       decimal.Decimal     `json:"shipping"`
	Total          decimal.Decimal     `json:"total"`
	FormattedTotal string              `json:"formatted_total"`
}

// ProductListReadModel is a product listing page
type ProductListReadModel struct {
	Title      string             `json:"title"`
	Category   *catalog.Category  `json:"category,omitempty"`
	Categories []catalog.Category `json:"categories"`
	Products   []catalog.Product  `json:"products"`
}

// ProductDetailReadModel is a product page with other products from its category
type ProductDetailReadModel struct {
	Product catalog.Product   `json:"product"`
	Related []catalog.Product `json:"related"`
}
