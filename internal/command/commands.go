package command

import "github.com/Tejash97/klassico-style-haven/internal/checkout"

// Cart Commands

// AddToCart adds a product by slug. A nil Quantity means one.
type AddToCart struct {
	ProductSlug string `json:"product_slug"`
	Quantity    *int   `json:"quantity"`
}

type UpdateCartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type RemoveFromCart struct {
	ProductID string `json:"product_id"`
}

type ClearCart struct{}

// Checkout Commands
type PlaceOrder struct {
	Form checkout.Form `json:"form"`
}
