package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/checkout"
	"github.com/Tejash97/klassico-style-haven/internal/domain/cart"
	"github.com/Tejash97/klassico-style-haven/internal/notification"
)

var (
	ErrOutOfStock = errors.New("product is out of stock")
	ErrStockLimit = errors.New("requested quantity exceeds available stock")
)

// Cart is the mutating side of cart.Store
type Cart interface {
	AddWithin(product catalog.Product, quantity, limit int) error
	Remove(productID string)
	SetQuantity(productID string, quantity int)
	Clear()
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, form checkout.Form) (*checkout.Order, error)
}

type Handler struct {
	catalog  catalog.Repository
	cart     Cart
	checkout OrderPlacer
	notifier notification.Notifier
	logger   zerolog.Logger
}

func NewHandler(
	repo catalog.Repository,
	c Cart,
	checkoutSvc OrderPlacer,
	notifier notification.Notifier,
	logger zerolog.Logger,
) *Handler {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Handler{
		catalog:  repo,
		cart:     c,
		checkout: checkoutSvc,
		notifier: notifier,
		logger:   logger.With().Str("component", "command").Logger(),
	}
}

// AddToCart adds an item to cart
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (*catalog.Product, error) {
	quantity := 1
	if cmd.Quantity != nil {
		quantity = *cmd.Quantity
	}
	if quantity < 1 {
		return nil, cart.ErrInvalidQuantity
	}

	// Snapshot comes from the catalog, the cart never re-fetches it
	p, err := h.catalog.GetProductBySlug(ctx, cmd.ProductSlug)
	if err != nil {
		return nil, err
	}

	if !p.InStock() {
		h.notifier.Error(fmt.Sprintf("%s is out of stock", p.Name))
		return nil, ErrOutOfStock
	}

	// The cart checks the limit under its own lock so concurrent adds cannot overshoot
	limit := p.StockLimit()
	if err := h.cart.AddWithin(*p, quantity, limit); err != nil {
		if errors.Is(err, cart.ErrLimitExceeded) {
			h.notifier.Info(fmt.Sprintf("Sorry, only %d items available", limit))
			return nil, fmt.Errorf("%w: limit is %d", ErrStockLimit, limit)
		}
		return nil, err
	}
	h.logger.Debug().Str("product_id", p.ID).Int("quantity", quantity).Msg("Added to cart")
	return p, nil
}

// UpdateCartItem sets the absolute quantity of an item, removing it at zero
func (h *Handler) UpdateCartItem(ctx context.Context, cmd UpdateCartItem) error {
	h.cart.SetQuantity(cmd.ProductID, cmd.Quantity)
	return nil
}

// RemoveFromCart removes an item from cart
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	h.cart.Remove(cmd.ProductID)
	return nil
}

// ClearCart clears all items from cart
func (h *Handler) ClearCart(ctx context.Context, cmd ClearCart) error {
	h.cart.Clear()
	return nil
}

// PlaceOrder checks out the current cart
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*checkout.Order, error) {
	return h.checkout.PlaceOrder(ctx, cmd.Form)
}
