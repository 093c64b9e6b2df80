package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Tejash97/klassico-style-haven/internal/domain/cart"
	"github.com/Tejash97/klassico-style-haven/internal/email"
	"github.com/Tejash97/klassico-style-haven/internal/notification"
)

var ErrEmptyCart = errors.New("cart is empty")

// Cart is the part of cart.Store checkout reads and clears
type Cart interface {
	Snapshot() cart.Snapshot
	Clear()
}

// Mailer sends the order confirmation, satisfied by email.Service
type Mailer interface {
	SendOrderConfirmation(to string, order email.Confirmation) error
}

// Order is the result of a simulated checkout. It is not stored anywhere.
type Order struct {
	ID       string          `json:"id"`
	Customer Form            `json:"customer"`
	Items    []cart.Entry    `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placed_at"`
}

type Service struct {
	cart     Cart
	mailer   Mailer
	notifier notification.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a checkout service. mailer may be nil, in which case no
// confirmation email is sent.
func NewService(c Cart, mailer Mailer, notifier notification.Notifier, logger zerolog.Logger) *Service {
	if notifier == nil {
		notifier = notification.Nop{}
	}
	return &Service{
		cart:     c,
		mailer:   mailer,
		notifier: notifier,
		logger:   logger.With().Str("component", "checkout").Logger(),
		now:      time.Now,
	}
}

// PlaceOrder validates the form against the current cart, sends the confirmation and
// clears the cart. Payment is cash on delivery, so nothing is charged here.
func (s *Service) PlaceOrder(ctx context.Context, form Form) (*Order, error) {
	snap := s.cart.Snapshot()
	if len(snap.Entries) == 0 {
		s.notifier.Error("Your cart is empty")
		return nil, ErrEmptyCart
	}

	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	shipping := decimal.Zero
	order := &Order{
		ID:       uuid.New().String(),
		Customer: form,
		Items:    snap.Entries,
		Subtotal: snap.Total,
		Shipping: shipping,
		Total:    snap.Total.Add(shipping),
		PlacedAt: s.now(),
	}

	if s.mailer != nil {
		if err := s.mailer.SendOrderConfirmation(form.Email, confirmationFor(order)); err != nil {
			s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("Failed to send order confirmation")
		}
	}

	s.cart.Clear()
	s.notifier.Success("Thank you for your purchase!")

	s.logger.Info().
		Str("order_id", order.ID).
		Int("items", len(order.Items)).
		Str("total", order.Total.String()).
		Msg("Order placed")
	return order, nil
}

func confirmationFor(order *Order) email.Confirmation {
	items := make([]email.OrderItem, len(order.Items))
	for i, e := range order.Items {
		items[i] = email.OrderItem{
			ProductID: e.Product.ID,
			Name:      e.Product.Name,
			Quantity:  e.Quantity,
			UnitPrice: e.Product.EffectivePrice(),
		}
	}
	return email.Confirmation{
		OrderID:      order.ID,
		CustomerName: order.Customer.FullName(),
		Items:        items,
		Subtotal:     order.Subtotal,
		Shipping:     order.Shipping,
		Total:        order.Total,
		Address:      order.Customer.ShippingAddress(),
	}
}
