package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/checkout"
	"github.com/Tejash97/klassico-style-haven/internal/command"
	"github.com/Tejash97/klassico-style-haven/internal/domain/cart"
	"github.com/Tejash97/klassico-style-haven/internal/notification"
	"github.com/Tejash97/klassico-style-haven/internal/query"
)

// Toasts hands over the notifications raised while serving a request
type Toasts interface {
	Drain() []notification.Toast
}

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	toasts       Toasts
	logger       zerolog.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, toasts Toasts, logger zerolog.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		toasts:       toasts,
		logger:       logger.With().Str("component", "api").Logger(),
	}
}

type cartResponse struct {
	Cart   *query.CartReadModel `json:"cart"`
	Toasts []notification.Toast `json:"toasts"`
}

type orderResponse struct {
	Order  *checkout.Order      `json:"order"`
	Toasts []notification.Toast `json:"toasts"`
}

type errorResponse struct {
	Error  string               `json:"error"`
	Fields map[string]string    `json:"fields,omitempty"`
	Toasts []notification.Toast `json:"toasts"`
}

// Cart Handlers

func (h *Handlers) GetCart(c echo.Context) error {
	return h.respondCart(c, http.StatusOK)
}

func (h *Handlers) GetCartCount(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]int{"count": h.queryHandler.CartCount()})
}

func (h *Handlers) AddToCart(c echo.Context) error {
	var cmd command.AddToCart
	if err := c.Bind(&cmd); err != nil {
		return h.respondError(c, http.StatusBadRequest, "Invalid request payload", nil)
	}
	if cmd.ProductSlug == "" {
		return h.respondError(c, http.StatusBadRequest, "product_slug is required", nil)
	}

	if _, err := h.cmdHandler.AddToCart(c.Request().Context(), cmd); err != nil {
		return h.handleError(c, err)
	}
	return h.respondCart(c, http.StatusCreated)
}

func (h *Handlers) UpdateCartItem(c echo.Context) error {
	var body struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil || body.Quantity == nil {
		return h.respondError(c, http.StatusBadRequest, "quantity is required", nil)
	}

	cmd := command.UpdateCartItem{ProductID: c.Param("id"), Quantity: *body.Quantity}
	if err := h.cmdHandler.UpdateCartItem(c.Request().Context(), cmd); err != nil {
		return h.handleError(c, err)
	}
	return h.respondCart(c, http.StatusOK)
}

func (h *Handlers) RemoveFromCart(c echo.Context) error {
	cmd := command.RemoveFromCart{ProductID: c.Param("id")}
	if err := h.cmdHandler.RemoveFromCart(c.Request().Context(), cmd); err != nil {
		return h.handleError(c, err)
	}
	return h.respondCart(c, http.StatusOK)
}

func (h *Handlers) ClearCart(c echo.Context) error {
	if err := h.cmdHandler.ClearCart(c.Request().Context(), command.ClearCart{}); err != nil {
		return h.handleError(c, err)
	}
	return h.respondCart(c, http.StatusOK)
}

// Checkout Handlers

func (h *Handlers) PlaceOrder(c echo.Context) error {
	var form checkout.Form
	if err := c.Bind(&form); err != nil {
		return h.respondError(c, http.StatusBadRequest, "Invalid request payload", nil)
	}

	order, err := h.cmdHandler.PlaceOrder(c.Request().Context(), command.PlaceOrder{Form: form})
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusCreated, orderResponse{Order: order, Toasts: h.toasts.Drain()})
}

// Helper functions

func (h *Handlers) respondCart(c echo.Context, status int) error {
	return c.JSON(status, cartResponse{Cart: h.queryHandler.GetCart(), Toasts: h.toasts.Drain()})
}

func (h *Handlers) respondError(c echo.Context, status int, message string, fields map[string]string) error {
	return c.JSON(status, errorResponse{Error: message, Fields: fields, Toasts: h.toasts.Drain()})
}

// handleError maps domain errors to HTTP statuses
func (h *Handlers) handleError(c echo.Context, err error) error {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		return h.respondError(c, http.StatusBadRequest, "Please check the highlighted fields", verr.Fields)
	case errors.Is(err, catalog.ErrNotFound):
		return h.respondError(c, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrInvalidProduct):
		return h.respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, command.ErrOutOfStock), errors.Is(err, command.ErrStockLimit), errors.Is(err, checkout.ErrEmptyCart):
		return h.respondError(c, http.StatusConflict, err.Error(), nil)
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		return h.respondError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}
