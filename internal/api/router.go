package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Handlers *Handlers
	Logger   zerolog.Logger
	WebDir   string
}

func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	logger := cfg.Logger.With().Str("component", "http").Logger()
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				event = logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	// Static files (web UI)
	if cfg.WebDir != "" {
		e.Static("/", cfg.WebDir)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	h := cfg.Handlers
	api := e.Group("/api")

	// Catalog
	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:slug", h.GetCategory)
	api.GET("/products", h.ListProducts)
	api.GET("/products/:slug", h.GetProduct)
	api.GET("/testimonials", h.ListTestimonials)

	// Cart
	api.GET("/cart", h.GetCart)
	api.GET("/cart/count", h.GetCartCount)
	api.POST("/cart/items", h.AddToCart)
	api.PATCH("/cart/items/:id", h.UpdateCartItem)
	api.DELETE("/cart/items/:id", h.RemoveFromCart)
	api.DELETE("/cart", h.ClearCart)

	// Checkout
	api.POST("/checkout", h.PlaceOrder)

	return e
}
