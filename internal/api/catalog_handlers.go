package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/query"
)

// Category Handlers

func (h *Handlers) ListCategories(c echo.Context) error {
	var params struct {
		Gender   string `query:"gender"`
		Featured bool   `query:"featured"`
	}
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return h.respondError(c, http.StatusBadRequest, "Invalid query parameters", nil)
	}

	categories, err := h.queryHandler.ListCategories(c.Request().Context(), catalog.CategoryFilter{
		Gender:   params.Gender,
		Featured: params.Featured,
	})
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handlers) GetCategory(c echo.Context) error {
	category, err := h.queryHandler.GetCategory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// Product Handlers

func (h *Handlers) ListProducts(c echo.Context) error {
	var q query.ProductQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return h.respondError(c, http.StatusBadRequest, "Invalid query parameters", nil)
	}

	list, err := h.queryHandler.ListProducts(c.Request().Context(), q)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handlers) GetProduct(c echo.Context) error {
	detail, err := h.queryHandler.GetProduct(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Testimonial Handlers

func (h *Handlers) ListTestimonials(c echo.Context) error {
	testimonials, err := h.queryHandler.ListTestimonials(c.Request().Context())
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, testimonials)
}
