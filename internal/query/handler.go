package query

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
	"github.com/Tejash97/klassico-style-haven/internal/domain/cart"
)

// Cart is the read side of cart.Store
type Cart interface {
	Snapshot() cart.Snapshot
	Count() int
}

// RelatedLimit is how many products of the same category a product page asks for
const RelatedLimit = 4

// ProductQuery is a product listing request as the storefront expresses it in the URL
type ProductQuery struct {
	CategorySlug string `query:"category"`
	Gender       string `query:"gender"`
	IsNew        bool   `query:"isNew"`
	IsSale       bool   `query:"isSale"`
	Search       string `query:"search"`
	Sort         string `query:"sort"`
	Limit        int    `query:"limit"`
}

type Handler struct {
	catalog catalog.Repository
	cart    Cart
	logger  zerolog.Logger
}

func NewHandler(repo catalog.Repository, c Cart, logger zerolog.Logger) *Handler {
	return &Handler{
		catalog: repo,
		cart:    c,
		logger:  logger.With().Str("component", "query").Logger(),
	}
}

// Cart
func (h *Handler) GetCart() *CartReadModel {
	snap := h.cart.Snapshot()
	items := make([]CartItemReadModel, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		items = append(items, CartItemReadModel{
			Product:        e.Product,
			Quantity:       e.Quantity,
			UnitPrice:      e.Product.Price,
			EffectivePrice: e.Product.EffectivePrice(),
			LineTotal:      e.LineTotal(),
			StockLimit:     e.Product.StockLimit(),
		})
	}

	subtotal := snap.Total
	return &CartReadModel{
		Items:          items,
		Count:          snap.Count,
		Subtotal:       subtotal,
		Shipping:       decimal.Zero,
		Total:          subtotal,
		FormattedTotal: catalog.FormatINR(subtotal),
	}
}

func (h *Handler) CartCount() int {
	return h.cart.Count()
}

// Products
func (h *Handler) ListProducts(ctx context.Context, q ProductQuery) (*ProductListReadModel, error) {
	var category *catalog.Category
	if q.CategorySlug != "" {
		c, err := h.catalog.GetCategoryBySlug(ctx, q.CategorySlug)
		switch {
		case err == nil:
			category = c
		case errors.Is(err, catalog.ErrNotFound):
			h.logger.Debug().Str("slug", q.CategorySlug).Msg("Unknown category, listing without it")
		default:
			return nil, err
		}
	}

	products, err := h.catalog.ListProducts(ctx, toFilter(q))
	if err != nil {
		return nil, err
	}
	products = catalog.FilterByText(products, q.Search)
	if products == nil {
		products = []catalog.Product{}
	}

	categories, err := h.catalog.ListCategories(ctx, catalog.CategoryFilter{})
	if err != nil {
		return nil, err
	}

	return &ProductListReadModel{
		Title:      PageTitle(q, category),
		Category:   category,
		Categories: CategoriesForGender(categories, q.Gender),
		Products:   products,
	}, nil
}

func toFilter(q ProductQuery) catalog.ProductFilter {
	f := catalog.ProductFilter{
		CategorySlug: q.CategorySlug,
		Gender:       q.Gender,
		SortBy:       q.Sort,
		Limit:        q.Limit,
	}
	// false means "don't filter", not "only items that aren't new"
	if q.IsNew {
		f.IsNew = &q.IsNew
	}
	if q.IsSale {
		f.IsSale = &q.IsSale
	}
	return f
}

// GetProduct returns the product page. Related products come from the same category
// with the product itself left out; failing to load them does not fail the page.
func (h *Handler) GetProduct(ctx context.Context, slug string) (*ProductDetailReadModel, error) {
	p, err := h.catalog.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	related := []catalog.Product{}
	if p.CategoryID != "" {
		products, err := h.catalog.ListProducts(ctx, catalog.ProductFilter{CategoryID: p.CategoryID, Limit: RelatedLimit})
		if err != nil {
			h.logger.Warn().Err(err).Str("slug", slug).Msg("Failed to load related products")
		}
		for _, rp := range products {
			if rp.ID != p.ID {
				related = append(related, rp)
			}
		}
	}

	return &ProductDetailReadModel{Product: *p, Related: related}, nil
}

// Categories
func (h *Handler) ListCategories(ctx context.Context, filter catalog.CategoryFilter) ([]catalog.Category, error) {
	categories, err := h.catalog.ListCategories(ctx, filter)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []catalog.Category{}
	}
	return categories, nil
}

func (h *Handler) GetCategory(ctx context.Context, slug string) (*catalog.Category, error) {
	return h.catalog.GetCategoryBySlug(ctx, slug)
}

// Testimonials
func (h *Handler) ListTestimonials(ctx context.Context) ([]catalog.Testimonial, error) {
	testimonials, err := h.catalog.ListTestimonials(ctx)
	if err != nil {
		return nil, err
	}
	if testimonials == nil {
		testimonials = []catalog.Testimonial{}
	}
	return testimonials, nil
}

// PageTitle is the heading of a product listing page
func PageTitle(q ProductQuery, category *catalog.Category) string {
	switch {
	case q.Search != "":
		return fmt.Sprintf(`Search results for "%s"`, q.Search)
	case q.IsNew:
		return "New Arrivals"
	case q.IsSale:
		return "Sale Items"
	case category != nil:
		return category.Name
	}
	switch strings.ToLower(q.Gender) {
	case "male":
		return "Men's Collection"
	case "female":
		return "Women's Collection"
	case "unisex":
		return "Unisex Collection"
	}
	return "All Products"
}

// CategoriesForGender keeps the sidebar categories for a gender, unisex included
func CategoriesForGender(categories []catalog.Category, gender string) []catalog.Category {
	out := make([]catalog.Category, 0, len(categories))
	for _, c := range categories {
		if gender == "" || c.Gender == gender || c.Gender == "unisex" {
			out = append(out, c)
		}
	}
	return out
}
