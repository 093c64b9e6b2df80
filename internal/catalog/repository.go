package catalog

import (
	"context"
	"errors"
	"strings"
)

var ErrNotFound = errors.New("not found")

// Repository is the read-only view of the storefront backend
type Repository interface {
	ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListTestimonials(ctx context.Context) ([]Testimonial, error)
}

// CategoryFilter narrows ListCategories. Featured switches ordering to featured_order.
type CategoryFilter struct {
	Gender   string
	Featured bool
}

// ProductFilter narrows ListProducts. Nil flag pointers mean "don't filter".
type ProductFilter struct {
	CategoryID   string
	CategorySlug string
	Gender       string
	IsNew        *bool
	IsSale       *bool
	SortBy       string // "field:asc" or "field:desc"
	Limit        int
}

// Sort is a validated ordering for product listings
type Sort struct {
	Field     string
	Ascending bool
}

var sortableFields = map[string]bool{
	"price":      true,
	"name":       true,
	"created_at": true,
}

// DefaultSort lists newest products first
var DefaultSort = Sort{Field: "created_at", Ascending: false}

// ParseSort parses "field:direction". Unknown fields fall back to DefaultSort; any
// direction other than "asc" sorts descending.
func ParseSort(s string) Sort {
	if s == "" {
		return DefaultSort
	}
	field, direction, _ := strings.Cut(s, ":")
	field = strings.TrimSpace(strings.ToLower(field))
	if !sortableFields[field] {
		return DefaultSort
	}
	return Sort{Field: field, Ascending: strings.EqualFold(strings.TrimSpace(direction), "asc")}
}

// FilterByText keeps products whose name or description contains query, ignoring case.
// An empty query returns the input unchanged.
func FilterByText(products []Product, query string) []Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	filtered := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
