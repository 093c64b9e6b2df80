package mocks

import (
	"context"
	"sync"

	"github.com/Tejash97/klassico-style-haven/internal/catalog"
)

// MockRepository is an in-memory catalog.Repository for testing
type MockRepository struct {
	mu           sync.RWMutex
	categories   []catalog.Category
	products     []catalog.Product
	testimonials []catalog.Testimonial

	// For tracking calls in tests
	ListProductsCalls []catalog.ProductFilter
	Err               error
}

// NewMockRepository creates a new MockRepository
func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

// AddCategory adds a category for testing
func (m *MockRepository) AddCategory(c catalog.Category) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories = append(m.categories, c)
}

// AddProduct adds a product for testing
func (m *MockRepository) AddProduct(p catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, p)
}

// AddTestimonial adds a testimonial for testing
func (m *MockRepository) AddTestimonial(t catalog.Testimonial) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.testimonials = append(m.testimonials, t)
}

func (m *MockRepository) ListCategories(ctx context.Context, filter catalog.CategoryFilter) ([]catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var out []catalog.Category
	for _, c := range m.categories {
		if filter.Gender != "" && c.Gender != filter.Gender {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockRepository) GetCategoryBySlug(ctx context.Context, slug string) (*catalog.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, c := range m.categories {
		if c.Slug == slug {
			c := c
			return &c, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *MockRepository) ListProducts(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	m.mu.Lock()
	m.ListProductsCalls = append(m.ListProductsCalls, filter)
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	categoryID := filter.CategoryID
	if filter.CategorySlug != "" {
		for _, c := range m.categories {
			if c.Slug == filter.CategorySlug {
				categoryID = c.ID
			}
		}
	}

	var out []catalog.Product
	for _, p := range m.products {
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		if filter.Gender != "" && p.Gender != filter.Gender {
			continue
		}
		if filter.IsNew != nil && p.IsNew != *filter.IsNew {
			continue
		}
		if filter.IsSale != nil && p.IsSale != *filter.IsSale {
			continue
		}
		out = append(out, p)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockRepository) GetProductBySlug(ctx context.Context, slug string) (*catalog.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, p := range m.products {
		if p.Slug == slug {
			p := p
			return &p, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (m *MockRepository) ListTestimonials(ctx context.Context) ([]catalog.Testimonial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]catalog.Testimonial(nil), m.testimonials...), nil
}
