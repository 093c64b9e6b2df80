package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

// PostgresRepository reads the catalog from the storefront's PostgreSQL database
type PostgresRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPostgresRepository(db *sql.DB, logger zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// ConnectPostgres establishes a connection to PostgreSQL
func ConnectPostgres(ctx context.Context, connStr string) (*sql.DB, error) {
	if connStr == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return db, nil
}

const categoryColumns = `id, name, description, image_url, slug, gender, featured_order`

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.category_id, p.image_url, p.hover_image_url,
	       p.is_new, p.is_sale, p.discount, p.stock_quantity, p.slug, p.gender, p.created_at,
	       c.id, c.name, c.description, c.image_url, c.slug, c.gender, c.featured_order
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

func (r *PostgresRepository) ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, error) {
	query, args := buildCategoryQuery(filter)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Error scanning category")
			continue
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *PostgresRepository) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get category %s: %w", slug, err)
	}
	return &c, nil
}

func (r *PostgresRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	categoryID := filter.CategoryID
	if filter.CategorySlug != "" {
		c, err := r.GetCategoryBySlug(ctx, filter.CategorySlug)
		switch {
		case err == nil:
			categoryID = c.ID
		case errors.Is(err, ErrNotFound):
			r.logger.Debug().Str("slug", filter.CategorySlug).Msg("Unknown category slug, listing without category filter")
		default:
			return nil, err
		}
	}

	query, args := buildProductQuery(filter, categoryID)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Error scanning product")
			continue
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.db.QueryRowContext(ctx, productSelect+` WHERE p.slug = $1`, slug)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product %s: %w", slug, err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, image_url, quote, rating, created_at
		FROM testimonials
		WHERE is_published = true
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	var testimonials []Testimonial
	for rows.Next() {
		var t Testimonial
		var imageURL sql.NullString
		if err := rows.Scan(&t.ID, &t.Name, &imageURL, &t.Quote, &t.Rating, &t.CreatedAt); err != nil {
			r.logger.Warn().Err(err).Msg("Error scanning testimonial")
			continue
		}
		t.ImageURL = imageURL.String
		testimonials = append(testimonials, t)
	}
	return testimonials, rows.Err()
}

func buildCategoryQuery(filter CategoryFilter) (string, []any) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if filter.Gender != "" {
		query += ` WHERE gender = $1`
		args = append(args, filter.Gender)
	}
	if filter.Featured {
		query += ` ORDER BY featured_order ASC`
	} else {
		query += ` ORDER BY name ASC`
	}
	return query, args
}

// buildProductQuery renders the product listing query. categoryID is the resolved
// category filter, which may come from either CategoryID or CategorySlug.
func buildProductQuery(filter ProductFilter, categoryID string) (string, []any) {
	var conditions []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if categoryID != "" {
		add("p.category_id", categoryID)
	}
	if filter.Gender != "" {
		add("p.gender", filter.Gender)
	}
	if filter.IsNew != nil {
		add("p.is_new", *filter.IsNew)
	}
	if filter.IsSale != nil {
		add("p.is_sale", *filter.IsSale)
	}

	query := productSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sort := ParseSort(filter.SortBy)
	direction := "DESC"
	if sort.Ascending {
		direction = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY p.%s %s", sort.Field, direction)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (Category, error) {
	var c Category
	var description, imageURL, gender sql.NullString
	var featuredOrder sql.NullInt64
	if err := s.Scan(&c.ID, &c.Name, &description, &imageURL, &c.Slug, &gender, &featuredOrder); err != nil {
		return Category{}, err
	}
	c.Description = description.String
	c.ImageURL = imageURL.String
	c.Gender = gender.String
	c.FeaturedOrder = intPtr(featuredOrder)
	return c, nil
}

func scanProduct(s scanner) (Product, error) {
	var p Product
	var description, categoryID, hoverImageURL, gender sql.NullString
	var isNew, isSale sql.NullBool
	var discount, stock sql.NullInt64

	var catID, catName, catDescription, catImageURL, catSlug, catGender sql.NullString
	var catFeaturedOrder sql.NullInt64

	err := s.Scan(
		&p.ID, &p.Name, &description, &p.Price, &categoryID, &p.ImageURL, &hoverImageURL,
		&isNew, &isSale, &discount, &stock, &p.Slug, &gender, &p.CreatedAt,
		&catID, &catName, &catDescription, &catImageURL, &catSlug, &catGender, &catFeaturedOrder,
	)
	if err != nil {
		return Product{}, err
	}

	p.Description = description.String
	p.CategoryID = categoryID.String
	p.HoverImageURL = hoverImageURL.String
	p.IsNew = isNew.Bool
	p.IsSale = isSale.Bool
	p.Discount = intPtr(discount)
	p.StockQuantity = intPtr(stock)
	p.Gender = gender.String

	if catID.Valid {
		p.Category = &Category{
			ID:            catID.String,
			Name:          catName.String,
			Description:   catDescription.String,
			ImageURL:      catImageURL.String,
			Slug:          catSlug.String,
			Gender:        catGender.String,
			FeaturedOrder: intPtr(catFeaturedOrder),
		}
	}
	return p, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
