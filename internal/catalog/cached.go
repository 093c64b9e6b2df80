package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// CachedRepository is a read-through redis cache in front of another Repository.
// Only slug lookups and category listings are cached; product listings vary too much
// by filter to be worth it.
type CachedRepository struct {
	next   Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewCachedRepository(next Repository, rdb *redis.Client, ttl time.Duration, logger zerolog.Logger) *CachedRepository {
	return &CachedRepository{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With().Str("component", "catalog-cache").Logger(),
	}
}

func productKey(slug string) string  { return "product:" + slug }
func categoryKey(slug string) string { return "category:" + slug }

func categoryListKey(filter CategoryFilter) string {
	return fmt.Sprintf("categories:%s:%t", filter.Gender, filter.Featured)
}

func (r *CachedRepository) ListCategories(ctx context.Context, filter CategoryFilter) ([]Category, error) {
	var cached []Category
	if r.get(ctx, categoryListKey(filter), &cached) {
		return cached, nil
	}
	categories, err := r.next.ListCategories(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.set(ctx, categoryListKey(filter), categories)
	return categories, nil
}

func (r *CachedRepository) GetCategoryBySlug(ctx context.Context, slug string) (*Category, error) {
	var cached Category
	if r.get(ctx, categoryKey(slug), &cached) {
		return &cached, nil
	}
	c, err := r.next.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.set(ctx, categoryKey(slug), c)
	return c, nil
}

func (r *CachedRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	return r.next.ListProducts(ctx, filter)
}

func (r *CachedRepository) GetProductBySlug(ctx context.Context, slug string) (*Product, error) {
	var cached Product
	if r.get(ctx, productKey(slug), &cached) {
		return &cached, nil
	}
	p, err := r.next.GetProductBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	r.set(ctx, productKey(slug), p)
	return p, nil
}

func (r *CachedRepository) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	return r.next.ListTestimonials(ctx)
}

// Invalidate drops the cached entries a catalog update can affect. Cached products
// embed their category, so a category update drops every cached product as well.
func (r *CachedRepository) Invalidate(ctx context.Context, update Update) error {
	keys := []string{}
	switch update.Entity {
	case EntityProduct:
		keys = append(keys, productKey(update.Slug))
	case EntityCategory:
		keys = append(keys, categoryKey(update.Slug))
		for _, pattern := range []string{"categories:*", "product:*"} {
			matched, err := r.keysMatching(ctx, pattern)
			if err != nil {
				return err
			}
			keys = append(keys, matched...)
		}
	default:
		return fmt.Errorf("unknown catalog entity %q", update.Entity)
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate %v: %w", keys, err)
	}
	r.logger.Info().Str("entity", update.Entity).Str("slug", update.Slug).Int("keys", len(keys)).Msg("Cache invalidated")
	return nil
}

func (r *CachedRepository) keysMatching(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return keys, nil
}

// HandleUpdate decodes a catalog update message and invalidates the matching entries.
// Its signature matches kafka.MessageHandler.
func (r *CachedRepository) HandleUpdate(ctx context.Context, key, value []byte) error {
	update, err := DecodeUpdate(value)
	if err != nil {
		r.logger.Warn().Err(err).Bytes("key", key).Msg("Failed to decode catalog update")
		return err
	}
	return r.Invalidate(ctx, update)
}

func (r *CachedRepository) get(ctx context.Context, key string, dest any) bool {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error().Err(err).Str("key", key).Msg("Error reading from cache")
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		return false
	}
	return true
}

func (r *CachedRepository) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("Error encoding cache entry")
		return
	}
	if err := r.rdb.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		r.logger.Error().Err(err).Str("key", key).Msg("Error writing to cache")
	}
}
