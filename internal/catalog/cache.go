package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	shoperrors "github.com/abgdnv/shopmate/internal/errors"
	"github.com/redis/go-redis/v9"
)

const productsCacheKey = "shop:catalog:products"

// cmdable is the part of the redis client the cache needs.
type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedSource is a read-through Redis cache in front of another Source.
// Cache failures are logged and bypassed; they never fail a lookup on their own.
type CachedSource struct {
	next   Source
	cache  cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSource wraps next with a Redis cache holding the full catalog for ttl.
func NewCachedSource(next Source, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return newCachedSource(next, client, ttl, logger)
}

func newCachedSource(next Source, cache cmdable, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "catalog_cache"),
	}
}

// FindAll returns the cached catalog, loading and storing it on a miss.
func (s *CachedSource) FindAll(ctx context.Context) ([]Product, error) {
	raw, err := s.cache.Get(ctx, productsCacheKey).Result()
	switch {
	case err == nil:
		var products []Product
		decodeErr := json.Unmarshal([]byte(raw), &products)
		if decodeErr == nil {
			s.logger.DebugContext(ctx, "Catalog cache hit", "count", len(products))
			return products, nil
		}
		s.logger.WarnContext(ctx, "Discarding undecodable catalog cache entry", "error", decodeErr)
	case errors.Is(err, redis.Nil):
		s.logger.DebugContext(ctx, "Catalog cache miss")
	default:
		s.logger.WarnContext(ctx, "Catalog cache read failed", "error", err)
	}

	products, err := s.next.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, products)
	return products, nil
}

// FindByID looks the product up in the (cached) catalog.
func (s *CachedSource) FindByID(ctx context.Context, id ProductID) (*Product, error) {
	products, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := Find(products, id)
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, shoperrors.ErrProductNotFound)
	}
	return &p, nil
}

func (s *CachedSource) store(ctx context.Context, products []Product) {
	data, err := json.Marshal(products)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to encode catalog for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, productsCacheKey, data, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "Catalog cache write failed", "error", err)
	}
}
