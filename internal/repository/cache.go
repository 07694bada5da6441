package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

const (
	productKeyPrefix = "product:"
	defaultCacheTTL  = 5 * time.Minute
)

// CachedCatalogStore is a read-through Redis cache in front of the
// authoritative catalog. It only serves the pricing-preview path; checkout
// stock reservation always goes through the conditional writes in
// PostgresOrderStore, so cached stock counts are display-grade only.
type CachedCatalogStore struct {
	inner  CatalogStore
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedCatalogStore wraps a catalog store with a Redis read-through
// cache.
func NewCachedCatalogStore(inner CatalogStore, cfg config.RedisConfig) *CachedCatalogStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = defaultCacheTTL
	}

	return &CachedCatalogStore{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logging.NewLogger("catalog-cache"),
	}
}

// GetProduct serves from cache when possible, falling back to the inner
// store. Cache failures degrade to the inner store, never to an error.
func (c *CachedCatalogStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	key := productKeyPrefix + id

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var p models.Product
		if err := json.Unmarshal(data, &p); err == nil {
			c.logger.Debug("Cache hit", logging.Fields{"product_id": id})
			return &p, nil
		}
	} else if err != redis.Nil {
		c.logger.Error("Cache get error", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
	}

	p, err := c.inner.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Error("Cache set error", logging.Fields{
				"product_id": id,
				"error":      err.Error(),
			})
		}
	}

	return p, nil
}

// Invalidate drops the cached row after a stock mutation.
func (c *CachedCatalogStore) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, productKeyPrefix+id).Err()
}
