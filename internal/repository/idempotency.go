package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
)

const (
	idempotencyKeyPrefix = "checkout:request:"
	idempotencyTTL       = 30 * time.Minute

	// pendingMarker occupies the key between Reserve and Complete.
	pendingMarker = "__pending__"
)

// RedisIdempotencyGuard deduplicates checkout submissions by client request
// id. A request id is claimed with SET NX; replays within the TTL see the
// original order id instead of creating a second order.
type RedisIdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewRedisIdempotencyGuard creates a Redis-backed idempotency guard.
func NewRedisIdempotencyGuard(cfg config.RedisConfig) *RedisIdempotencyGuard {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisIdempotencyGuard{
		client: client,
		ttl:    idempotencyTTL,
		logger: logging.NewLogger("idempotency-guard"),
	}
}

// Reserve claims the request id. On a replay it returns the original order
// id, which is empty while the first attempt is still in flight.
func (g *RedisIdempotencyGuard) Reserve(ctx context.Context, requestID string) (string, bool, error) {
	key := idempotencyKeyPrefix + requestID

	set, err := g.client.SetNX(ctx, key, pendingMarker, g.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if set {
		return "", true, nil
	}

	val, err := g.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Claim expired between SetNX and Get; treat as first seen.
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}

	g.logger.Info("Duplicate checkout submission", logging.Fields{
		"request_id": requestID,
	})

	if val == pendingMarker {
		return "", false, nil
	}
	return val, false, nil
}

// Complete records the order id created for the request id.
func (g *RedisIdempotencyGuard) Complete(ctx context.Context, requestID, orderID string) error {
	key := idempotencyKeyPrefix + requestID
	return g.client.Set(ctx, key, orderID, g.ttl).Err()
}

// Release frees the request id after a failed attempt.
func (g *RedisIdempotencyGuard) Release(ctx context.Context, requestID string) error {
	return g.client.Del(ctx, idempotencyKeyPrefix+requestID).Err()
}
