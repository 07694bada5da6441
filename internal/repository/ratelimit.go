package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
)

const rateLimitKeyPrefix = "ratelimit:"

// RedisRateLimitStore is the authoritative rate-limit backend. Window keys
// are created with an expiry on first increment; block keys carry their
// deadline as the value and expire with it.
type RedisRateLimitStore struct {
	client *redis.Client
	logger *logging.Logger
}

// NewRedisRateLimitStore creates a Redis-backed rate-limit store.
func NewRedisRateLimitStore(cfg config.RedisConfig) *RedisRateLimitStore {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisRateLimitStore{
		client: client,
		logger: logging.NewLogger("ratelimit-store"),
	}
}

// Increment adds one to the window counter, setting the expiry when the
// key is new.
func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	fullKey := rateLimitKeyPrefix + key

	count, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, fullKey, expiry).Err(); err != nil {
			s.logger.Error("Failed to set window expiry", logging.Fields{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
	return count, nil
}

// BlockedUntil returns the block deadline for key, or nil when not blocked.
func (s *RedisRateLimitStore) BlockedUntil(ctx context.Context, key string) (*time.Time, error) {
	fullKey := rateLimitKeyPrefix + "block:" + key

	val, err := s.client.Get(ctx, fullKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	until, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		// Unparseable block value: drop it rather than blocking forever.
		s.client.Del(ctx, fullKey)
		return nil, nil
	}
	return &until, nil
}

// SetBlock records a block deadline; the key expires when the block does.
func (s *RedisRateLimitStore) SetBlock(ctx context.Context, key string, until time.Time) error {
	fullKey := rateLimitKeyPrefix + "block:" + key
	return s.client.Set(ctx, fullKey, until.Format(time.RFC3339Nano), time.Until(until)).Err()
}

// LocalRateLimitStore is the in-process fallback used when the shared
// backend is unreachable. It is best-effort only: counts reset with the
// process and are not shared across instances, so decisions made here are
// flagged non-authoritative by the limiter.
type LocalRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*localWindow
	blocks  map[string]time.Time
}

type localWindow struct {
	count     int64
	expiresAt time.Time
}

// NewLocalRateLimitStore creates an in-process rate-limit store.
func NewLocalRateLimitStore() *LocalRateLimitStore {
	return &LocalRateLimitStore{
		windows: make(map[string]*localWindow),
		blocks:  make(map[string]time.Time),
	}
}

func (s *LocalRateLimitStore) Increment(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		w = &localWindow{expiresAt: now.Add(expiry)}
		s.windows[key] = w
	}
	w.count++
	return w.count, nil
}

func (s *LocalRateLimitStore) BlockedUntil(ctx context.Context, key string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.blocks[key]
	if !ok {
		return nil, nil
	}
	if time.Now().After(until) {
		delete(s.blocks, key)
		return nil, nil
	}
	u := until
	return &u, nil
}

func (s *LocalRateLimitStore) SetBlock(ctx context.Context, key string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[key] = until
	return nil
}
