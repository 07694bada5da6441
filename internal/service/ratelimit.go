package service

import (
	"context"
	"fmt"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/metrics"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/repository"
)

// EndpointCategory names a rate-limited endpoint class.
type EndpointCategory string

const (
	CategoryOrderCreate EndpointCategory = "order_create"
	CategoryLogin       EndpointCategory = "login"
	CategoryCouponCheck EndpointCategory = "coupon_check"
)

// RateLimiter enforces fixed-window per-identifier ceilings with a block
// period that outlives the counting window. It is an explicitly constructed
// instance: tests build isolated limiters instead of sharing module state.
//
// Decisions prefer the shared store; if it is unreachable the limiter
// degrades to a process-local best-effort counter rather than failing the
// request. Fallback decisions are flagged non-authoritative and logged,
// since a client can reset them by landing on another instance.
type RateLimiter struct {
	store    repository.RateLimitStore
	fallback repository.RateLimitStore
	policies map[EndpointCategory]config.RateLimitPolicy
	logger   *logging.Logger
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter over the given authoritative store
// with per-category policies from cfg.
func NewRateLimiter(store, fallback repository.RateLimitStore, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		store:    store,
		fallback: fallback,
		policies: map[EndpointCategory]config.RateLimitPolicy{
			CategoryOrderCreate: cfg.OrderCreate,
			CategoryLogin:       cfg.Login,
			CategoryCouponCheck: cfg.CouponCheck,
		},
		logger: logging.NewLogger("rate-limiter"),
		now:    time.Now,
	}
}

// Check applies the category's policy to the identifier and returns the
// decision. identifier is a principal id or client IP.
func (r *RateLimiter) Check(ctx context.Context, identifier string, category EndpointCategory) models.RateLimitDecision {
	policy, ok := r.policies[category]
	if !ok {
		r.logger.Error("Unknown rate limit category", logging.Fields{"category": string(category)})
		return models.RateLimitDecision{Allowed: true, Authoritative: true}
	}

	decision, err := r.checkWith(ctx, r.store, identifier, category, policy)
	if err == nil {
		decision.Authoritative = true
		if !decision.Allowed {
			metrics.RateLimitRejections.WithLabelValues(string(category)).Inc()
		}
		return decision
	}

	// Availability over perfect limiting: degrade to the local counter and
	// make the degradation visible.
	r.logger.Warn("Rate limit backend unreachable, using local fallback", logging.Fields{
		"category":   string(category),
		"identifier": identifier,
		"error":      err.Error(),
	})
	metrics.RateLimitFallbacks.Inc()

	decision, err = r.checkWith(ctx, r.fallback, identifier, category, policy)
	if err != nil {
		// The local store never errors today; fail open if it ever does.
		r.logger.Error("Fallback rate limit store failed", logging.Fields{"error": err.Error()})
		return models.RateLimitDecision{Allowed: true}
	}
	decision.Authoritative = false
	if !decision.Allowed {
		metrics.RateLimitRejections.WithLabelValues(string(category)).Inc()
	}
	return decision
}

func (r *RateLimiter) checkWith(ctx context.Context, store repository.RateLimitStore, identifier string, category EndpointCategory, policy config.RateLimitPolicy) (models.RateLimitDecision, error) {
	now := r.now()
	windowStart := now.Truncate(policy.Window)
	resetTime := windowStart.Add(policy.Window)

	blockKey := fmt.Sprintf("%s:%s", category, identifier)
	windowKey := fmt.Sprintf("%s:%s:%d", category, identifier, windowStart.Unix())

	// An active block overrides window expiry and is checked before any
	// increment, so blocked principals stay blocked across window
	// rollovers without accumulating counts.
	blockedUntil, err := store.BlockedUntil(ctx, blockKey)
	if err != nil {
		return models.RateLimitDecision{}, err
	}
	if blockedUntil != nil && blockedUntil.After(now) {
		return models.RateLimitDecision{
			Allowed:      false,
			ResetTime:    resetTime,
			BlockedUntil: blockedUntil,
		}, nil
	}

	count, err := store.Increment(ctx, windowKey, policy.Window)
	if err != nil {
		return models.RateLimitDecision{}, err
	}

	if count > policy.MaxRequests {
		until := now.Add(policy.Block)
		if err := store.SetBlock(ctx, blockKey, until); err != nil {
			return models.RateLimitDecision{}, err
		}
		return models.RateLimitDecision{
			Allowed:      false,
			CurrentCount: count,
			ResetTime:    resetTime,
			BlockedUntil: &until,
		}, nil
	}

	return models.RateLimitDecision{
		Allowed:      true,
		CurrentCount: count,
		ResetTime:    resetTime,
	}, nil
}
