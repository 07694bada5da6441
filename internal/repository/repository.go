package repository

import (
	"context"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// CatalogStore is the authoritative source of product price, stock and
// existence.
type CatalogStore interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// CouponLedger is the authoritative source of coupon validity and
// remaining-use accounting.
type CouponLedger interface {
	GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error)

	// ConsumeUse decrements the coupon's remaining uses and records a
	// CouponUsage row in one transaction. The decrement is conditional on
	// remaining_uses > 0; a lost race returns apperrors.ErrConflict and
	// writes nothing.
	ConsumeUse(ctx context.Context, couponID int64, userID, orderID string) error
}

// StockReservation is one physical line the order store must decrement.
type StockReservation struct {
	ProductID string
	Quantity  int
}

// OrderStore persists orders. Reservation and insert are a single atomic
// unit: either the stock decrements and the order row all commit, or none
// are visible.
type OrderStore interface {
	// CreateWithReservation conditionally decrements stock for every
	// reservation and inserts the order in one transaction. A non-empty
	// failure list means nothing was committed.
	CreateWithReservation(ctx context.Context, order *models.Order, reservations []StockReservation) ([]models.StockFailure, error)

	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, int, error)

	// MarkPaid applies the pending -> paid transition.
	MarkPaid(ctx context.Context, id string) error
}

// RateLimitStore is the counting backend for the rate limiter. Keys carry
// the window alignment; values are plain counters.
type RateLimitStore interface {
	// Increment adds one to the counter at key, creating it with the given
	// expiry on first use, and returns the new count.
	Increment(ctx context.Context, key string, expiry time.Duration) (int64, error)

	// BlockedUntil returns the block deadline for key, or nil when not
	// blocked.
	BlockedUntil(ctx context.Context, key string) (*time.Time, error)

	// SetBlock records a block deadline for key.
	SetBlock(ctx context.Context, key string, until time.Time) error
}

// IdempotencyGuard deduplicates retried checkout submissions by client
// request id within a bounded window.
type IdempotencyGuard interface {
	// Reserve claims the request id. firstSeen is true when this is the
	// first submission; otherwise orderID holds the original order id
	// (empty if the first attempt is still in flight).
	Reserve(ctx context.Context, requestID string) (orderID string, firstSeen bool, err error)

	// Complete records the order id created for the request id.
	Complete(ctx context.Context, requestID, orderID string) error

	// Release frees the request id after a failed attempt so the client
	// can retry.
	Release(ctx context.Context, requestID string) error
}
