package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/apperrors"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// PostgresCouponLedger implements CouponLedger using PostgreSQL.
type PostgresCouponLedger struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresCouponLedger creates a new PostgreSQL coupon ledger.
func NewPostgresCouponLedger(db *sql.DB) *PostgresCouponLedger {
	return &PostgresCouponLedger{
		db:     db,
		logger: logging.NewLogger("coupon-ledger"),
	}
}

// GetCouponByCode fetches a coupon by its normalized code.
func (l *PostgresCouponLedger) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, min_order_amount,
		       remaining_uses, active, starts_at, expires_at, created_at, updated_at
		FROM coupons
		WHERE code = $1
	`

	var c models.Coupon
	err := l.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinOrderAmount,
		&c.RemainingUses,
		&c.Active,
		&c.StartsAt,
		&c.ExpiresAt,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		l.logger.Error("Failed to fetch coupon", logging.Fields{
			"code":  code,
			"error": err.Error(),
		})
		return nil, err
	}

	return &c, nil
}

// ConsumeUse decrements the coupon's remaining uses and records the usage
// row in one transaction. The decrement shares the conditional primitive
// with stock reservation, so the last use of a coupon is awarded to exactly
// one of any set of concurrent checkouts.
func (l *PostgresCouponLedger) ConsumeUse(ctx context.Context, couponID int64, userID, orderID string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ok, err := conditionalDecrement(ctx, tx, "coupons", "remaining_uses", strconv.FormatInt(couponID, 10), 1)
	if err != nil {
		return err
	}
	if !ok {
		l.logger.Warn("Coupon use lost to concurrent checkout", logging.Fields{
			"coupon_id": couponID,
			"order_id":  orderID,
		})
		return apperrors.ErrConflict
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO coupon_usages (coupon_id, user_id, order_id, created_at) VALUES ($1, $2, $3, $4)`,
		couponID, userID, orderID, time.Now(),
	)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	l.logger.Info("Coupon use recorded", logging.Fields{
		"coupon_id": couponID,
		"order_id":  orderID,
	})
	return nil
}
