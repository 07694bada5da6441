package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/apperrors"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// conditionalDecrement is the single optimistic-concurrency primitive for
// every shared counter (product stock, coupon remaining uses). It expresses
// "decrement by n only while the counter stays non-negative" as one guarded
// UPDATE, so a lost race surfaces as ok == false instead of a silent
// overwrite.
func conditionalDecrement(ctx context.Context, db execer, table, column, id string, n int) (bool, error) {
	query := fmt.Sprintf(
		`UPDATE %s SET %s = %s - $2, updated_at = $3 WHERE id = $1 AND %s >= $2`,
		table, column, column, column,
	)

	result, err := db.ExecContext(ctx, query, id, n, time.Now())
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

// PostgresOrderStore implements OrderStore using PostgreSQL.
type PostgresOrderStore struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresOrderStore creates a new PostgreSQL order store.
func NewPostgresOrderStore(db *sql.DB) *PostgresOrderStore {
	return &PostgresOrderStore{
		db:     db,
		logger: logging.NewLogger("order-store"),
	}
}

// CreateWithReservation decrements stock for every reservation and inserts
// the order in one transaction. Each decrement is conditional on current
// stock covering the requested quantity; any failure rolls the whole
// transaction back and the complete failure list is returned.
func (s *PostgresOrderStore) CreateWithReservation(ctx context.Context, order *models.Order, reservations []StockReservation) ([]models.StockFailure, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var failures []models.StockFailure
	for _, res := range reservations {
		ok, err := conditionalDecrement(ctx, tx, "products", "stock_quantity", res.ProductID, res.Quantity)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}

		// Keep scanning the remaining items so the caller gets the full
		// list of what to fix.
		failure := models.StockFailure{
			ProductID: res.ProductID,
			Requested: res.Quantity,
		}

		var name string
		var available int
		err = tx.QueryRowContext(ctx,
			`SELECT name, stock_quantity FROM products WHERE id = $1`,
			res.ProductID,
		).Scan(&name, &available)
		switch {
		case err == sql.ErrNoRows:
			failure.Reason = "not_found"
		case err != nil:
			return nil, err
		default:
			failure.Name = name
			failure.Available = available
			failure.Reason = "insufficient_stock"
		}

		failures = append(failures, failure)
	}

	if len(failures) > 0 {
		// Rollback via defer; no partial decrement survives.
		s.logger.Info("Stock reservation failed", logging.Fields{
			"order_id":     order.ID,
			"failed_items": len(failures),
		})
		return failures, nil
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	contactJSON, err := json.Marshal(order.Contact)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO orders (
			id, user_id, items, contact,
			subtotal_amount, subtotal_currency,
			delivery_fee_amount, delivery_fee_currency,
			convenience_fee_amount, convenience_fee_currency,
			coupon_discount_amount, coupon_discount_currency,
			total_amount, total_currency,
			coupon_code, payment_method, payment_status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19
		)
	`

	_, err = tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		itemsJSON,
		contactJSON,
		order.Subtotal.Amount,
		order.Subtotal.Currency,
		order.DeliveryFee.Amount,
		order.DeliveryFee.Currency,
		order.ConvenienceFee.Amount,
		order.ConvenienceFee.Currency,
		order.CouponDiscount.Amount,
		order.CouponDiscount.Currency,
		order.Total.Amount,
		order.Total.Currency,
		nullString(order.CouponCode),
		order.PaymentMethod,
		order.PaymentStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("Failed to insert order", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("Order persisted", logging.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"total":    order.Total.Amount,
	})

	return nil, nil
}

// GetByID retrieves an order by its unique identifier.
func (s *PostgresOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := selectOrderColumns + ` FROM orders WHERE id = $1`

	row := s.db.QueryRowContext(ctx, query, id)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to fetch order", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	return order, nil
}

// GetByUserID retrieves a user's orders, newest first.
func (s *PostgresOrderStore) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := selectOrderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// MarkPaid applies the pending -> paid transition. Orders in any other
// payment state are left untouched.
func (s *PostgresOrderStore) MarkPaid(ctx context.Context, id string) error {
	query := `
		UPDATE orders
		SET payment_status = $2, updated_at = $3
		WHERE id = $1 AND payment_status = $4
	`

	result, err := s.db.ExecContext(ctx, query, id, models.PaymentStatusPaid, time.Now(), models.PaymentStatusPending)
	if err != nil {
		return err
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	s.logger.Info("Order marked paid", logging.Fields{"order_id": id})
	return nil
}

const selectOrderColumns = `
	SELECT id, user_id, items, contact,
	       subtotal_amount, subtotal_currency,
	       delivery_fee_amount, delivery_fee_currency,
	       convenience_fee_amount, convenience_fee_currency,
	       coupon_discount_amount, coupon_discount_currency,
	       total_amount, total_currency,
	       coupon_code, payment_method, payment_status,
	       created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var itemsJSON, contactJSON []byte
	var couponCode sql.NullString

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&itemsJSON,
		&contactJSON,
		&order.Subtotal.Amount,
		&order.Subtotal.Currency,
		&order.DeliveryFee.Amount,
		&order.DeliveryFee.Currency,
		&order.ConvenienceFee.Amount,
		&order.ConvenienceFee.Currency,
		&order.CouponDiscount.Amount,
		&order.CouponDiscount.Currency,
		&order.Total.Amount,
		&order.Total.Currency,
		&couponCode,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contactJSON, &order.Contact); err != nil {
		return nil, err
	}
	if couponCode.Valid {
		order.CouponCode = couponCode.String
	}

	return &order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
