package repository

import (
	"context"
	"database/sql"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/apperrors"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// PostgresCatalogStore implements CatalogStore using PostgreSQL.
type PostgresCatalogStore struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresCatalogStore creates a new PostgreSQL catalog store.
func NewPostgresCatalogStore(db *sql.DB) *PostgresCatalogStore {
	return &PostgresCatalogStore{
		db:     db,
		logger: logging.NewLogger("catalog-store"),
	}
}

// GetProduct returns the authoritative catalog row for id.
func (s *PostgresCatalogStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT id, name, price, stock_quantity, category_id, is_virtual, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p models.Product
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.StockQuantity,
		&p.CategoryID,
		&p.IsVirtual,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to fetch product", logging.Fields{
			"product_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	return &p, nil
}
