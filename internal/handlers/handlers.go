package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/apperrors"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// CheckoutAPI is the service surface the HTTP layer depends on.
type CheckoutAPI interface {
	PlaceOrder(ctx context.Context, userID string, req *models.CheckoutRequest) *models.CheckoutResult
	ValidatePrices(ctx context.Context, lines []models.CartLine, couponCode string) (*models.PriceQuote, error)
	CheckCoupon(ctx context.Context, userID string, lines []models.CartLine, code string) (*models.CouponValidationResult, error)
	GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error)
	ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, int, error)
}

// Handlers bundles the HTTP handlers and their dependencies.
type Handlers struct {
	checkout CheckoutAPI
	config   *config.Config
	logger   *logging.Logger
}

// NewHandlers creates the handler set.
func NewHandlers(checkout CheckoutAPI, cfg *config.Config) *Handlers {
	return &Handlers{
		checkout: checkout,
		config:   cfg,
		logger:   logging.NewLogger("handlers"),
	}
}

// principal returns the authenticated user id placed in the context by the
// auth middleware.
func principal(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok && id != ""
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var ve *apperrors.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "conflicting update, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
