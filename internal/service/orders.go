package service

import (
	"context"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/apperrors"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/metrics"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

// ValidatePrices serves the UI's live order summary with the same
// authoritative pricing used inside PlaceOrder.
func (s *CheckoutService) ValidatePrices(ctx context.Context, lines []models.CartLine, couponCode string) (*models.PriceQuote, error) {
	return s.pricing.ValidatePrices(ctx, lines, couponCode)
}

// CheckCoupon validates a coupon against the authoritative subtotal of the
// caller's cart, behind the coupon-check rate limit. The client never
// supplies the amount.
func (s *CheckoutService) CheckCoupon(ctx context.Context, userID string, lines []models.CartLine, code string) (*models.CouponValidationResult, error) {
	decision := s.limiter.Check(ctx, userID, CategoryCouponCheck)
	if !decision.Allowed {
		retryAfter := decision.ResetTime
		if decision.BlockedUntil != nil {
			retryAfter = *decision.BlockedUntil
		}
		metrics.CouponChecks.WithLabelValues("rate_limited").Inc()
		return &models.CouponValidationResult{
			Valid:   false,
			Message: "too many coupon attempts, please try again after " + retryAfter.Format("15:04"),
		}, nil
	}

	cart, err := s.pricing.PriceCart(ctx, lines, "")
	if err != nil {
		return nil, err
	}
	if !cart.Quote.Success {
		metrics.CouponChecks.WithLabelValues("invalid_cart").Inc()
		return &models.CouponValidationResult{
			Valid:   false,
			Message: "please review your cart before applying a coupon",
		}, nil
	}

	result, err := s.pricing.ValidateCoupon(ctx, code, cart.Quote.Subtotal)
	if err != nil {
		return nil, err
	}

	outcome := "invalid"
	if result.Valid {
		outcome = "valid"
	}
	metrics.CouponChecks.WithLabelValues(outcome).Inc()
	return result, nil
}

// GetOrder returns an order only to its owner.
func (s *CheckoutService) GetOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		// Do not reveal that the order exists.
		return nil, apperrors.ErrNotFound
	}
	return order, nil
}

// ListOrders returns the principal's orders, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.GetByUserID(ctx, userID, limit, offset)
}

// MarkOrderPaid applies the pending -> paid transition. Driven by the
// payments topic consumer; there is no other writer of payment status.
func (s *CheckoutService) MarkOrderPaid(ctx context.Context, orderID string) error {
	start := time.Now()
	err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		s.logger.Error("Failed to mark order paid", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return err
	}

	s.logger.Info("Payment confirmed", logging.Fields{
		"order_id":   orderID,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
