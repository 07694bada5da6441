package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/metrics"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/repository"
)

// OrderEventPublisher publishes checkout lifecycle and security events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishPriceMismatch(ctx context.Context, userID string, clientTotal, serverTotal float64) error
}

// ProfileUpdater pushes delivery contact details to the user service.
type ProfileUpdater interface {
	UpdateDeliveryProfile(ctx context.Context, userID string, contact models.DeliveryContact) error
}

// NotificationSender delivers order confirmations.
type NotificationSender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

// CatalogInvalidator drops cached catalog rows after stock mutations.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}

// CheckoutService orchestrates the secure order pipeline:
// rate gate -> price re-derivation -> atomic stock reservation + order
// persistence -> coupon consumption -> best-effort ancillary writes.
// Steps are strictly sequential; each depends on the previous step's
// authoritative output. Every call ends in exactly one terminal state.
type CheckoutService struct {
	orders   repository.OrderStore
	coupons  repository.CouponLedger
	pricing  *PriceValidator
	limiter  *RateLimiter
	guard    repository.IdempotencyGuard
	profiles ProfileUpdater
	notifier NotificationSender
	events   OrderEventPublisher
	cache    CatalogInvalidator
	cfg      *config.Config
	logger   *logging.Logger
}

// NewCheckoutService creates the checkout service. guard, profiles,
// notifier, events and cache may be nil; the corresponding step is skipped.
func NewCheckoutService(
	orders repository.OrderStore,
	coupons repository.CouponLedger,
	pricing *PriceValidator,
	limiter *RateLimiter,
	guard repository.IdempotencyGuard,
	profiles ProfileUpdater,
	notifier NotificationSender,
	events OrderEventPublisher,
	cache CatalogInvalidator,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		orders:   orders,
		coupons:  coupons,
		pricing:  pricing,
		limiter:  limiter,
		guard:    guard,
		profiles: profiles,
		notifier: notifier,
		events:   events,
		cache:    cache,
		cfg:      cfg,
		logger:   logging.NewLogger("checkout-service"),
	}
}

// PlaceOrder runs the checkout pipeline for one submission. All failures
// come back as structured results; the only errors that escape are
// programming mistakes.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, req *models.CheckoutRequest) *models.CheckoutResult {
	start := time.Now()
	result := s.placeOrder(ctx, userID, req)
	metrics.CheckoutsTotal.WithLabelValues(string(result.State)).Inc()
	metrics.CheckoutDuration.Observe(time.Since(start).Seconds())
	return result
}

func (s *CheckoutService) placeOrder(ctx context.Context, userID string, req *models.CheckoutRequest) *models.CheckoutResult {
	s.logger.Info("Processing checkout", logging.Fields{
		"user_id":    userID,
		"item_count": len(req.Items),
		"has_coupon": req.CouponCode != "",
	})

	// Malformed requests are rejected before any side effect.
	if fieldErrs := ValidateCheckoutRequest(req); len(fieldErrs) > 0 {
		return &models.CheckoutResult{
			State:       models.CheckoutValidationFailed,
			Message:     "please fix the highlighted fields",
			FieldErrors: fieldErrs,
		}
	}

	// Step 1: rate-limit gate. A rejection has no side effects.
	decision := s.limiter.Check(ctx, userID, CategoryOrderCreate)
	if !decision.Allowed {
		retryAfter := decision.ResetTime
		if decision.BlockedUntil != nil {
			retryAfter = *decision.BlockedUntil
		}
		return &models.CheckoutResult{
			State:      models.CheckoutRateLimited,
			Message:    fmt.Sprintf("too many order attempts, please try again after %s", retryAfter.Format("15:04")),
			RetryAfter: &retryAfter,
		}
	}

	// Idempotency guard: a retried request id returns the original order
	// instead of creating a second one.
	guarded := s.guard != nil && s.cfg.Features.EnableIdempotencyGuard && req.RequestID != ""
	if guarded {
		orderID, firstSeen, err := s.guard.Reserve(ctx, req.RequestID)
		if err != nil {
			// The guard is an extra safety net; losing it degrades to the
			// historical non-deduplicated behavior rather than blocking
			// checkout.
			s.logger.Warn("Idempotency guard unavailable", logging.Fields{"error": err.Error()})
			guarded = false
		} else if !firstSeen {
			if orderID != "" {
				order, err := s.orders.GetByID(ctx, orderID)
				if err == nil {
					return &models.CheckoutResult{
						Success:   true,
						State:     models.CheckoutCompleted,
						OrderID:   order.ID,
						Total:     order.Total.ToFloat(),
						Duplicate: true,
						Message:   "this order was already placed",
					}
				}
			}
			return &models.CheckoutResult{
				State:   models.CheckoutProcessingFailed,
				Message: "a matching submission is already being processed, please wait",
			}
		}
	}

	result := s.runPipeline(ctx, userID, req)
	if guarded {
		if result.State == models.CheckoutCompleted {
			if err := s.guard.Complete(ctx, req.RequestID, result.OrderID); err != nil {
				s.logger.Warn("Failed to record idempotency completion", logging.Fields{"error": err.Error()})
			}
		} else {
			// Free the id so the client can retry after fixing the cart.
			if err := s.guard.Release(ctx, req.RequestID); err != nil {
				s.logger.Warn("Failed to release idempotency claim", logging.Fields{"error": err.Error()})
			}
		}
	}
	return result
}

func (s *CheckoutService) runPipeline(ctx context.Context, userID string, req *models.CheckoutRequest) *models.CheckoutResult {
	// Step 2: authoritative price re-derivation. Client prices never enter
	// this computation; unavailable stores reject the checkout.
	cart, err := s.pricing.PriceCart(ctx, req.Items, req.CouponCode)
	if err != nil {
		s.logger.Error("Price validation unavailable", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return &models.CheckoutResult{
			State:   models.CheckoutProcessingFailed,
			Message: "we could not process your order, please try again",
		}
	}

	quote := cart.Quote
	if !quote.Success {
		fieldErrs := make([]models.FieldError, 0, len(quote.Failures))
		for _, f := range quote.Failures {
			fieldErrs = append(fieldErrs, models.FieldError{
				Field:   "items",
				Message: fmt.Sprintf("item %s: %s", f.ProductID, f.Reason),
			})
		}
		return &models.CheckoutResult{
			State:       models.CheckoutValidationFailed,
			Message:     quote.Message,
			FieldErrors: fieldErrs,
			Pricing:     quote,
		}
	}

	// Tamper check: the client's believed total must match ours within the
	// rounding tolerance.
	if math.Abs(req.ClientTotal-quote.Total) > s.cfg.Pricing.TamperTolerance {
		s.logger.Warn("Price mismatch beyond tolerance", logging.Fields{
			"user_id":      userID,
			"client_total": req.ClientTotal,
			"server_total": quote.Total,
			"security":     true,
		})
		metrics.TamperAlerts.Inc()
		if s.events != nil && s.cfg.Features.EnableOrderEvents {
			if err := s.events.PublishPriceMismatch(ctx, userID, req.ClientTotal, quote.Total); err != nil {
				s.logger.Error("Failed to publish security event", logging.Fields{"error": err.Error()})
			}
		}
		return &models.CheckoutResult{
			State:   models.CheckoutPriceMismatch,
			Message: "the order total has changed, please refresh and try again",
			Pricing: quote,
		}
	}

	order := s.buildOrder(userID, req, cart)

	// Steps 3+4: conditional stock decrements and the order insert commit
	// or roll back as one unit. A failure list means nothing was applied.
	stockFailures, err := s.orders.CreateWithReservation(ctx, order, cart.Reservations)
	if err != nil {
		s.logger.Error("Order persistence failed", logging.Fields{
			"order_id": order.ID,
			"user_id":  userID,
			"error":    err.Error(),
		})
		return &models.CheckoutResult{
			State:   models.CheckoutProcessingFailed,
			Message: "we could not process your order, please try again",
		}
	}
	if len(stockFailures) > 0 {
		return &models.CheckoutResult{
			State:         models.CheckoutStockInsufficient,
			Message:       "some items in your cart are no longer available",
			StockFailures: stockFailures,
			Pricing:       quote,
		}
	}

	if s.cache != nil && s.cfg.Features.EnableCatalogCache {
		for _, res := range cart.Reservations {
			if err := s.cache.Invalidate(ctx, res.ProductID); err != nil {
				s.logger.Debug("Catalog cache invalidation failed", logging.Fields{
					"product_id": res.ProductID,
				})
			}
		}
	}

	// Step 5: consume the coupon use. The decrement is conditional; losing
	// the last use to a concurrent order leaves this order standing and is
	// logged by the ledger.
	if cart.Coupon != nil {
		if err := s.coupons.ConsumeUse(ctx, cart.Coupon.ID, userID, order.ID); err != nil {
			s.logger.Warn("Coupon consumption failed after order commit", logging.Fields{
				"order_id":  order.ID,
				"coupon_id": cart.Coupon.ID,
				"error":     err.Error(),
			})
		}
	}

	// Step 6: ancillary writes are best-effort; the order is the source of
	// truth for this transaction's success.
	if s.profiles != nil {
		go s.updateProfile(context.Background(), userID, req.Contact)
	}
	if s.notifier != nil && s.cfg.Features.EnableNotifications {
		go s.sendConfirmation(context.Background(), order)
	}
	if s.events != nil && s.cfg.Features.EnableOrderEvents {
		if err := s.events.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Error("Failed to publish order created event", logging.Fields{
				"order_id": order.ID,
				"error":    err.Error(),
			})
		}
	}

	s.logger.Info("Checkout completed", logging.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    quote.Total,
	})

	return &models.CheckoutResult{
		Success: true,
		State:   models.CheckoutCompleted,
		OrderID: order.ID,
		Total:   quote.Total,
		Pricing: quote,
	}
}

func (s *CheckoutService) buildOrder(userID string, req *models.CheckoutRequest, cart *PricedCart) *models.Order {
	now := time.Now()
	currency := s.cfg.Pricing.Currency
	quote := cart.Quote

	order := &models.Order{
		ID:             "ord_" + uuid.New().String(),
		UserID:         userID,
		Items:          cart.Items,
		Subtotal:       models.NewMoney(quote.Subtotal, currency),
		DeliveryFee:    models.NewMoney(quote.DeliveryFee, currency),
		ConvenienceFee: models.NewMoney(quote.ConvenienceFee, currency),
		CouponDiscount: models.NewMoney(quote.CouponDiscount, currency),
		Total:          models.NewMoney(quote.Total, currency),
		Contact:        req.Contact,
		PaymentMethod:  req.PaymentMethod,
		PaymentStatus:  models.PaymentStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if cart.Coupon != nil {
		order.CouponCode = cart.Coupon.Code
	}
	return order
}

func (s *CheckoutService) updateProfile(ctx context.Context, userID string, contact models.DeliveryContact) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.profiles.UpdateDeliveryProfile(ctx, userID, contact); err != nil {
		s.logger.Error("Failed to update delivery profile", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

func (s *CheckoutService) sendConfirmation(ctx context.Context, order *models.Order) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		s.logger.Error("Failed to send order confirmation", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
	}
}
