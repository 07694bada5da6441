package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/apperrors"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/config"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/logging"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
	"github.com/snackrush-shop/snackrush-checkout-service/internal/repository"
)

// PriceValidator re-derives every order amount from the catalog and coupon
// ledger. Client-supplied prices are never an input; when the authoritative
// stores are unreachable it returns an error and the checkout is rejected,
// never priced from client data.
type PriceValidator struct {
	catalog repository.CatalogStore
	coupons repository.CouponLedger
	cfg     config.PricingConfig
	logger  *logging.Logger
	now     func() time.Time
}

// NewPriceValidator creates a price validator.
func NewPriceValidator(catalog repository.CatalogStore, coupons repository.CouponLedger, cfg config.PricingConfig) *PriceValidator {
	return &PriceValidator{
		catalog: catalog,
		coupons: coupons,
		cfg:     cfg,
		logger:  logging.NewLogger("price-validator"),
		now:     time.Now,
	}
}

// PricedCart is the authoritative pricing of a cart: the quote, the frozen
// item snapshot, the stock reservations the order processor must apply, and
// the coupon to consume (nil when none applied).
type PricedCart struct {
	Quote        *models.PriceQuote
	Items        []models.OrderItem
	Reservations []repository.StockReservation
	Coupon       *models.Coupon
}

// PriceCart prices the cart from authoritative data. A non-nil error means
// a backing store was unreachable; business-level failures (unknown
// product, invalid coupon) are reported inside the quote instead.
func (v *PriceValidator) PriceCart(ctx context.Context, lines []models.CartLine, couponCode string) (*PricedCart, error) {
	cart := &PricedCart{Quote: &models.PriceQuote{}}
	quote := cart.Quote

	var subtotal float64
	for _, line := range lines {
		product, err := v.catalog.GetProduct(ctx, line.CatalogID())
		if errors.Is(err, apperrors.ErrNotFound) {
			// Unknown ids are a hard failure, not a silent skip.
			quote.Failures = append(quote.Failures, models.LineFailure{
				ProductID: line.CatalogID(),
				Reason:    "not_found",
			})
			continue
		}
		if err != nil {
			return nil, err
		}

		// The line tag must agree with the catalog: a client cannot dodge
		// stock reservation by relabeling a physical item as a bundle.
		if (line.Kind == models.LineKindBundle) != product.IsVirtual {
			quote.Failures = append(quote.Failures, models.LineFailure{
				ProductID: line.CatalogID(),
				Reason:    "kind_mismatch",
			})
			continue
		}

		subtotal += product.Price * float64(line.Quantity)
		cart.Items = append(cart.Items, models.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  line.Quantity,
		})

		if line.Kind == models.LineKindProduct {
			cart.Reservations = append(cart.Reservations, repository.StockReservation{
				ProductID: product.ID,
				Quantity:  line.Quantity,
			})
		}
	}

	if len(quote.Failures) > 0 {
		quote.Message = "one or more items are unavailable"
		return cart, nil
	}

	quote.Subtotal = subtotal
	quote.DeliveryFee = v.deliveryFee(subtotal)
	quote.ConvenienceFee = v.convenienceFee(subtotal)

	if couponCode != "" {
		coupon, discount, msg, err := v.evaluateCoupon(ctx, couponCode, subtotal)
		if err != nil {
			return nil, err
		}
		quote.CouponDiscount = discount
		quote.Message = msg
		if coupon != nil {
			quote.CouponApplied = true
			cart.Coupon = coupon
		}
	}

	total := quote.Subtotal + quote.DeliveryFee + quote.ConvenienceFee - quote.CouponDiscount
	if total < 0 {
		total = 0
	}
	quote.Total = total
	quote.Success = true

	return cart, nil
}

// ValidatePrices exposes the same authoritative pricing for the UI's live
// order summary.
func (v *PriceValidator) ValidatePrices(ctx context.Context, lines []models.CartLine, couponCode string) (*models.PriceQuote, error) {
	cart, err := v.PriceCart(ctx, lines, couponCode)
	if err != nil {
		return nil, err
	}
	return cart.Quote, nil
}

// ValidateCoupon checks a coupon against an authoritative order amount.
// The amount must come from PriceCart, never from the client.
func (v *PriceValidator) ValidateCoupon(ctx context.Context, code string, amount float64) (*models.CouponValidationResult, error) {
	coupon, discount, msg, err := v.evaluateCoupon(ctx, code, amount)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return &models.CouponValidationResult{Valid: false, Message: msg}, nil
	}
	return &models.CouponValidationResult{
		Valid:          true,
		DiscountAmount: discount,
		Message:        fmt.Sprintf("coupon applied: ₹%.2f off", discount),
	}, nil
}

// evaluateCoupon returns a non-nil coupon only when it can be applied.
// A nil coupon with a message is a business-level rejection; an error means
// the ledger was unreachable.
func (v *PriceValidator) evaluateCoupon(ctx context.Context, code string, subtotal float64) (*models.Coupon, float64, string, error) {
	normalized := NormalizeCouponCode(code)
	if !ValidCouponCodeFormat(normalized) {
		return nil, 0, "coupon code format is invalid", nil
	}

	coupon, err := v.coupons.GetCouponByCode(ctx, normalized)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, 0, "coupon code is not valid", nil
	}
	if err != nil {
		return nil, 0, "", err
	}

	now := v.now()
	switch {
	case !coupon.Active:
		return nil, 0, "this coupon is no longer active", nil
	case now.Before(coupon.StartsAt):
		return nil, 0, "this coupon is not active yet", nil
	case now.After(coupon.ExpiresAt):
		return nil, 0, "this coupon has expired", nil
	case coupon.RemainingUses <= 0:
		return nil, 0, "this coupon has been fully redeemed", nil
	case subtotal < coupon.MinOrderAmount:
		return nil, 0, fmt.Sprintf("minimum order amount for this coupon is ₹%.0f", coupon.MinOrderAmount), nil
	}

	return coupon, coupon.DiscountFor(subtotal), "", nil
}

func (v *PriceValidator) deliveryFee(subtotal float64) float64 {
	if subtotal <= 0 || subtotal >= v.cfg.FreeDeliveryThreshold {
		return 0
	}
	return v.cfg.DeliveryFee
}

func (v *PriceValidator) convenienceFee(subtotal float64) float64 {
	if subtotal <= 0 {
		return 0
	}
	return v.cfg.ConvenienceFee
}
