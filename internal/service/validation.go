package service

import (
	"regexp"
	"strings"

	"github.com/snackrush-shop/snackrush-checkout-service/internal/models"
)

var (
	couponCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)
	phonePattern      = regexp.MustCompile(`^[6-9][0-9]{9}$`)
	pincodePattern    = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// NormalizeCouponCode applies the storage case rules to a client-supplied
// code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCouponCodeFormat is the input-sanitization gate applied before any
// ledger query: 3-20 characters, alphanumeric plus hyphen/underscore.
func ValidCouponCodeFormat(code string) bool {
	return couponCodePattern.MatchString(code)
}

// ValidateCheckoutRequest checks the request fields that must be valid
// before any side effect. It returns every failing field rather than
// stopping at the first.
func ValidateCheckoutRequest(req *models.CheckoutRequest) []models.FieldError {
	var errs []models.FieldError

	if strings.TrimSpace(req.Contact.Name) == "" {
		errs = append(errs, models.FieldError{Field: "contact.name", Message: "name is required"})
	}
	if !phonePattern.MatchString(req.Contact.Phone) {
		errs = append(errs, models.FieldError{Field: "contact.phone", Message: "a valid 10-digit mobile number is required"})
	}
	if strings.TrimSpace(req.Contact.Address) == "" {
		errs = append(errs, models.FieldError{Field: "contact.address", Message: "delivery address is required"})
	}
	if !pincodePattern.MatchString(req.Contact.Pincode) {
		errs = append(errs, models.FieldError{Field: "contact.pincode", Message: "a valid 6-digit pincode is required"})
	}

	switch req.PaymentMethod {
	case models.PaymentMethodQR, models.PaymentMethodCOD:
	default:
		errs = append(errs, models.FieldError{Field: "payment_method", Message: "payment method must be qr or cod"})
	}

	if req.ClientTotal < 0 {
		errs = append(errs, models.FieldError{Field: "client_total", Message: "total cannot be negative"})
	}

	if len(req.Items) == 0 {
		errs = append(errs, models.FieldError{Field: "items", Message: "cart is empty"})
		return errs
	}

	for i := range req.Items {
		line := &req.Items[i]

		// Older clients omit the kind tag; they only ever send physical
		// products.
		if line.Kind == "" {
			line.Kind = models.LineKindProduct
		}

		switch line.Kind {
		case models.LineKindProduct, models.LineKindBundle:
		default:
			errs = append(errs, models.FieldError{Field: "items", Message: "unknown cart line kind"})
			continue
		}

		if line.CatalogID() == "" {
			errs = append(errs, models.FieldError{Field: "items", Message: "cart line is missing its product reference"})
		}
		if line.Quantity <= 0 {
			errs = append(errs, models.FieldError{Field: "items", Message: "quantity must be positive"})
		}
		if line.Quantity > models.MaxLineQuantity {
			errs = append(errs, models.FieldError{Field: "items", Message: "quantity exceeds the per-item limit"})
		}
	}

	if req.CouponCode != "" && !ValidCouponCodeFormat(NormalizeCouponCode(req.CouponCode)) {
		errs = append(errs, models.FieldError{Field: "coupon_code", Message: "coupon code format is invalid"})
	}

	return errs
}
