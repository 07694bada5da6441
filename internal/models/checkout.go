package models

import "time"

// CheckoutRequest is the client submission for placeOrder. ClientTotal is
// used only for the tamper comparison; item prices inside Items are ignored.
type CheckoutRequest struct {
	// RequestID is a client-generated id used to deduplicate network
	// retries. Optional; when empty the idempotency guard is skipped.
	RequestID     string          `json:"request_id"`
	Contact       DeliveryContact `json:"contact"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	ClientTotal   float64         `json:"client_total"`
	CouponCode    string          `json:"coupon_code,omitempty"`
	Items         []CartLine      `json:"items"`
}

// CheckoutState names the terminal state a checkout attempt reached.
// Every attempt ends in exactly one of these.
type CheckoutState string

const (
	CheckoutCompleted         CheckoutState = "completed"
	CheckoutRateLimited       CheckoutState = "rate_limited"
	CheckoutValidationFailed  CheckoutState = "validation_failed"
	CheckoutPriceMismatch     CheckoutState = "price_mismatch"
	CheckoutStockInsufficient CheckoutState = "stock_insufficient"
	CheckoutProcessingFailed  CheckoutState = "processing_failed"
)

// StockFailure itemizes one line that could not be reserved.
type StockFailure struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name,omitempty"`
	Reason    string `json:"reason"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// FieldError itemizes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CheckoutResult is the structured outcome returned to the checkout UI.
// Failures carry itemized detail instead of unwinding as errors.
type CheckoutResult struct {
	Success bool          `json:"success"`
	State   CheckoutState `json:"state"`
	Message string        `json:"message,omitempty"`

	OrderID string  `json:"order_id,omitempty"`
	Total   float64 `json:"total,omitempty"`

	// Duplicate is set when the idempotency guard matched a prior
	// submission and OrderID refers to the original order.
	Duplicate bool `json:"duplicate,omitempty"`

	// Pricing carries the authoritative breakdown so the client can
	// resync after a PriceMismatch.
	Pricing *PriceQuote `json:"pricing,omitempty"`

	FieldErrors   []FieldError   `json:"field_errors,omitempty"`
	StockFailures []StockFailure `json:"stock_failures,omitempty"`

	// RetryAfter is set on rate-limited rejections.
	RetryAfter *time.Time `json:"retry_after,omitempty"`
}

// LineFailure reports a cart line the price validator rejected.
type LineFailure struct {
	ProductID string `json:"product_id"`
	Reason    string `json:"reason"`
}

// PriceQuote is the server-derived pricing breakdown.
type PriceQuote struct {
	Success        bool          `json:"success"`
	Subtotal       float64       `json:"subtotal"`
	DeliveryFee    float64       `json:"delivery_fee"`
	ConvenienceFee float64       `json:"convenience_fee"`
	CouponDiscount float64       `json:"coupon_discount"`
	Total          float64       `json:"total"`
	CouponApplied  bool          `json:"coupon_applied"`
	Message        string        `json:"message,omitempty"`
	Failures       []LineFailure `json:"failures,omitempty"`
}

// RateLimitDecision is the outcome of one rate limiter check.
type RateLimitDecision struct {
	Allowed      bool       `json:"allowed"`
	CurrentCount int64      `json:"current_count"`
	ResetTime    time.Time  `json:"reset_time"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`

	// Authoritative is false when the decision came from the local
	// fallback counter instead of the shared backend.
	Authoritative bool `json:"-"`
}
