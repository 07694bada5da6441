package models

import "time"

// DiscountType selects how a coupon's value is applied.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Coupon is a ledger row. RemainingUses is decremented with a conditional
// write when an order consumes a use.
type Coupon struct {
	ID             int64        `json:"id"`
	Code           string       `json:"code"`
	DiscountType   DiscountType `json:"discount_type"`
	DiscountValue  float64      `json:"discount_value"`
	MinOrderAmount float64      `json:"min_order_amount"`
	RemainingUses  int          `json:"remaining_uses"`
	Active         bool         `json:"active"`
	StartsAt       time.Time    `json:"starts_at"`
	ExpiresAt      time.Time    `json:"expires_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// UsableAt reports whether the coupon can be applied at the given instant,
// ignoring order-amount constraints.
func (c *Coupon) UsableAt(now time.Time) bool {
	if !c.Active || c.RemainingUses <= 0 {
		return false
	}
	if now.Before(c.StartsAt) || now.After(c.ExpiresAt) {
		return false
	}
	return true
}

// DiscountFor computes the discount against an authoritative subtotal.
// The discount never exceeds the subtotal; fees are never discounted.
func (c *Coupon) DiscountFor(subtotal float64) float64 {
	var discount float64
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = subtotal * c.DiscountValue / 100
	case DiscountTypeFixed:
		discount = c.DiscountValue
	}
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// CouponUsage records one consumed coupon use, at most one per order.
type CouponUsage struct {
	ID        int64     `json:"id"`
	CouponID  int64     `json:"coupon_id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CouponValidationResult is the user-facing outcome of a coupon check.
type CouponValidationResult struct {
	Valid          bool    `json:"valid"`
	DiscountAmount float64 `json:"discount_amount"`
	Message        string  `json:"message"`
}
