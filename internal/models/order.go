package models

import "time"

// PaymentMethod is the customer's declared payment choice.
type PaymentMethod string

const (
	// PaymentMethodQR is a client-rendered UPI deep link, not verified
	// server-side.
	PaymentMethodQR PaymentMethod = "qr"
	// PaymentMethodCOD is cash on delivery.
	PaymentMethodCOD PaymentMethod = "cod"
)

// PaymentStatus tracks the only mutable order field.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// OrderItem is one line of the frozen order snapshot. The shape is a
// permanent record, independent of later catalog edits.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

// DeliveryContact holds the delivery fields captured at checkout.
type DeliveryContact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Pincode string `json:"pincode"`
}

// Order is the persisted result of a successful checkout. Immutable after
// creation except for the pending -> paid payment status transition.
type Order struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Items          []OrderItem     `json:"items"`
	Subtotal       Money           `json:"subtotal"`
	DeliveryFee    Money           `json:"delivery_fee"`
	ConvenienceFee Money           `json:"convenience_fee"`
	CouponDiscount Money           `json:"coupon_discount"`
	Total          Money           `json:"total"`
	CouponCode     string          `json:"coupon_code,omitempty"`
	Contact        DeliveryContact `json:"contact"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
