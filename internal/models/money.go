package models

import "math"

// Money represents a monetary amount in the smallest currency unit
// (paise for INR).
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// NewMoney converts a rupee amount to Money, rounding to the nearest paisa.
func NewMoney(amount float64, currency string) Money {
	return Money{
		Amount:   int64(math.Round(amount * 100)),
		Currency: currency,
	}
}

// ToFloat returns the amount in rupees.
func (m Money) ToFloat() float64 {
	return float64(m.Amount) / 100
}
