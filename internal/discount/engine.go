package discount

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInactive is returned when the discount has been switched off.
	ErrInactive = errors.New("discount not active")
	// ErrExpired is returned when the discount expiry instant has passed.
	ErrExpired = errors.New("discount expired")
	// ErrMinimumSpendUnmet indicates the cart subtotal did not reach the discount minimum.
	ErrMinimumSpendUnmet = errors.New("discount minimum order amount not met")
	// ErrInvalid is returned for discounts whose kind or value cannot be evaluated.
	ErrInvalid = errors.New("discount definition invalid")
)

// Kind selects how the discount value is interpreted.
type Kind string

const (
	KindPercentage   Kind = "percentage"
	KindFixedAmount  Kind = "fixed_amount"
	KindFreeShipping Kind = "free_shipping"
)

var hundred = decimal.NewFromInt(100)

// Discount captures a single promotional adjustment a cart can hold.
type Discount struct {
	Code           string           `json:"code"`
	Kind           Kind             `json:"kind"`
	Value          decimal.Decimal  `json:"value"`
	MinOrderAmount *decimal.Decimal `json:"minOrderAmount,omitempty"`
	MaxDiscount    *decimal.Decimal `json:"maxDiscount,omitempty"`
	ExpiresAt      *time.Time       `json:"expiresAt,omitempty"`
	Active         bool             `json:"active"`
}

// Validate ensures the discount can be applied at the provided instant and subtotal.
func (d Discount) Validate(now time.Time, subtotal decimal.Decimal) error {
	switch d.Kind {
	case KindPercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return ErrInvalid
		}
	case KindFixedAmount, KindFreeShipping:
		if d.Value.IsNegative() {
			return ErrInvalid
		}
	default:
		return ErrInvalid
	}
	if !d.Active {
		return ErrInactive
	}
	if d.ExpiresAt != nil && now.After(*d.ExpiresAt) {
		return ErrExpired
	}
	if d.MinOrderAmount != nil && d.MinOrderAmount.GreaterThan(subtotal) {
		return ErrMinimumSpendUnmet
	}
	return nil
}

// FreeShipping reports whether the discount waives shipping instead of reducing goods.
func (d Discount) FreeShipping() bool {
	return d.Kind == KindFreeShipping
}

// Amount determines the discount taken off the given subtotal, rounded to cents.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	var amount decimal.Decimal
	switch d.Kind {
	case KindPercentage:
		amount = subtotal.Mul(d.Value).Div(hundred)
	case KindFixedAmount:
		amount = decimal.Min(d.Value, subtotal)
	default:
		return decimal.Zero
	}
	if d.MaxDiscount != nil && amount.GreaterThan(*d.MaxDiscount) {
		amount = *d.MaxDiscount
	}
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount.Round(2)
}
