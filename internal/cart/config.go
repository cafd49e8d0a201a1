package cart

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/storefront-cart/internal/pricing"
)

// Default cart settings applied by NewConfig.
var (
	DefaultTaxRate               = decimal.NewFromInt(20)
	DefaultFreeShippingThreshold = decimal.NewFromInt(50)
	DefaultShippingCost          = decimal.RequireFromString("4.90")
)

// Config is the immutable per-cart pricing configuration. Nil amounts are
// filled with DefaultTaxRate, DefaultFreeShippingThreshold and
// DefaultShippingCost when the cart is built.
type Config struct {
	Currency              string           `json:"currency" validate:"required,len=3,alpha"`
	TaxRate               *decimal.Decimal `json:"taxRate,omitempty"`
	FreeShippingThreshold *decimal.Decimal `json:"freeShippingThreshold,omitempty"`
	ShippingCost          *decimal.Decimal `json:"shippingCost,omitempty"`
}

// NewConfig returns the default configuration for a currency.
func NewConfig(currency string) Config {
	return Config{Currency: currency}.withDefaults()
}

// Amount returns a pointer to a copy of d, for filling Config fields.
func Amount(d decimal.Decimal) *decimal.Decimal {
	return &d
}

// withDefaults copies every amount so the result shares no pointers with c
// or the package defaults.
func (c Config) withDefaults() Config {
	c.TaxRate = amountOr(c.TaxRate, DefaultTaxRate)
	c.FreeShippingThreshold = amountOr(c.FreeShippingThreshold, DefaultFreeShippingThreshold)
	c.ShippingCost = amountOr(c.ShippingCost, DefaultShippingCost)
	return c
}

func amountOr(v *decimal.Decimal, fallback decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return Amount(fallback)
	}
	return Amount(*v)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the currency code and that no amount is negative.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid cart config: %w", err)
	}
	if c.TaxRate != nil && c.TaxRate.IsNegative() {
		return errors.New("invalid cart config: tax rate must not be negative")
	}
	if c.FreeShippingThreshold != nil && c.FreeShippingThreshold.IsNegative() {
		return errors.New("invalid cart config: free shipping threshold must not be negative")
	}
	if c.ShippingCost != nil && c.ShippingCost.IsNegative() {
		return errors.New("invalid cart config: shipping cost must not be negative")
	}
	return nil
}

// policy expects a config already passed through withDefaults.
func (c Config) policy() pricing.Policy {
	return pricing.Policy{
		Currency:              c.Currency,
		TaxRate:               *c.TaxRate,
		FreeShippingThreshold: *c.FreeShippingThreshold,
		ShippingCost:          *c.ShippingCost,
	}
}
