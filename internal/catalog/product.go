package catalog

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Status describes whether a product can currently be sold.
type Status string

const (
	StatusAvailable    Status = "available"
	StatusOutOfStock   Status = "out_of_stock"
	StatusPreorder     Status = "preorder"
	StatusDiscontinued Status = "discontinued"
)

// Purchasable reports whether items with this status may be placed in a cart.
func (s Status) Purchasable() bool {
	return s == StatusAvailable || s == StatusPreorder
}

// Product is the catalog snapshot a cart copies at insertion time.
type Product struct {
	ID       string          `json:"id" validate:"required"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" validate:"required,len=3,alpha"`
	Status   Status          `json:"status" validate:"oneof=available out_of_stock preorder discontinued"`
	Stock    int             `json:"stock" validate:"gte=0"`
	Category string          `json:"category,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the structural constraints of the product.
func (p Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid product %q: %w", p.ID, err)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("invalid product %q: price must not be negative", p.ID)
	}
	return nil
}

// SameCurrency reports whether the product is priced in the given currency code.
func (p Product) SameCurrency(code string) bool {
	return strings.EqualFold(strings.TrimSpace(p.Currency), strings.TrimSpace(code))
}
