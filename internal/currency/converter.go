package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownCurrency is returned when a code has no multiplier in the table.
var ErrUnknownCurrency = errors.New("unknown currency")

// Table maps currency codes to the number of reference units one unit is worth.
type Table struct {
	Reference   string
	ToReference map[string]decimal.Decimal
}

// Converter converts amounts by routing through the reference currency.
type Converter struct {
	reference string
	rates     map[string]decimal.Decimal
}

// New copies the table. The reference currency always converts at 1.
func New(t Table) *Converter {
	c := &Converter{
		reference: normalize(t.Reference),
		rates:     make(map[string]decimal.Decimal, len(t.ToReference)+1),
	}
	for code, rate := range t.ToReference {
		c.rates[normalize(code)] = rate
	}
	if c.reference != "" {
		c.rates[c.reference] = decimal.NewFromInt(1)
	}
	return c
}

// Reference returns the pivot currency code.
func (c *Converter) Reference() string {
	return c.reference
}

// Convert turns amount in from into to, rounded to cents.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	src, dst := normalize(from), normalize(to)
	if src == dst {
		return amount, nil
	}
	fromRate, ok := c.rates[src]
	if !ok || !fromRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("convert from %q: %w", from, ErrUnknownCurrency)
	}
	toRate, ok := c.rates[dst]
	if !ok || !toRate.IsPositive() {
		return decimal.Zero, fmt.Errorf("convert to %q: %w", to, ErrUnknownCurrency)
	}
	return amount.Mul(fromRate).Div(toRate).Round(2), nil
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultTable returns a fresh copy of the built-in EUR-based multiplier table.
func DefaultTable() Table {
	d := decimal.RequireFromString
	return Table{
		Reference: "EUR",
		ToReference: map[string]decimal.Decimal{
			"USD": d("0.92"),
			"GBP": d("1.17"),
			"CHF": d("1.04"),
			"JPY": d("0.0062"),
			"CAD": d("0.68"),
			"SEK": d("0.087"),
		},
	}
}
