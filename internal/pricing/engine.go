package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/storefront-cart/internal/discount"
)

var hundred = decimal.NewFromInt(100)

// Line describes a cart line used for pricing calculation.
type Line struct {
	Qty       int
	UnitPrice decimal.Decimal
}

// Policy carries the cart-level configuration the pipeline depends on.
type Policy struct {
	Currency              string
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingCost          decimal.Decimal
}

// Totals aggregates computed pricing components.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	Shipping       decimal.Decimal `json:"shipping"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	Total          decimal.Decimal `json:"total"`
	ItemCount      int             `json:"itemCount"`
	Currency       string          `json:"currency"`
}

// Subtotal sums unit price times quantity without rounding.
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, l := range lines {
		if l.Qty <= 0 {
			continue
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return subtotal
}

// Compute runs the totals pipeline: subtotal, discount, post-discount subtotal,
// shipping, tax on goods plus shipping, and the grand total.
func Compute(lines []Line, d *discount.Discount, p Policy) Totals {
	count := 0
	for _, l := range lines {
		if l.Qty > 0 {
			count += l.Qty
		}
	}

	subtotal := Subtotal(lines)
	discountAmount := decimal.Zero
	if d != nil {
		discountAmount = d.Amount(subtotal)
	}
	afterDiscount := subtotal.Sub(discountAmount)

	shipping := p.ShippingCost
	switch {
	case d != nil && d.FreeShipping():
		shipping = decimal.Zero
	case afterDiscount.GreaterThanOrEqual(p.FreeShippingThreshold):
		shipping = decimal.Zero
	}

	taxable := afterDiscount.Add(shipping)
	tax := taxable.Mul(p.TaxRate).Div(hundred).Round(2)
	total := taxable.Add(tax).Round(2)

	return Totals{
		Subtotal:       subtotal.Round(2),
		DiscountAmount: discountAmount,
		Shipping:       shipping,
		TaxAmount:      tax,
		Total:          total,
		ItemCount:      count,
		Currency:       p.Currency,
	}
}
