package cart

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteSummary renders a human readable receipt. The layout is for display
// only and may change.
func (c *Cart) WriteSummary(w io.Writer) error {
	totals := c.Totals()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(tw, "Cart %s (%s)\t\t\n", c.id, c.cfg.Currency)
	if c.IsEmpty() {
		fmt.Fprintf(tw, "(empty)\t\t\n")
	}
	for _, it := range c.items {
		fmt.Fprintf(tw, "%d x %s @ %s\t%s\t\n", it.Quantity, displayName(it), it.Product.Price.StringFixed(2), it.Total().StringFixed(2))
	}
	fmt.Fprintf(tw, "Subtotal\t%s\t\n", totals.Subtotal.StringFixed(2))
	if c.discount != nil {
		fmt.Fprintf(tw, "Discount (%s)\t-%s\t\n", c.discount.Code, totals.DiscountAmount.StringFixed(2))
	}
	fmt.Fprintf(tw, "Shipping\t%s\t\n", totals.Shipping.StringFixed(2))
	fmt.Fprintf(tw, "Tax (%s%%)\t%s\t\n", c.cfg.TaxRate.String(), totals.TaxAmount.StringFixed(2))
	fmt.Fprintf(tw, "Total\t%s %s\t\n", totals.Total.StringFixed(2), totals.Currency)
	fmt.Fprintf(tw, "Items\t%d\t\n", totals.ItemCount)
	return tw.Flush()
}

// Summary returns WriteSummary's output as a string.
func (c *Cart) Summary() string {
	var sb strings.Builder
	_ = c.WriteSummary(&sb)
	return sb.String()
}

func displayName(it LineItem) string {
	if name := strings.TrimSpace(it.Product.Name); name != "" {
		return name
	}
	return it.Product.ID
}
