package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/storefront-cart/internal/app"
	"github.com/noah-isme/storefront-cart/internal/catalog"
	"github.com/noah-isme/storefront-cart/internal/config"
	"github.com/noah-isme/storefront-cart/internal/discount"
	"github.com/noah-isme/storefront-cart/internal/obs"
)

type itemFlags []string

func (f *itemFlags) String() string { return strings.Join(*f, ",") }

func (f *itemFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

// cartctl builds a cart from the demo catalog and prints its summary and totals.
// Exit code 0 = ok, 1 = rejected operation, 2 = configuration error.
func main() {
	var items itemFlags
	flag.Var(&items, "item", "product to add as sku=qty; repeatable")
	var (
		code       = flag.String("discount", "", "discount code to apply")
		kind       = flag.String("kind", string(discount.KindPercentage), "discount kind: percentage, fixed_amount or free_shipping")
		value      = flag.String("value", "0", "discount value")
		minOrder   = flag.String("min-order", "", "minimum order amount for the discount")
		maxOff     = flag.String("max-discount", "", "maximum discount amount")
		validFor   = flag.Duration("valid-for", 0, "discount lifetime from now; 0 means no expiry")
		shipTo     = flag.String("ship-to", "", "country code to quote shipping options for")
		convertTo  = flag.String("convert-to", "", "currency to convert the total into")
		jsonOutput = flag.Bool("json", false, "print totals as JSON instead of the summary")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartctl: %v\n", err)
		os.Exit(2)
	}
	logger := obs.NewLoggerTo(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	deps := app.New(cfg, logger)

	c, err := deps.NewCart()
	if err != nil {
		logger.Error().Err(err).Msg("create cart")
		os.Exit(2)
	}

	products := demoCatalog(cfg.Currency)
	failed := false
	for _, raw := range items {
		sku, qty, err := parseItem(raw)
		if err != nil {
			logger.Error().Err(err).Str("item", raw).Msg("parse item")
			os.Exit(2)
		}
		product, ok := products[sku]
		if !ok {
			logger.Warn().Str("sku", sku).Msg("unknown product")
			failed = true
			continue
		}
		if _, err := c.AddItem(product, qty); err != nil {
			logger.Warn().Err(err).Msg("add item rejected")
			failed = true
		}
	}

	if strings.TrimSpace(*code) != "" {
		d, err := buildDiscount(*code, *kind, *value, *minOrder, *maxOff, *validFor)
		if err != nil {
			logger.Error().Err(err).Msg("parse discount")
			os.Exit(2)
		}
		if err := c.ApplyDiscount(d); err != nil {
			logger.Warn().Err(err).Msg("discount rejected")
			failed = true
		}
	}

	totals := c.Totals()
	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(totals); err != nil {
			logger.Error().Err(err).Msg("encode totals")
			os.Exit(2)
		}
	} else if err := c.WriteSummary(os.Stdout); err != nil {
		logger.Error().Err(err).Msg("write summary")
		os.Exit(2)
	}

	if *shipTo != "" {
		quote := c.ShippingQuote(deps.Shipping, *shipTo)
		if !quote.Available {
			fmt.Printf("no shipping to %s\n", strings.ToUpper(*shipTo))
		}
		for _, r := range quote.Rates {
			fmt.Printf("ship %-24s %8s %s  %d-%d days\n", r.Name, r.Price.StringFixed(2), cfg.Currency, r.MinDays, r.MaxDays)
		}
		if quote.Available && !quote.FreeShippingEligible {
			fmt.Printf("add %s %s for free shipping\n", quote.AmountRemainingForFreeShipping.StringFixed(2), cfg.Currency)
		}
	}

	if *convertTo != "" {
		converted, err := deps.Currency.Convert(totals.Total, totals.Currency, *convertTo)
		if err != nil {
			logger.Warn().Err(err).Msg("convert total")
			failed = true
		} else {
			fmt.Printf("total in %s: %s\n", strings.ToUpper(*convertTo), converted.StringFixed(2))
		}
	}

	if families, err := deps.MetricsRegistry.Gather(); err == nil {
		for _, mf := range families {
			logger.Debug().Str("metric", mf.GetName()).Int("series", len(mf.GetMetric())).Msg("metrics snapshot")
		}
	}

	if failed {
		os.Exit(1)
	}
}

func parseItem(raw string) (string, int, error) {
	sku, qtyRaw, found := strings.Cut(raw, "=")
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return "", 0, errors.New("item sku is required")
	}
	if !found {
		return sku, 1, nil
	}
	qty, err := strconv.Atoi(strings.TrimSpace(qtyRaw))
	if err != nil {
		return "", 0, fmt.Errorf("item quantity: %w", err)
	}
	return sku, qty, nil
}

func buildDiscount(code, kind, value, minOrder, maxOff string, validFor time.Duration) (discount.Discount, error) {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return discount.Discount{}, fmt.Errorf("discount value: %w", err)
	}
	d := discount.Discount{Code: code, Kind: discount.Kind(kind), Value: v, Active: true}
	if minOrder != "" {
		m, err := decimal.NewFromString(minOrder)
		if err != nil {
			return discount.Discount{}, fmt.Errorf("min order: %w", err)
		}
		d.MinOrderAmount = &m
	}
	if maxOff != "" {
		m, err := decimal.NewFromString(maxOff)
		if err != nil {
			return discount.Discount{}, fmt.Errorf("max discount: %w", err)
		}
		d.MaxDiscount = &m
	}
	if validFor > 0 {
		expires := time.Now().Add(validFor)
		d.ExpiresAt = &expires
	}
	return d, nil
}

func demoCatalog(currency string) map[string]catalog.Product {
	price := decimal.RequireFromString
	list := []catalog.Product{
		{ID: "mug", Name: "Enamel mug", Price: price("29.90"), Status: catalog.StatusAvailable, Stock: 12, Category: "homeware"},
		{ID: "tee", Name: "Organic tee", Price: price("24.00"), Status: catalog.StatusAvailable, Stock: 30, Category: "clothing"},
		{ID: "book", Name: "Field notes", Price: price("12.50"), Status: catalog.StatusPreorder, Stock: 100, Category: "books"},
		{ID: "lamp", Name: "Desk lamp", Price: price("89.00"), Status: catalog.StatusOutOfStock, Stock: 0, Category: "homeware"},
		{ID: "poster", Name: "Tour poster", Price: price("15.00"), Status: catalog.StatusDiscontinued, Stock: 4, Category: "art"},
	}
	out := make(map[string]catalog.Product, len(list))
	for _, p := range list {
		p.Currency = currency
		out[p.ID] = p
	}
	return out
}
