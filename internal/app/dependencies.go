package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/noah-isme/storefront-cart/internal/cart"
	"github.com/noah-isme/storefront-cart/internal/config"
	"github.com/noah-isme/storefront-cart/internal/currency"
	"github.com/noah-isme/storefront-cart/internal/events"
	"github.com/noah-isme/storefront-cart/internal/obs"
	"github.com/noah-isme/storefront-cart/internal/shipping"
	"github.com/noah-isme/storefront-cart/internal/tax"
)

// Dependencies enumerates the collaborators shared by carts built from one configuration.
type Dependencies struct {
	Config          *config.Config
	Logger          zerolog.Logger
	MetricsRegistry *prometheus.Registry
	Metrics         *obs.CartMetrics
	Events          *events.Bus
	Tax             *tax.Lookup
	Currency        *currency.Converter
	Shipping        *shipping.Lookup
}

// New wires logging, metrics, the event bus and the built-in rate tables.
func New(cfg *config.Config, logger zerolog.Logger) *Dependencies {
	registry := prometheus.NewRegistry()
	metrics := obs.NewCartMetrics(cfg.MetricsNamespace, registry)
	return &Dependencies{
		Config:          cfg,
		Logger:          logger,
		MetricsRegistry: registry,
		Metrics:         metrics,
		Events: &events.Bus{Notifiers: []events.Notifier{
			metrics,
			obs.LogNotifier{Logger: logger.With().Str("component", "events").Logger()},
		}},
		Tax:      tax.New(tax.DefaultTable()),
		Currency: currency.New(currency.DefaultTable()),
		Shipping: shipping.NewLookup(shipping.DefaultZones()),
	}
}

// CartConfig resolves the cart configuration. An explicit tax rate wins;
// otherwise a configured country selects its standard rate.
func (d *Dependencies) CartConfig() cart.Config {
	cc := cart.Config{
		Currency:              d.Config.Currency,
		TaxRate:               cart.Amount(d.Config.TaxRate),
		FreeShippingThreshold: cart.Amount(d.Config.FreeShippingThreshold),
		ShippingCost:          cart.Amount(d.Config.ShippingCost),
	}
	if !d.Config.TaxRateExplicit && d.Config.Country != "" {
		cc.TaxRate = cart.Amount(d.Tax.Rate(d.Config.Country, ""))
	}
	return cc
}

// NewCart builds a cart wired to the shared logger and event bus.
func (d *Dependencies) NewCart(opts ...cart.Option) (*cart.Cart, error) {
	base := []cart.Option{
		cart.WithLogger(d.Logger),
		cart.WithEvents(d.Events),
	}
	if d.Config.EnforceCurrency {
		base = append(base, cart.WithCurrencyCheck())
	}
	return cart.New(d.CartConfig(), append(base, opts...)...)
}
