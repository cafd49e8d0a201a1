package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv                string `validate:"required"`
	LogFormat             string `validate:"oneof=json console text"`
	LogLevel              string
	MetricsNamespace      string `validate:"required"`
	Currency              string `validate:"required,len=3,alpha"`
	Country               string `validate:"omitempty,len=2,alpha"`
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	ShippingCost          decimal.Decimal
	EnforceCurrency       bool
	// TaxRateExplicit is true when CART_TAX_RATE was set, which takes
	// precedence over a country lookup.
	TaxRateExplicit bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:           valueOrDefault(k.String("APP_ENV"), "development"),
		LogFormat:        strings.ToLower(valueOrDefault(k.String("LOG_FORMAT"), "json")),
		LogLevel:         valueOrDefault(k.String("LOG_LEVEL"), "info"),
		MetricsNamespace: valueOrDefault(k.String("METRICS_NAMESPACE"), "storefront"),
		Currency:         strings.ToUpper(strings.TrimSpace(k.String("CART_CURRENCY"))),
		Country:          strings.ToUpper(strings.TrimSpace(k.String("CART_COUNTRY"))),
		EnforceCurrency:  parseBool(k.String("CART_ENFORCE_CURRENCY")),
		TaxRateExplicit:  strings.TrimSpace(k.String("CART_TAX_RATE")) != "",
	}

	var err error
	if cfg.TaxRate, err = parseDecimal("CART_TAX_RATE", k.String("CART_TAX_RATE"), "20"); err != nil {
		return nil, err
	}
	if cfg.FreeShippingThreshold, err = parseDecimal("CART_FREE_SHIPPING_THRESHOLD", k.String("CART_FREE_SHIPPING_THRESHOLD"), "50"); err != nil {
		return nil, err
	}
	if cfg.ShippingCost, err = parseDecimal("CART_SHIPPING_COST", k.String("CART_SHIPPING_COST"), "4.90"); err != nil {
		return nil, err
	}

	if cfg.Currency == "" {
		return nil, errors.New("CART_CURRENCY is required")
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDecimal(key, value, fallback string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		raw = fallback
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", key, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
