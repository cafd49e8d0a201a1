package tax

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultRate is the percentage returned for countries missing from the table.
var DefaultRate = decimal.NewFromInt(20)

// Table holds standard and reduced VAT percentages keyed by ISO country code.
type Table struct {
	Standard map[string]decimal.Decimal
	Reduced  map[string]map[string]decimal.Decimal
	Default  decimal.Decimal
}

// Lookup resolves tax percentages from an immutable copy of a Table.
type Lookup struct {
	table Table
}

// New copies the table, normalising country codes to upper case and categories to lower case.
func New(t Table) *Lookup {
	cp := Table{
		Standard: make(map[string]decimal.Decimal, len(t.Standard)),
		Reduced:  make(map[string]map[string]decimal.Decimal, len(t.Reduced)),
		Default:  t.Default,
	}
	for country, rate := range t.Standard {
		cp.Standard[normalizeCountry(country)] = rate
	}
	for country, categories := range t.Reduced {
		inner := make(map[string]decimal.Decimal, len(categories))
		for category, rate := range categories {
			inner[normalizeCategory(category)] = rate
		}
		cp.Reduced[normalizeCountry(country)] = inner
	}
	return &Lookup{table: cp}
}

// Rate returns the tax percentage for a country and optional product category.
// Unknown countries resolve to the table default; categories without a reduced
// entry fall back to the country's standard rate.
func (l *Lookup) Rate(country, category string) decimal.Decimal {
	code := normalizeCountry(country)
	standard, ok := l.table.Standard[code]
	if !ok {
		return l.table.Default
	}
	if cat := normalizeCategory(category); cat != "" {
		if reduced, ok := l.table.Reduced[code][cat]; ok {
			return reduced
		}
	}
	return standard
}

// Known reports whether the country has an explicit entry.
func (l *Lookup) Known(country string) bool {
	_, ok := l.table.Standard[normalizeCountry(country)]
	return ok
}

func normalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// DefaultTable returns a fresh copy of the built-in European VAT table.
func DefaultTable() Table {
	d := decimal.RequireFromString
	return Table{
		Standard: map[string]decimal.Decimal{
			"FR": d("20"),
			"DE": d("19"),
			"BE": d("21"),
			"ES": d("21"),
			"IT": d("22"),
			"NL": d("21"),
			"LU": d("17"),
			"PT": d("23"),
			"IE": d("23"),
			"AT": d("20"),
			"GB": d("20"),
			"CH": d("8.1"),
		},
		Reduced: map[string]map[string]decimal.Decimal{
			"FR": {"food": d("5.5"), "books": d("5.5"), "medicine": d("2.1")},
			"DE": {"food": d("7"), "books": d("7")},
			"BE": {"food": d("6"), "books": d("6")},
			"ES": {"food": d("10"), "books": d("4")},
			"IT": {"food": d("10"), "books": d("4")},
			"NL": {"food": d("9"), "books": d("9")},
			"GB": {"books": d("0"), "children_clothing": d("0")},
		},
		Default: DefaultRate,
	}
}
