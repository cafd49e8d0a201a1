package shipping

import (
	"github.com/shopspring/decimal"
)

// Quote is the shipping answer for a destination and order amount.
type Quote struct {
	Available                      bool            `json:"available"`
	Zone                           string          `json:"zone,omitempty"`
	Rates                          []Rate          `json:"rates"`
	Cheapest                       *Rate           `json:"cheapest,omitempty"`
	Fastest                        *Rate           `json:"fastest,omitempty"`
	FreeShippingEligible           bool            `json:"freeShippingEligible"`
	AmountRemainingForFreeShipping decimal.Decimal `json:"amountRemainingForFreeShipping"`
}

// Lookup resolves shipping options against an immutable zone table.
type Lookup struct {
	zones []Zone
}

// NewLookup copies the provided zones so later caller mutations do not leak in.
func NewLookup(zones []Zone) *Lookup {
	l := &Lookup{zones: make([]Zone, 0, len(zones))}
	for _, z := range zones {
		l.zones = append(l.zones, z.clone())
	}
	return l
}

// Zone finds the zone for a country, preferring an exact match over the rest-of-world wildcard.
func (l *Lookup) Zone(country string) (Zone, bool) {
	if l == nil {
		return Zone{}, false
	}
	code := normalizeCountry(country)
	if code != "" && code != RestOfWorld {
		for _, z := range l.zones {
			if z.covers(code) {
				return z.clone(), true
			}
		}
	}
	for _, z := range l.zones {
		if z.covers(RestOfWorld) {
			return z.clone(), true
		}
	}
	return Zone{}, false
}

// Options lists the rates for the destination. When the order reaches the
// threshold only the cheapest rate (first on ties) becomes free.
func (l *Lookup) Options(country string, orderAmount, threshold decimal.Decimal) Quote {
	remaining := threshold.Sub(orderAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	zone, ok := l.Zone(country)
	if !ok || len(zone.Rates) == 0 {
		return Quote{Rates: []Rate{}, AmountRemainingForFreeShipping: remaining.Round(2)}
	}

	rates := append([]Rate(nil), zone.Rates...)
	cheapest := 0
	fastest := 0
	for i := 1; i < len(rates); i++ {
		if rates[i].Price.LessThan(rates[cheapest].Price) {
			cheapest = i
		}
		if rates[i].MaxDays < rates[fastest].MaxDays {
			fastest = i
		}
	}
	eligible := orderAmount.GreaterThanOrEqual(threshold)
	if eligible {
		rates[cheapest].Price = decimal.Zero
	}
	return Quote{
		Available:                      true,
		Zone:                           zone.Name,
		Rates:                          rates,
		Cheapest:                       &rates[cheapest],
		Fastest:                        &rates[fastest],
		FreeShippingEligible:           eligible,
		AmountRemainingForFreeShipping: remaining.Round(2),
	}
}
