package shipping

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RestOfWorld is the country wildcard that matches any code without an explicit zone.
const RestOfWorld = "*"

// Rate is a single shipping option offered inside a zone.
type Rate struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	MinDays int             `json:"minDays"`
	MaxDays int             `json:"maxDays"`
}

// Zone groups country codes sharing the same shipping rates.
type Zone struct {
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
	Rates     []Rate   `json:"rates"`
}

func (z Zone) covers(country string) bool {
	for _, c := range z.Countries {
		if c == country {
			return true
		}
	}
	return false
}

func (z Zone) clone() Zone {
	out := Zone{Name: z.Name}
	out.Countries = make([]string, 0, len(z.Countries))
	for _, c := range z.Countries {
		out.Countries = append(out.Countries, normalizeCountry(c))
	}
	out.Rates = append([]Rate(nil), z.Rates...)
	return out
}

func normalizeCountry(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultZones returns a fresh copy of the built-in zone table.
func DefaultZones() []Zone {
	return []Zone{
		{
			Name:      "domestic",
			Countries: []string{"FR"},
			Rates: []Rate{
				{ID: "fr-standard", Name: "Colissimo", Price: decimal.RequireFromString("4.90"), MinDays: 2, MaxDays: 3},
				{ID: "fr-relay", Name: "Point relais", Price: decimal.RequireFromString("3.90"), MinDays: 3, MaxDays: 5},
				{ID: "fr-express", Name: "Chronopost", Price: decimal.RequireFromString("9.90"), MinDays: 1, MaxDays: 1},
			},
		},
		{
			Name:      "europe",
			Countries: []string{"BE", "DE", "ES", "IT", "LU", "NL", "PT", "AT", "IE"},
			Rates: []Rate{
				{ID: "eu-standard", Name: "Standard", Price: decimal.RequireFromString("9.90"), MinDays: 3, MaxDays: 6},
				{ID: "eu-express", Name: "Express", Price: decimal.RequireFromString("19.90"), MinDays: 1, MaxDays: 3},
			},
		},
		{
			Name:      "world",
			Countries: []string{RestOfWorld},
			Rates: []Rate{
				{ID: "ww-standard", Name: "International", Price: decimal.RequireFromString("19.90"), MinDays: 7, MaxDays: 15},
				{ID: "ww-express", Name: "International express", Price: decimal.RequireFromString("39.90"), MinDays: 3, MaxDays: 6},
			},
		},
	}
}
