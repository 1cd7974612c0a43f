package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Plausibility band for a density column. Sheets record kg/gal (water 3.78,
// dense pigments up to ~25) while some suppliers quote kg/L-scale figures
// just under 1; numbers outside the band are prices, percentages or totals
// that landed in the wrong column.
var (
	densityFloor   = decimal.RequireFromString("0.5")
	densityCeiling = decimal.RequireFromString("25")
)

// defaultDensities maps well-known raw material names to kg/gal densities,
// used when a row carries no usable density column. Keys are matched as
// substrings of the uppercased ingredient name.
var defaultDensities = map[string]decimal.Decimal{
	"AGUA":            decimal.RequireFromString("3.78"),
	"WATER":           decimal.RequireFromString("3.78"),
	"ETHYLENE GLYCOL": decimal.RequireFromString("4.21"),
	"TEXANOL":         decimal.RequireFromString("3.58"),
}

// plausibleDensity reports whether d sits in the kg/gal band.
func plausibleDensity(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(densityFloor) && d.LessThanOrEqual(densityCeiling)
}

// densityByName looks up a default density for a raw material name.
func densityByName(name string) (decimal.Decimal, bool) {
	upper := strings.ToUpper(name)
	for key, d := range defaultDensities {
		if strings.Contains(upper, key) {
			return d, true
		}
	}
	return decimal.Zero, false
}
