package scaling

import (
	"github.com/shopspring/decimal"

	"formulab/internal/domain"
)

// displayPlaces is the per-unit precision used at the presentation boundary.
// Scales and measuring cups on the floor resolve grams and hundredths of a
// gallon; showing more digits just invites transcription errors.
var displayPlaces = map[domain.Unit]int32{
	domain.UnitKilogram: 3,
	domain.UnitGram:     1,
	domain.UnitGallon:   3,
	domain.UnitLiter:    3,
	domain.UnitPercent:  2,
}

// RoundForDisplay rounds a quantity for documents and API responses. The
// engine itself never calls this on values it keeps.
func RoundForDisplay(d decimal.Decimal, unit domain.Unit) decimal.Decimal {
	places, ok := displayPlaces[unit]
	if !ok {
		places = 3
	}
	return d.Round(places)
}

// RoundRatio rounds a kg/gal ratio for display.
func RoundRatio(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
