package domain

import "github.com/shopspring/decimal"

var (
	gramsPerKilogram = decimal.NewFromInt(1000)
	litersPerGallon  = decimal.RequireFromString("3.785411784")
)

// WeightKg converts a quantity in the given unit to kilograms. Volumetric
// units need a density (kg/gal); with zero density the weight is unknown and
// zero is returned.
func WeightKg(qty decimal.Decimal, unit Unit, density decimal.Decimal) decimal.Decimal {
	switch unit {
	case UnitGram:
		return qty.Div(gramsPerKilogram)
	case UnitGallon:
		return qty.Mul(density)
	case UnitLiter:
		return qty.Div(litersPerGallon).Mul(density)
	default:
		// kg, or % of a nominal 100 kg master batch
		return qty
	}
}

// VolumeGal converts a quantity in the given unit to gallons. Mass units
// need a density; with zero density the volume is unknown and zero is
// returned.
func VolumeGal(qty decimal.Decimal, unit Unit, density decimal.Decimal) decimal.Decimal {
	switch unit {
	case UnitGallon:
		return qty
	case UnitLiter:
		return qty.Div(litersPerGallon)
	default:
		if !density.IsPositive() {
			return decimal.Zero
		}
		return WeightKg(qty, unit, density).Div(density)
	}
}

// ToGallons converts a volume quantity to gallons. Only volumetric units are
// meaningful; others are returned unchanged.
func ToGallons(qty decimal.Decimal, unit Unit) decimal.Decimal {
	if unit == UnitLiter {
		return qty.Div(litersPerGallon)
	}
	return qty
}
