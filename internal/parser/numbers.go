package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"formulab/internal/domain"
)

var trailingUnit = regexp.MustCompile(`(?i)(KGS|KG|GAL|GL|GR|LT|LB|G|L|%)$`)

// ParseDecimal converts a messy numeric token to a decimal. It tolerates
// currency signs, percent signs, non-breaking spaces, European comma
// decimals ("1,5") and dotted thousands ("1.234.567").
func ParseDecimal(s string) (decimal.Decimal, bool) {
	x := strings.TrimSpace(s)
	if x == "" {
		return decimal.Zero, false
	}
	x = strings.NewReplacer(" ", "", " ", "", "$", "", "%", "").Replace(x)

	commas := strings.Count(x, ",")
	dots := strings.Count(x, ".")
	switch {
	case commas == 1 && dots == 0:
		x = strings.Replace(x, ",", ".", 1)
	case dots > 1 && commas == 0:
		// 1.234.567 → 1234567 with the last group as the decimal part
		idx := strings.LastIndex(x, ".")
		x = strings.ReplaceAll(x[:idx], ".", "") + x[idx:]
	case commas >= 1 && dots >= 1:
		// 1,234.56 → commas are thousands separators
		x = strings.ReplaceAll(x, ",", "")
	}

	d, err := decimal.NewFromString(x)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseQuantity parses a quantity token that may carry an embedded trailing
// unit, like "2.0kg" or "2,5 GL". The returned unit is empty when the token
// is a bare number.
func ParseQuantity(s string) (decimal.Decimal, domain.Unit, bool) {
	x := strings.TrimSpace(s)
	var unit domain.Unit
	if m := trailingUnit.FindString(x); m != "" {
		numeric := strings.TrimSpace(x[:len(x)-len(m)])
		// "230" losing its last digit to the G/L pattern must not happen:
		// only strip when what remains still holds a digit.
		if strings.ContainsAny(numeric, "0123456789") {
			if u, ok := lookupUnit(m); ok {
				x = numeric
				unit = u
			}
		}
	}
	d, ok := ParseDecimal(x)
	if !ok {
		return decimal.Zero, "", false
	}
	return d, unit, true
}

// lookupUnit resolves a unit spelling to its canonical Unit.
func lookupUnit(s string) (domain.Unit, bool) {
	u, ok := domain.AllowedUnits[strings.ToUpper(strings.TrimSpace(s))]
	return u, ok
}
