package domain

// Unit represents the measurement unit of an ingredient quantity.
type Unit string

const (
	UnitKilogram Unit = "kg"
	UnitGram     Unit = "g"
	UnitGallon   Unit = "gal"
	UnitLiter    Unit = "l"
	UnitPercent  Unit = "%"
)

// AllowedUnits maps accepted unit spellings (uppercased) to their Unit.
// Source spreadsheets use KG/GL/LB-style abbreviations inconsistently.
var AllowedUnits = map[string]Unit{
	"KG":  UnitKilogram,
	"KGS": UnitKilogram,
	"G":   UnitGram,
	"GR":  UnitGram,
	"GAL": UnitGallon,
	"GL":  UnitGallon,
	"L":   UnitLiter,
	"LT":  UnitLiter,
	"%":   UnitPercent,
	"PCT": UnitPercent,
}

// IsVolumetric reports whether the unit measures volume rather than mass.
func (u Unit) IsVolumetric() bool {
	return u == UnitGallon || u == UnitLiter
}

// IssueSeverity classifies a validation finding.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// RuleKind categorizes a validation rule for reporting.
type RuleKind string

const (
	RuleKindRatioBand   RuleKind = "ratio_band"
	RuleKindCountRange  RuleKind = "count_range"
	RuleKindRequired    RuleKind = "required_ingredients"
	RuleKindSumCheck    RuleKind = "sum_check"
	RuleKindConsistency RuleKind = "consistency"
)

// OrderStatus represents the lifecycle of a production order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusProduced  OrderStatus = "produced"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Brand identifies a paint brand; formulas and rules are keyed by it.
type Brand string

const (
	BrandInfiniti Brand = "INFINITI"
	BrandMilan    Brand = "MILAN"
)

// BrandPrefixes maps a brand to its formula key prefix.
var BrandPrefixes = map[Brand]string{
	BrandInfiniti: "IN",
	BrandMilan:    "PM",
}
