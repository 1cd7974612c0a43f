package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is a single raw material line within a stage.
// Weight is kilograms, Volume is gallons; both are derived at build time so
// downstream consumers never recompute them. Instances are value types: the
// scaling engine copies, it never mutates.
type Ingredient struct {
	Code            string          `db:"code" json:"code"`
	Name            string          `db:"name" json:"name"`
	Quantity        decimal.Decimal `db:"quantity" json:"quantity"`
	Unit            Unit            `db:"unit" json:"unit"`
	Density         decimal.Decimal `db:"density" json:"density"` // kg per gallon; zero = unknown
	DensityInferred bool            `db:"density_inferred" json:"density_inferred"`
	Weight          decimal.Decimal `db:"weight" json:"weight"` // kg, derived
	Volume          decimal.Decimal `db:"volume" json:"volume"` // gal, derived
}

// Stage is a named mixing phase grouping the ingredients combined together.
// A stage marker may declare the liquid volume the stage yields; when it does
// the declared value wins over the density-derived sum, because source sheets
// record measured volumes that already account for mixing losses.
type Stage struct {
	Index           int             `json:"index"`
	Name            string          `json:"name"`
	Ingredients     []Ingredient    `json:"ingredients"`
	DeclaredVolume  decimal.Decimal `json:"declared_volume,omitempty"` // gal, from the stage marker
	TotalWeight     decimal.Decimal `json:"total_weight"`              // kg, derived
	TotalVolume     decimal.Decimal `json:"total_volume"`              // gal, derived
	WeightPerVolume decimal.Decimal `json:"weight_per_volume"`         // kg/gal; zero when TotalVolume is zero
}

// Recompute refreshes the stage's derived totals from its ingredients.
func (s *Stage) Recompute() {
	total := decimal.Zero
	volume := decimal.Zero
	for i := range s.Ingredients {
		total = total.Add(s.Ingredients[i].Weight)
		volume = volume.Add(s.Ingredients[i].Volume)
	}
	s.TotalWeight = total
	if s.DeclaredVolume.IsPositive() {
		volume = s.DeclaredVolume
	}
	s.TotalVolume = volume
	if volume.IsPositive() {
		s.WeightPerVolume = total.Div(volume)
	} else {
		s.WeightPerVolume = decimal.Zero
	}
}

// Formula is a structured paint recipe: ordered stages of ordered
// ingredients plus capture metadata. Treated as immutable once built; the
// scaling engine returns a fresh instance.
type Formula struct {
	ID           uuid.UUID         `json:"id"`
	Key          string            `json:"key"` // <BRAND>-<TYPETAG>-<COLORTAG>
	Brand        Brand             `json:"brand"`
	Type         string            `json:"type"`
	Color        string            `json:"color"`
	Presentation string            `json:"presentation"`
	Version      string            `json:"version"`
	BaseVolume   decimal.Decimal   `json:"base_volume"`  // gallons the master batch produces
	DeclaredWPV  decimal.Decimal   `json:"declared_wpv"` // declared weight-per-gallon ("P/G")
	Stages       []Stage           `json:"stages"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// TotalWeight returns the sum of all stage weights in kilograms.
func (f *Formula) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for i := range f.Stages {
		total = total.Add(f.Stages[i].TotalWeight)
	}
	return total
}

// TotalVolume returns the sum of all stage volumes in gallons.
func (f *Formula) TotalVolume() decimal.Decimal {
	total := decimal.Zero
	for i := range f.Stages {
		total = total.Add(f.Stages[i].TotalVolume)
	}
	return total
}

// WeightPerVolume returns the formula-wide kg/gal ratio, or zero when the
// total volume is zero.
func (f *Formula) WeightPerVolume() decimal.Decimal {
	vol := f.TotalVolume()
	if !vol.IsPositive() {
		return decimal.Zero
	}
	return f.TotalWeight().Div(vol)
}

// Clone returns a deep copy of the formula.
func (f *Formula) Clone() *Formula {
	out := *f
	out.Stages = make([]Stage, len(f.Stages))
	for i := range f.Stages {
		st := f.Stages[i]
		st.Ingredients = append([]Ingredient(nil), f.Stages[i].Ingredients...)
		out.Stages[i] = st
	}
	if f.Metadata != nil {
		out.Metadata = make(map[string]string, len(f.Metadata))
		for k, v := range f.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// Issue is a single validation finding on a structurally well-formed formula.
// Issues never abort processing; the validator always returns the full set.
type Issue struct {
	Severity   IssueSeverity `json:"severity"`
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Stage      string        `json:"stage,omitempty"`
	Ingredient string        `json:"ingredient,omitempty"`
	Expected   string        `json:"expected,omitempty"`
	Actual     string        `json:"actual,omitempty"`
}

// HasErrors reports whether any issue in the set is Error severity.
// Warnings do not block downstream use.
func HasErrors(issues []Issue) bool {
	for i := range issues {
		if issues[i].Severity == SeverityError {
			return true
		}
	}
	return false
}

// ScalingRequest asks for a formula rescaled to a new target volume.
type ScalingRequest struct {
	TargetVolume decimal.Decimal `json:"target_volume"`
	Unit         Unit            `json:"unit"`
}

// ValidationRule is a declarative brand/type-scoped validation rule. Rules
// are data: the engine interprets Config according to the checker registered
// under BuiltinKey, so new brand/type combinations never touch the algorithm.
type ValidationRule struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Brand      Brand           `db:"brand" json:"brand"`
	Type       string          `db:"type" json:"type"`
	RuleName   string          `db:"rule_name" json:"rule_name"`
	Kind       RuleKind        `db:"kind" json:"kind"`
	Config     json.RawMessage `db:"config" json:"config"` // checker-specific
	Severity   IssueSeverity   `db:"severity" json:"severity"`
	IsBuiltin  bool            `db:"is_builtin" json:"is_builtin"`
	BuiltinKey string          `db:"builtin_key" json:"builtin_key"`
	IsActive   bool            `db:"is_active" json:"is_active"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Order is a production order: a formula scaled to requested gallons plus
// the generated production document reference.
type Order struct {
	ID          string          `db:"id" json:"id"` // ORD-YYYYMMDD-XXXX
	FormulaKey  string          `db:"formula_key" json:"formula_key"`
	TargetGal   decimal.Decimal `db:"target_gal" json:"target_gal"`
	Status      OrderStatus     `db:"status" json:"status"`
	DocumentRef string          `db:"document_ref" json:"document_ref"` // artifact location
	MeasuredWPV decimal.Decimal `db:"measured_wpv" json:"measured_wpv"` // recorded at production time
	Notes       string          `db:"notes" json:"notes"`
	CreatedBy   string          `db:"created_by" json:"created_by"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// TypeMapping associates a free-form paint type name with its short key tag
// (e.g. "ACRILICA SATINADA" → "AS").
type TypeMapping struct {
	Type string `db:"type" json:"type"`
	Tag  string `db:"tag" json:"tag"`
}
