package paint

import (
	"fmt"

	"github.com/shopspring/decimal"

	"formulab/internal/domain"
)

// BandConfig bounds an acceptable weight-per-volume ratio in kg/gal.
type BandConfig struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func defaultBand() BandConfig {
	return BandConfig{
		Min: decimal.RequireFromString("2.8"),
		Max: decimal.RequireFromString("25"),
	}
}

func (b BandConfig) contains(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(b.Min) && d.LessThanOrEqual(b.Max)
}

func (b BandConfig) String() string {
	return fmt.Sprintf("[%s, %s]", b.Min, b.Max)
}

// wpvBandChecker verifies the formula-wide and per-stage kg/gal ratios sit
// inside the configured band. A paint outside its band separates, settles or
// fails coverage QC, so the default severity is error.
func wpvBandChecker() *Checker {
	const key = "paint.wpv_band"
	return &Checker{
		key: key, name: "Weight per volume band",
		kind: domain.RuleKindRatioBand, sev: domain.SeverityError,
		fn: func(f *domain.Formula, config []byte) []domain.Issue {
			band := decodeConfig(config, defaultBand())
			var issues []domain.Issue

			for i := range f.Stages {
				st := &f.Stages[i]
				if len(st.Ingredients) == 0 {
					continue
				}
				if !st.TotalVolume.IsPositive() {
					is := issue(key, fmt.Sprintf("stage %q total volume is zero; weight per volume is undefined", st.Name))
					is.Stage = st.Name
					is.Expected = band.String()
					issues = append(issues, is)
					continue
				}
				if band.contains(st.WeightPerVolume) {
					continue
				}
				is := issue(key, fmt.Sprintf("stage %q weight per volume %s kg/gal outside %s", st.Name, st.WeightPerVolume, band))
				is.Stage = st.Name
				is.Expected, is.Actual = band.String(), st.WeightPerVolume.String()
				issues = append(issues, is)
			}

			// The formula-wide aggregate only adds information when stages
			// can offset each other; a single stage is already reported
			// above, and a formula with zero total volume has every
			// non-empty stage flagged individually.
			if len(f.Stages) > 1 && f.TotalVolume().IsPositive() {
				wpv := f.WeightPerVolume()
				if !band.contains(wpv) {
					is := issue(key, fmt.Sprintf("weight per volume %s kg/gal outside %s", wpv, band))
					is.Expected, is.Actual = band.String(), wpv.String()
					issues = append(issues, is)
				}
			}
			return issues
		},
	}
}

// ToleranceConfig bounds how far an observed value may drift from a declared
// one.
type ToleranceConfig struct {
	Tolerance decimal.Decimal `json:"tolerance"`
}

// declaredWPVChecker compares the computed kg/gal ratio against the P/G the
// source sheet declared. Skipped when the sheet declared nothing.
func declaredWPVChecker() *Checker {
	const key = "paint.declared_wpv"
	return &Checker{
		key: key, name: "Declared P/G consistency",
		kind: domain.RuleKindConsistency, sev: domain.SeverityError,
		fn: func(f *domain.Formula, config []byte) []domain.Issue {
			if !f.DeclaredWPV.IsPositive() || !f.TotalVolume().IsPositive() {
				return nil
			}
			cfg := decodeConfig(config, ToleranceConfig{Tolerance: decimal.RequireFromString("0.5")})
			wpv := f.WeightPerVolume()
			if wpv.Sub(f.DeclaredWPV).Abs().LessThanOrEqual(cfg.Tolerance) {
				return nil
			}
			is := issue(key, fmt.Sprintf("computed weight per volume %s kg/gal deviates from declared %s by more than %s", wpv, f.DeclaredWPV, cfg.Tolerance))
			is.Expected, is.Actual = f.DeclaredWPV.String(), wpv.String()
			return []domain.Issue{is}
		},
	}
}
