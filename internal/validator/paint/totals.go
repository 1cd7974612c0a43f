package paint

import (
	"fmt"

	"github.com/shopspring/decimal"

	"formulab/internal/domain"
)

// batchVolumeChecker compares the density-derived total volume against the
// gallons the master batch is declared to produce. Skipped when the sheet
// declared no batch size.
func batchVolumeChecker() *Checker {
	const key = "paint.batch_volume"
	return &Checker{
		key: key, name: "Batch volume consistency",
		kind: domain.RuleKindSumCheck, sev: domain.SeverityWarning,
		fn: func(f *domain.Formula, config []byte) []domain.Issue {
			if !f.BaseVolume.IsPositive() {
				return nil
			}
			cfg := decodeConfig(config, ToleranceConfig{Tolerance: decimal.RequireFromString("5.0")})
			total := f.TotalVolume()
			if !total.IsPositive() {
				is := issue(key, fmt.Sprintf("batch declares %s gal but no stage volume could be derived", f.BaseVolume))
				is.Expected = f.BaseVolume.String()
				return []domain.Issue{is}
			}
			if total.Sub(f.BaseVolume).Abs().LessThanOrEqual(cfg.Tolerance) {
				return nil
			}
			is := issue(key, fmt.Sprintf("derived volume %s gal deviates from declared batch size %s gal by more than %s", total, f.BaseVolume, cfg.Tolerance))
			is.Expected, is.Actual = f.BaseVolume.String(), total.String()
			return []domain.Issue{is}
		},
	}
}

// quantitySumChecker applies to percent-basis sheets, where quantities are
// parts per hundred: their sum should land on 100. Skipped entirely when no
// row carries a percent unit, so mass-basis recipes never trip it.
func quantitySumChecker() *Checker {
	const key = "paint.quantity_sum"
	return &Checker{
		key: key, name: "Quantity sum",
		kind: domain.RuleKindSumCheck, sev: domain.SeverityWarning,
		fn: func(f *domain.Formula, config []byte) []domain.Issue {
			cfg := decodeConfig(config, ToleranceConfig{Tolerance: decimal.RequireFromString("2.0")})
			percentBasis := false
			sum := decimal.Zero
			for i := range f.Stages {
				for j := range f.Stages[i].Ingredients {
					ing := &f.Stages[i].Ingredients[j]
					if ing.Unit == domain.UnitPercent {
						percentBasis = true
					}
					sum = sum.Add(ing.Quantity)
				}
			}
			if !percentBasis {
				return nil
			}
			hundred := decimal.NewFromInt(100)
			if sum.Sub(hundred).Abs().LessThanOrEqual(cfg.Tolerance) {
				return nil
			}
			is := issue(key, fmt.Sprintf("quantities sum to %s, expected 100 within %s", sum, cfg.Tolerance))
			is.Expected, is.Actual = "100", sum.String()
			return []domain.Issue{is}
		},
	}
}

// densityResolutionChecker warns about rows whose density had to be inferred
// or is still unknown; their derived volumes are estimates at best.
func densityResolutionChecker() *Checker {
	const key = "paint.density_resolution"
	return &Checker{
		key: key, name: "Density resolution",
		kind: domain.RuleKindConsistency, sev: domain.SeverityWarning,
		fn: func(f *domain.Formula, _ []byte) []domain.Issue {
			var issues []domain.Issue
			for i := range f.Stages {
				st := &f.Stages[i]
				for j := range st.Ingredients {
					ing := &st.Ingredients[j]
					switch {
					case ing.Unit.IsVolumetric() && ing.Density.IsZero():
						is := issue(key, fmt.Sprintf("%s: volumetric quantity with unknown density; weight cannot be derived", ingredientLabel(ing)))
						is.Stage, is.Ingredient = st.Name, ingredientLabel(ing)
						issues = append(issues, is)
					case !ing.Unit.IsVolumetric() && ing.Density.IsZero():
						is := issue(key, fmt.Sprintf("%s: unknown density; volume cannot be derived", ingredientLabel(ing)))
						is.Stage, is.Ingredient = st.Name, ingredientLabel(ing)
						issues = append(issues, is)
					case ing.DensityInferred:
						is := issue(key, fmt.Sprintf("%s: density %s kg/gal inferred from row totals", ingredientLabel(ing), ing.Density))
						is.Stage, is.Ingredient = st.Name, ingredientLabel(ing)
						is.Actual = ing.Density.String()
						issues = append(issues, is)
					}
				}
			}
			return issues
		},
	}
}

func ingredientLabel(ing *domain.Ingredient) string {
	if ing.Code != "" {
		return ing.Code
	}
	return ing.Name
}
