package scaling

import (
	"fmt"

	"github.com/shopspring/decimal"

	"formulab/internal/domain"
)

// DegenerateStageError reports a stage whose volume cannot anchor a scaling
// factor: it has ingredients but no derivable volume.
type DegenerateStageError struct {
	Stage string
}

func (e *DegenerateStageError) Error() string {
	return fmt.Sprintf("stage %q has ingredients but zero derivable volume", e.Stage)
}

func (e *DegenerateStageError) Unwrap() error {
	return domain.ErrDegenerateStage
}

// Scale resolves the request's target volume to gallons and delegates to
// ScaleToVolume.
func Scale(formula *domain.Formula, req domain.ScalingRequest) (*domain.Formula, error) {
	unit := req.Unit
	if unit == "" {
		unit = domain.UnitGallon
	}
	if !unit.IsVolumetric() {
		return nil, fmt.Errorf("scaling: target unit %q is not volumetric: %w", unit, domain.ErrNonPositiveTarget)
	}
	return ScaleToVolume(formula, domain.ToGallons(req.TargetVolume, unit))
}

// ScaleToVolume returns a fresh formula whose total volume equals target
// gallons. Every stage scales by the same factor, so each stage's
// weight-per-volume ratio, and the formula-wide one, are exactly those of
// the input. The input is never mutated, and quantities are not rounded
// here: rounding is for presentation layers only.
func ScaleToVolume(formula *domain.Formula, target decimal.Decimal) (*domain.Formula, error) {
	if !target.IsPositive() {
		return nil, fmt.Errorf("scaling: target %s gal: %w", target, domain.ErrNonPositiveTarget)
	}
	for i := range formula.Stages {
		st := &formula.Stages[i]
		if len(st.Ingredients) > 0 && !st.TotalVolume.IsPositive() {
			return nil, &DegenerateStageError{Stage: st.Name}
		}
	}
	total := formula.TotalVolume()
	if !total.IsPositive() {
		return nil, &DegenerateStageError{Stage: ""}
	}

	factor := target.Div(total)
	out := formula.Clone()
	for i := range out.Stages {
		st := &out.Stages[i]
		for j := range st.Ingredients {
			ing := &st.Ingredients[j]
			// A percent quantity is a proportion of the batch, not an
			// amount: it holds under scaling while the derived weight and
			// volume scale with everything else.
			if ing.Unit != domain.UnitPercent {
				ing.Quantity = ing.Quantity.Mul(factor)
			}
			ing.Weight = ing.Weight.Mul(factor)
			ing.Volume = ing.Volume.Mul(factor)
		}
		if st.DeclaredVolume.IsPositive() {
			st.DeclaredVolume = st.DeclaredVolume.Mul(factor)
		}
		st.Recompute()
	}
	out.BaseVolume = target
	return out, nil
}
