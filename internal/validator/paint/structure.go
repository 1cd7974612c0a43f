package paint

import (
	"fmt"
	"strings"

	"formulab/internal/domain"
)

// CountConfig bounds how many stages a recipe of this brand/type should
// have.
type CountConfig struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// stageCountChecker warns when the stage count falls outside the expected
// range. Too few usually means markers were lost in the paste; too many
// means noise was promoted to markers.
func stageCountChecker() *Checker {
	const key = "paint.stage_count"
	return &Checker{
		key: key, name: "Stage count range",
		kind: domain.RuleKindCountRange, sev: domain.SeverityWarning,
		fn: func(f *domain.Formula, config []byte) []domain.Issue {
			cfg := decodeConfig(config, CountConfig{Min: 1, Max: 6})
			n := len(f.Stages)
			if n >= cfg.Min && n <= cfg.Max {
				return nil
			}
			is := issue(key, fmt.Sprintf("formula has %d stages, expected between %d and %d", n, cfg.Min, cfg.Max))
			is.Expected = fmt.Sprintf("[%d, %d]", cfg.Min, cfg.Max)
			is.Actual = fmt.Sprintf("%d", n)
			return []domain.Issue{is}
		},
	}
}

// RequiredConfig names ingredients every recipe of this brand/type must
// carry. Names match as substrings of the uppercased ingredient name.
type RequiredConfig struct {
	Names []string `json:"names"`
}

func requiredIngredientsChecker() *Checker {
	const key = "paint.required_ingredients"
	return &Checker{
		key: key, name: "Required ingredients",
		kind: domain.RuleKindRequired, sev: domain.SeverityError,
		fn: func(f *domain.Formula, config []byte) []domain.Issue {
			cfg := decodeConfig(config, RequiredConfig{Names: []string{"AGUA"}})
			var issues []domain.Issue
			for _, want := range cfg.Names {
				if hasIngredient(f, want) {
					continue
				}
				is := issue(key, fmt.Sprintf("required ingredient %q is missing", want))
				is.Ingredient = want
				is.Expected = want
				issues = append(issues, is)
			}
			return issues
		},
	}
}

// AllowedConfig names every ingredient a recipe of this brand/type may
// carry. Empty means unrestricted, which is the default: most plants only
// pin the allowed list for regulated product lines.
type AllowedConfig struct {
	Names []string `json:"names"`
}

func unexpectedIngredientsChecker() *Checker {
	const key = "paint.unexpected_ingredients"
	return &Checker{
		key: key, name: "Unexpected ingredients",
		kind: domain.RuleKindConsistency, sev: domain.SeverityWarning,
		fn: func(f *domain.Formula, config []byte) []domain.Issue {
			cfg := decodeConfig(config, AllowedConfig{})
			if len(cfg.Names) == 0 {
				return nil
			}
			var issues []domain.Issue
			for i := range f.Stages {
				st := &f.Stages[i]
				for j := range st.Ingredients {
					ing := &st.Ingredients[j]
					if nameAllowed(ing.Name, cfg.Names) {
						continue
					}
					is := issue(key, fmt.Sprintf("ingredient %q is not on the allowed list for this product line", ing.Name))
					is.Stage = st.Name
					is.Ingredient = ingredientLabel(ing)
					issues = append(issues, is)
				}
			}
			return issues
		},
	}
}

func nameAllowed(name string, allowed []string) bool {
	up := strings.ToUpper(name)
	for _, a := range allowed {
		if strings.Contains(up, strings.ToUpper(a)) {
			return true
		}
	}
	return false
}

func hasIngredient(f *domain.Formula, name string) bool {
	want := strings.ToUpper(name)
	for i := range f.Stages {
		for j := range f.Stages[i].Ingredients {
			if strings.Contains(strings.ToUpper(f.Stages[i].Ingredients[j].Name), want) {
				return true
			}
		}
	}
	return false
}

// duplicateCodesChecker warns when the same material code appears on more
// than one row. Duplicated rows usually mean the same sheet region was
// pasted twice.
func duplicateCodesChecker() *Checker {
	const key = "paint.duplicate_codes"
	return &Checker{
		key: key, name: "Duplicate material codes",
		kind: domain.RuleKindConsistency, sev: domain.SeverityWarning,
		fn: func(f *domain.Formula, _ []byte) []domain.Issue {
			seen := make(map[string]string) // code → first stage name
			var issues []domain.Issue
			for i := range f.Stages {
				st := &f.Stages[i]
				for j := range st.Ingredients {
					code := st.Ingredients[j].Code
					if code == "" {
						continue
					}
					if first, dup := seen[code]; dup {
						is := issue(key, fmt.Sprintf("material %s appears in stage %q and again in stage %q", code, first, st.Name))
						is.Stage = st.Name
						is.Ingredient = code
						issues = append(issues, is)
						continue
					}
					seen[code] = st.Name
				}
			}
			return issues
		},
	}
}
