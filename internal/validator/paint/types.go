package paint

import (
	"context"
	"encoding/json"

	"formulab/internal/domain"
)

// Checker is a single builtin rule: metadata for the registry plus the check
// function. The severity here is the default used when seeding the rule row;
// the engine stamps the persisted row's severity onto emitted issues.
type Checker struct {
	key  string
	name string
	kind domain.RuleKind
	sev  domain.IssueSeverity
	fn   func(formula *domain.Formula, config []byte) []domain.Issue
}

func (c *Checker) Validate(_ context.Context, formula *domain.Formula, config []byte) []domain.Issue {
	return c.fn(formula, config)
}
func (c *Checker) RuleKey() string                { return c.key }
func (c *Checker) RuleName() string               { return c.name }
func (c *Checker) RuleKind() domain.RuleKind      { return c.kind }
func (c *Checker) Severity() domain.IssueSeverity { return c.sev }

// decodeConfig overlays a rule row's JSON config onto the checker defaults.
// A malformed config falls back to the defaults rather than silencing the
// rule.
func decodeConfig[T any](config []byte, defaults T) T {
	if len(config) == 0 {
		return defaults
	}
	out := defaults
	if err := json.Unmarshal(config, &out); err != nil {
		return defaults
	}
	return out
}

func issue(code, message string) domain.Issue {
	return domain.Issue{Code: code, Message: message}
}
