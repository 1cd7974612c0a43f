package validator

import (
	"context"

	"formulab/internal/domain"
)

// Validator is the interface for a single built-in validation rule. Config
// is the persisted rule row's JSON config; implementations fall back to
// their compiled-in defaults when it is empty or malformed.
type Validator interface {
	Validate(ctx context.Context, formula *domain.Formula, config []byte) []domain.Issue
	RuleKey() string
	RuleName() string
	RuleKind() domain.RuleKind
	Severity() domain.IssueSeverity
}
