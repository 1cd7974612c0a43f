package validator

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"formulab/internal/domain"
	"formulab/internal/port"
)

// Engine runs every active rule for a formula's brand and paint type. It
// reports, it never decides: the full issue set comes back regardless of how
// early or how badly a rule fails, and the formula is never mutated.
type Engine struct {
	registry *Registry
	ruleRepo port.RuleRepository
}

// NewEngine creates a validation engine.
func NewEngine(registry *Registry, ruleRepo port.RuleRepository) *Engine {
	return &Engine{registry: registry, ruleRepo: ruleRepo}
}

// Validate seeds any missing builtin rule rows for the formula's brand/type,
// loads the active set, and runs every rule.
func (e *Engine) Validate(ctx context.Context, formula *domain.Formula) ([]domain.Issue, error) {
	if err := e.EnsureBuiltinRules(ctx, formula.Brand, formula.Type); err != nil {
		return nil, fmt.Errorf("ensuring builtin rules: %w", err)
	}

	rules, err := e.ruleRepo.ListActive(ctx, formula.Brand, formula.Type)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	return e.Run(ctx, formula, rules), nil
}

// Run executes the given rule rows against the formula in checker
// declaration order, regardless of how the backing store returned them.
// Custom (non-builtin) rows are skipped; the persisted row's severity
// overrides the checker's default so operators can soften or harden
// individual rules per brand/type.
func (e *Engine) Run(ctx context.Context, formula *domain.Formula, rules []domain.ValidationRule) []domain.Issue {
	pos := e.registry.position()
	ordered := append([]domain.ValidationRule(nil), rules...)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, iOK := pos[ordered[i].BuiltinKey]
		pj, jOK := pos[ordered[j].BuiltinKey]
		if iOK != jOK {
			return iOK
		}
		return pi < pj
	})

	issues := make([]domain.Issue, 0)
	for idx := range ordered {
		rule := &ordered[idx]
		if !rule.IsBuiltin || rule.BuiltinKey == "" {
			continue
		}
		v := e.registry.Get(rule.BuiltinKey)
		if v == nil {
			log.Printf("validator.Engine: no validator registered for builtin key %q", rule.BuiltinKey)
			continue
		}
		found := v.Validate(ctx, formula, rule.Config)
		for i := range found {
			found[i].Severity = rule.Severity
			if found[i].Code == "" {
				found[i].Code = rule.BuiltinKey
			}
		}
		issues = append(issues, found...)
	}
	return issues
}

// EnsureBuiltinRules creates rule rows for registered validators that have
// no row yet for this brand/type, so new builtins appear automatically with
// their default config and severity.
func (e *Engine) EnsureBuiltinRules(ctx context.Context, brand domain.Brand, paintType string) error {
	existing, err := e.ruleRepo.ListBuiltinKeys(ctx, brand, paintType)
	if err != nil {
		return fmt.Errorf("listing builtin keys: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, k := range existing {
		have[k] = true
	}

	now := time.Now().UTC()
	for _, v := range e.registry.All() {
		if have[v.RuleKey()] {
			continue
		}
		rule := &domain.ValidationRule{
			ID:         uuid.New(),
			Brand:      brand,
			Type:       paintType,
			RuleName:   v.RuleName(),
			Kind:       v.RuleKind(),
			Severity:   v.Severity(),
			IsBuiltin:  true,
			BuiltinKey: v.RuleKey(),
			IsActive:   true,
			CreatedAt:  now,
		}
		if err := e.ruleRepo.Create(ctx, rule); err != nil {
			return fmt.Errorf("creating builtin rule %q: %w", v.RuleKey(), err)
		}
	}
	return nil
}
