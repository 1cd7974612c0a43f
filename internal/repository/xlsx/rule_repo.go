package xlsx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"formulab/internal/domain"
	"formulab/internal/port"
)

// Rules returns the validation-rule view of the workbook.
func (s *Store) Rules() port.RuleRepository {
	return &ruleRepo{s: s}
}

type ruleRepo struct {
	s *Store
}

// Create appends a validation rule row.
func (r *ruleRepo) Create(_ context.Context, rule *domain.ValidationRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.rules = append(r.s.rules, *rule)
	if err := r.s.persist(); err != nil {
		return fmt.Errorf("xlsx.Rules.Create: %w", err)
	}
	return nil
}

// GetByID returns a rule by its id.
func (r *ruleRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.ValidationRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.rules {
		if r.s.rules[i].ID == id {
			rule := r.s.rules[i]
			return &rule, nil
		}
	}
	return nil, fmt.Errorf("xlsx.Rules.GetByID %s: %w", id, domain.ErrNotFound)
}

// ListActive returns the active rules scoped to a brand and paint type.
// Rules with an empty type apply to every type of the brand.
func (r *ruleRepo) ListActive(_ context.Context, brand domain.Brand, paintType string) ([]domain.ValidationRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.ValidationRule
	for i := range r.s.rules {
		rule := &r.s.rules[i]
		if !rule.IsActive || rule.Brand != brand {
			continue
		}
		if rule.Type != "" && rule.Type != paintType {
			continue
		}
		out = append(out, *rule)
	}
	return out, nil
}

// ListBuiltinKeys returns the builtin keys already present for a brand/type.
func (r *ruleRepo) ListBuiltinKeys(_ context.Context, brand domain.Brand, paintType string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var keys []string
	for i := range r.s.rules {
		rule := &r.s.rules[i]
		if rule.IsBuiltin && rule.Brand == brand && rule.Type == paintType && rule.BuiltinKey != "" {
			keys = append(keys, rule.BuiltinKey)
		}
	}
	return keys, nil
}

// Update replaces a rule row by id.
func (r *ruleRepo) Update(_ context.Context, rule *domain.ValidationRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.rules {
		if r.s.rules[i].ID == rule.ID {
			r.s.rules[i] = *rule
			if err := r.s.persist(); err != nil {
				return fmt.Errorf("xlsx.Rules.Update: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("xlsx.Rules.Update %s: %w", rule.ID, domain.ErrNotFound)
}

// Delete removes a rule row by id.
func (r *ruleRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.rules {
		if r.s.rules[i].ID == id {
			r.s.rules = append(r.s.rules[:i], r.s.rules[i+1:]...)
			if err := r.s.persist(); err != nil {
				return fmt.Errorf("xlsx.Rules.Delete: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("xlsx.Rules.Delete %s: %w", id, domain.ErrNotFound)
}

func (s *Store) writeRules(f *excelize.File) error {
	for i := range s.rules {
		r := &s.rules[i]
		values := []interface{}{
			r.ID.String(), string(r.Brand), r.Type, r.RuleName, string(r.Kind),
			string(r.Config), string(r.Severity),
			strconv.FormatBool(r.IsBuiltin), r.BuiltinKey,
			strconv.FormatBool(r.IsActive),
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := setRow(f, sheetRules, i+2, values); err != nil {
			return fmt.Errorf("writing rule row %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) loadRules(f *excelize.File) error {
	rows, err := dataRows(f, sheetRules)
	if err != nil {
		return err
	}
	for _, row := range rows {
		id, err := uuid.Parse(cellVal(row, 0))
		if err != nil {
			continue
		}
		rule := domain.ValidationRule{
			ID:         id,
			Brand:      domain.Brand(cellVal(row, 1)),
			Type:       cellVal(row, 2),
			RuleName:   cellVal(row, 3),
			Kind:       domain.RuleKind(cellVal(row, 4)),
			Severity:   domain.IssueSeverity(cellVal(row, 6)),
			IsBuiltin:  cellVal(row, 7) == "true",
			BuiltinKey: cellVal(row, 8),
			IsActive:   cellVal(row, 9) == "true",
		}
		if cfg := cellVal(row, 5); cfg != "" {
			rule.Config = []byte(cfg)
		}
		if ts, err := time.Parse(time.RFC3339, cellVal(row, 10)); err == nil {
			rule.CreatedAt = ts
		}
		s.rules = append(s.rules, rule)
	}
	return nil
}
