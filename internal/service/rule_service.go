package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"formulab/internal/domain"
	"formulab/internal/port"
	"formulab/internal/validator"
)

// CreateRuleInput is the DTO for adding a brand/type-scoped rule row.
type CreateRuleInput struct {
	Brand      string          `json:"brand" binding:"required"`
	Type       string          `json:"type"`
	BuiltinKey string          `json:"builtin_key" binding:"required"`
	Config     json.RawMessage `json:"config"`
	Severity   string          `json:"severity"`
	IsActive   *bool           `json:"is_active"`
}

// UpdateRuleInput is the DTO for changing an existing rule row. Nil fields
// are left untouched.
type UpdateRuleInput struct {
	Config   json.RawMessage `json:"config"`
	Severity string          `json:"severity"`
	IsActive *bool           `json:"is_active"`
}

// RuleService manages the rule rows the validation engine interprets. Rules
// are data: a row binds a registered checker to a brand/type with its own
// config and severity.
type RuleService interface {
	Create(ctx context.Context, input *CreateRuleInput) (*domain.ValidationRule, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRule, error)
	ListActive(ctx context.Context, brand domain.Brand, paintType string) ([]domain.ValidationRule, error)
	Update(ctx context.Context, id uuid.UUID, input *UpdateRuleInput) (*domain.ValidationRule, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BuiltinKeys() []string
}

type ruleService struct {
	repo     port.RuleRepository
	registry *validator.Registry
}

// NewRuleService creates a new RuleService implementation.
func NewRuleService(repo port.RuleRepository, registry *validator.Registry) RuleService {
	return &ruleService{repo: repo, registry: registry}
}

func (s *ruleService) Create(ctx context.Context, input *CreateRuleInput) (*domain.ValidationRule, error) {
	checker := s.registry.Get(input.BuiltinKey)
	if checker == nil {
		return nil, fmt.Errorf("rule.Create: no checker registered under %q: %w", input.BuiltinKey, domain.ErrNotFound)
	}

	severity := checker.Severity()
	if input.Severity != "" {
		severity = domain.IssueSeverity(input.Severity)
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	config := []byte(input.Config)
	if len(config) == 0 {
		config = []byte("{}")
	}

	rule := &domain.ValidationRule{
		ID:         uuid.New(),
		Brand:      domain.Brand(input.Brand),
		Type:       input.Type,
		RuleName:   checker.RuleName(),
		Kind:       checker.RuleKind(),
		Config:     config,
		Severity:   severity,
		IsBuiltin:  true,
		BuiltinKey: input.BuiltinKey,
		IsActive:   active,
		CreatedAt:  time.Now(),
	}
	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, fmt.Errorf("rule.Create: %w", err)
	}
	return rule, nil
}

func (s *ruleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRule, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ruleService) ListActive(ctx context.Context, brand domain.Brand, paintType string) ([]domain.ValidationRule, error) {
	return s.repo.ListActive(ctx, brand, paintType)
}

func (s *ruleService) Update(ctx context.Context, id uuid.UUID, input *UpdateRuleInput) (*domain.ValidationRule, error) {
	rule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(input.Config) > 0 {
		rule.Config = []byte(input.Config)
	}
	if input.Severity != "" {
		rule.Severity = domain.IssueSeverity(input.Severity)
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, fmt.Errorf("rule.Update: %w", err)
	}
	return rule, nil
}

func (s *ruleService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// BuiltinKeys lists the checker keys rows can bind to.
func (s *ruleService) BuiltinKeys() []string {
	all := s.registry.All()
	keys := make([]string, 0, len(all))
	for _, v := range all {
		keys = append(keys, v.RuleKey())
	}
	sort.Strings(keys)
	return keys
}
