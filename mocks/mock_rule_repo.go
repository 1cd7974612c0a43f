package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"formulab/internal/domain"
)

// MockRuleRepo is a mock implementation of port.RuleRepository.
type MockRuleRepo struct {
	mock.Mock
}

func (m *MockRuleRepo) Create(ctx context.Context, rule *domain.ValidationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRule), args.Error(1)
}

func (m *MockRuleRepo) ListActive(ctx context.Context, brand domain.Brand, paintType string) ([]domain.ValidationRule, error) {
	args := m.Called(ctx, brand, paintType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidationRule), args.Error(1)
}

func (m *MockRuleRepo) ListBuiltinKeys(ctx context.Context, brand domain.Brand, paintType string) ([]string, error) {
	args := m.Called(ctx, brand, paintType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRuleRepo) Update(ctx context.Context, rule *domain.ValidationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockRuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
