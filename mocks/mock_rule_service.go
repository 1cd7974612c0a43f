package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"formulab/internal/domain"
	"formulab/internal/service"
)

// MockRuleService is a mock implementation of service.RuleService.
type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) Create(ctx context.Context, input *service.CreateRuleInput) (*domain.ValidationRule, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRule), args.Error(1)
}

func (m *MockRuleService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRule), args.Error(1)
}

func (m *MockRuleService) ListActive(ctx context.Context, brand domain.Brand, paintType string) ([]domain.ValidationRule, error) {
	args := m.Called(ctx, brand, paintType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ValidationRule), args.Error(1)
}

func (m *MockRuleService) Update(ctx context.Context, id uuid.UUID, input *service.UpdateRuleInput) (*domain.ValidationRule, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ValidationRule), args.Error(1)
}

func (m *MockRuleService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRuleService) BuiltinKeys() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
