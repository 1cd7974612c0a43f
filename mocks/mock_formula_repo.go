package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"formulab/internal/domain"
	"formulab/internal/port"
)

// MockFormulaRepo is a mock implementation of port.FormulaRepository.
type MockFormulaRepo struct {
	mock.Mock
}

func (m *MockFormulaRepo) Save(ctx context.Context, formula *domain.Formula) error {
	args := m.Called(ctx, formula)
	return args.Error(0)
}

func (m *MockFormulaRepo) GetByKey(ctx context.Context, key string) (*domain.Formula, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Formula), args.Error(1)
}

func (m *MockFormulaRepo) List(ctx context.Context, filter port.FormulaFilter, offset, limit int) ([]domain.Formula, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Formula), args.Int(1), args.Error(2)
}

func (m *MockFormulaRepo) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockFormulaRepo) ExistsKey(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
