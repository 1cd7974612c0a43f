package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"formulab/internal/domain"
	"formulab/internal/pipeline"
	"formulab/internal/port"
	"formulab/internal/service"
)

// MockFormulaService is a mock implementation of service.FormulaService.
type MockFormulaService struct {
	mock.Mock
}

func (m *MockFormulaService) Import(ctx context.Context, input *service.ImportInput) (*pipeline.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func (m *MockFormulaService) Preview(ctx context.Context, input *service.ImportInput) (*pipeline.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func (m *MockFormulaService) GetByKey(ctx context.Context, key string) (*domain.Formula, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Formula), args.Error(1)
}

func (m *MockFormulaService) List(ctx context.Context, filter port.FormulaFilter, offset, limit int) ([]domain.Formula, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Formula), args.Int(1), args.Error(2)
}

func (m *MockFormulaService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockFormulaService) Scale(ctx context.Context, key string, req domain.ScalingRequest) (*pipeline.Result, error) {
	args := m.Called(ctx, key, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func (m *MockFormulaService) Validate(ctx context.Context, key string) ([]domain.Issue, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Issue), args.Error(1)
}
