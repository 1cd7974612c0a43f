package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"formulab/internal/domain"
)

// MockTypeMappingRepo is a mock implementation of port.TypeMappingRepository.
type MockTypeMappingRepo struct {
	mock.Mock
}

func (m *MockTypeMappingRepo) Upsert(ctx context.Context, mapping *domain.TypeMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockTypeMappingRepo) All(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}
