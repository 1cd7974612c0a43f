package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"formulab/internal/domain"
)

// MockDocumentGenerator is a mock implementation of port.DocumentGenerator.
type MockDocumentGenerator struct {
	mock.Mock
}

func (m *MockDocumentGenerator) ProductionOrder(ctx context.Context, formula *domain.Formula, order *domain.Order) ([]byte, error) {
	args := m.Called(ctx, formula, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
