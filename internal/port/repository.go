package port

import (
	"context"

	"github.com/google/uuid"

	"formulab/internal/domain"
)

// FormulaFilter narrows catalog listings. Zero fields match everything.
type FormulaFilter struct {
	Brand domain.Brand
	Type  string
	Color string
}

// FormulaRepository defines the contract for formula catalog persistence.
type FormulaRepository interface {
	Save(ctx context.Context, formula *domain.Formula) error
	GetByKey(ctx context.Context, key string) (*domain.Formula, error)
	List(ctx context.Context, filter FormulaFilter, offset, limit int) ([]domain.Formula, int, error)
	Delete(ctx context.Context, key string) error
	ExistsKey(ctx context.Context, key string) (bool, error)
}

// RuleRepository defines the contract for validation rule persistence.
type RuleRepository interface {
	Create(ctx context.Context, rule *domain.ValidationRule) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ValidationRule, error)
	ListActive(ctx context.Context, brand domain.Brand, paintType string) ([]domain.ValidationRule, error)
	ListBuiltinKeys(ctx context.Context, brand domain.Brand, paintType string) ([]string, error)
	Update(ctx context.Context, rule *domain.ValidationRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OrderRepository defines the contract for production order persistence.
// CountByPrefix supports day-scoped sequential order IDs.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error)
	Update(ctx context.Context, order *domain.Order) error
	CountByPrefix(ctx context.Context, prefix string) (int, error)
}

// TypeMappingRepository defines the contract for paint type→tag mappings
// used when deriving catalog keys.
type TypeMappingRepository interface {
	Upsert(ctx context.Context, mapping *domain.TypeMapping) error
	All(ctx context.Context) (map[string]string, error)
}
