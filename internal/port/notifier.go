package port

import (
	"context"

	"formulab/internal/domain"
)

// Notifier defines the contract for production event notifications.
type Notifier interface {
	NotifyOrderCreated(ctx context.Context, order *domain.Order) error
	NotifyOrderProduced(ctx context.Context, order *domain.Order) error
}
