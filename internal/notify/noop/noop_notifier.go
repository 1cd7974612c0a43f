package noop

import (
	"context"
	"log"

	"formulab/internal/domain"
	"formulab/internal/port"
)

type noopNotifier struct{}

// NewNoopNotifier creates a Notifier that logs production events to stdout.
func NewNoopNotifier() port.Notifier {
	return &noopNotifier{}
}

func (n *noopNotifier) NotifyOrderCreated(_ context.Context, order *domain.Order) error {
	log.Printf("[NOOP NOTIFY] Order %s created: formula %s, %s gal", order.ID, order.FormulaKey, order.TargetGal)
	return nil
}

func (n *noopNotifier) NotifyOrderProduced(_ context.Context, order *domain.Order) error {
	log.Printf("[NOOP NOTIFY] Order %s produced: measured P/G %s", order.ID, order.MeasuredWPV)
	return nil
}
