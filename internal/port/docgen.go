package port

import (
	"context"

	"formulab/internal/domain"
)

// DocumentGenerator renders a scaled formula into a production document the
// plant floor can work from.
type DocumentGenerator interface {
	ProductionOrder(ctx context.Context, formula *domain.Formula, order *domain.Order) ([]byte, error)
}
