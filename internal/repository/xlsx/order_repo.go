package xlsx

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"formulab/internal/domain"
	"formulab/internal/port"
)

// Orders returns the production-order view of the workbook.
func (s *Store) Orders() port.OrderRepository {
	return &orderRepo{s: s}
}

type orderRepo struct {
	s *Store
}

// Create appends an order row.
func (r *orderRepo) Create(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.orders {
		if r.s.orders[i].ID == order.ID {
			return fmt.Errorf("xlsx.Orders.Create: order %s already exists", order.ID)
		}
	}
	r.s.orders = append(r.s.orders, *order)
	if err := r.s.persist(); err != nil {
		return fmt.Errorf("xlsx.Orders.Create: %w", err)
	}
	return nil
}

// GetByID returns an order by id.
func (r *orderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.orders {
		if r.s.orders[i].ID == id {
			order := r.s.orders[i]
			return &order, nil
		}
	}
	return nil, fmt.Errorf("xlsx.Orders.GetByID %s: %w", id, domain.ErrNotFound)
}

// List returns orders newest first, optionally filtered by status.
func (r *orderRepo) List(_ context.Context, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []domain.Order
	for i := range r.s.orders {
		if status != "" && r.s.orders[i].Status != status {
			continue
		}
		matched = append(matched, r.s.orders[i])
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	if offset >= total {
		return []domain.Order{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Update replaces an order row by id.
func (r *orderRepo) Update(_ context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range r.s.orders {
		if r.s.orders[i].ID == order.ID {
			r.s.orders[i] = *order
			if err := r.s.persist(); err != nil {
				return fmt.Errorf("xlsx.Orders.Update: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("xlsx.Orders.Update %s: %w", order.ID, domain.ErrNotFound)
}

// CountByPrefix counts orders whose id starts with prefix, for day-scoped
// sequence numbers.
func (r *orderRepo) CountByPrefix(_ context.Context, prefix string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for i := range r.s.orders {
		if strings.HasPrefix(r.s.orders[i].ID, prefix) {
			n++
		}
	}
	return n, nil
}

func (s *Store) writeOrders(f *excelize.File) error {
	for i := range s.orders {
		o := &s.orders[i]
		values := []interface{}{
			o.ID, o.FormulaKey, o.TargetGal.String(), string(o.Status),
			o.DocumentRef, o.MeasuredWPV.String(), o.Notes, o.CreatedBy,
			o.CreatedAt.UTC().Format(time.RFC3339),
			o.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := setRow(f, sheetOrders, i+2, values); err != nil {
			return fmt.Errorf("writing order row %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) loadOrders(f *excelize.File) error {
	rows, err := dataRows(f, sheetOrders)
	if err != nil {
		return err
	}
	for _, row := range rows {
		id := cellVal(row, 0)
		if id == "" {
			continue
		}
		order := domain.Order{
			ID:          id,
			FormulaKey:  cellVal(row, 1),
			TargetGal:   parseDec(cellVal(row, 2)),
			Status:      domain.OrderStatus(cellVal(row, 3)),
			DocumentRef: cellVal(row, 4),
			MeasuredWPV: parseDec(cellVal(row, 5)),
			Notes:       cellVal(row, 6),
			CreatedBy:   cellVal(row, 7),
		}
		if ts, err := time.Parse(time.RFC3339, cellVal(row, 8)); err == nil {
			order.CreatedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339, cellVal(row, 9)); err == nil {
			order.UpdatedAt = ts
		}
		s.orders = append(s.orders, order)
	}
	return nil
}
