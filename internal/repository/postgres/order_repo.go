package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"formulab/internal/domain"
	"formulab/internal/port"
)

type orderRepo struct {
	db *sqlx.DB
}

// NewOrderRepo creates a PostgreSQL-backed OrderRepository.
func NewOrderRepo(db *sqlx.DB) port.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO production_orders (
			id, formula_key, target_gal, status, document_ref,
			measured_wpv, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		order.ID, order.FormulaKey, order.TargetGal, order.Status,
		order.DocumentRef, order.MeasuredWPV, order.Notes, order.CreatedBy,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("orderRepo.Create: %w", err)
	}
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.GetContext(ctx, &order, "SELECT * FROM production_orders WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("orderRepo.GetByID: %w", err)
	}
	return &order, nil
}

func (r *orderRepo) List(ctx context.Context, status domain.OrderStatus, offset, limit int) ([]domain.Order, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM production_orders WHERE ($1 = '' OR status = $1)",
		string(status))
	if err != nil {
		return nil, 0, fmt.Errorf("orderRepo.List: counting: %w", err)
	}

	if limit <= 0 {
		limit = total + 1
	}
	var orders []domain.Order
	err = r.db.SelectContext(ctx, &orders, `
		SELECT * FROM production_orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		string(status), offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("orderRepo.List: %w", err)
	}
	return orders, total, nil
}

func (r *orderRepo) Update(ctx context.Context, order *domain.Order) error {
	order.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE production_orders SET
			status = $1, document_ref = $2, measured_wpv = $3, notes = $4, updated_at = $5
		WHERE id = $6`,
		order.Status, order.DocumentRef, order.MeasuredWPV, order.Notes,
		order.UpdatedAt, order.ID)
	if err != nil {
		return fmt.Errorf("orderRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *orderRepo) CountByPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM production_orders WHERE id LIKE $1 || '%'", prefix)
	if err != nil {
		return 0, fmt.Errorf("orderRepo.CountByPrefix: %w", err)
	}
	return n, nil
}
