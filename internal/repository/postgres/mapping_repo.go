package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"formulab/internal/domain"
	"formulab/internal/port"
)

type mappingRepo struct {
	db *sqlx.DB
}

// NewTypeMappingRepo creates a PostgreSQL-backed TypeMappingRepository.
func NewTypeMappingRepo(db *sqlx.DB) port.TypeMappingRepository {
	return &mappingRepo{db: db}
}

func (r *mappingRepo) Upsert(ctx context.Context, mapping *domain.TypeMapping) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO type_mappings (type, tag) VALUES ($1, $2)
		ON CONFLICT (type) DO UPDATE SET tag = EXCLUDED.tag`,
		strings.ToUpper(strings.TrimSpace(mapping.Type)), mapping.Tag)
	if err != nil {
		return fmt.Errorf("mappingRepo.Upsert: %w", err)
	}
	return nil
}

func (r *mappingRepo) All(ctx context.Context) (map[string]string, error) {
	var rows []domain.TypeMapping
	if err := r.db.SelectContext(ctx, &rows, "SELECT type, tag FROM type_mappings"); err != nil {
		return nil, fmt.Errorf("mappingRepo.All: %w", err)
	}
	out := make(map[string]string, len(rows))
	for i := range rows {
		out[rows[i].Type] = rows[i].Tag
	}
	return out, nil
}
