package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"formulab/internal/domain"
	"formulab/internal/port"
)

type formulaRepo struct {
	db *sqlx.DB
}

// NewFormulaRepo creates a PostgreSQL-backed FormulaRepository. Formulas are
// stored header-plus-rows: one formulas row, one formula_ingredients row per
// ingredient, replaced wholesale on save.
func NewFormulaRepo(db *sqlx.DB) port.FormulaRepository {
	return &formulaRepo{db: db}
}

type formulaRow struct {
	Key          string          `db:"key"`
	ID           uuid.UUID       `db:"id"`
	Brand        string          `db:"brand"`
	Type         string          `db:"type"`
	Color        string          `db:"color"`
	Presentation string          `db:"presentation"`
	Version      string          `db:"version"`
	BaseVolume   decimal.Decimal `db:"base_volume"`
	DeclaredWPV  decimal.Decimal `db:"declared_wpv"`
	Metadata     []byte          `db:"metadata"`
	CreatedAt    time.Time       `db:"created_at"`
}

type ingredientRow struct {
	FormulaKey      string          `db:"formula_key"`
	StageIndex      int             `db:"stage_index"`
	StageName       string          `db:"stage_name"`
	StageVolume     decimal.Decimal `db:"stage_declared_volume"`
	Position        int             `db:"position"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	Quantity        decimal.Decimal `db:"quantity"`
	Unit            string          `db:"unit"`
	Density         decimal.Decimal `db:"density"`
	DensityInferred bool            `db:"density_inferred"`
}

func (r *formulaRepo) Save(ctx context.Context, formula *domain.Formula) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("formulaRepo.Save: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	metadata := []byte("{}")
	if len(formula.Metadata) > 0 {
		metadata, err = json.Marshal(formula.Metadata)
		if err != nil {
			return fmt.Errorf("formulaRepo.Save: marshaling metadata: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO formulas (
			key, id, brand, type, color, presentation, version,
			base_volume, declared_wpv, metadata, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (key) DO UPDATE SET
			id = EXCLUDED.id, brand = EXCLUDED.brand, type = EXCLUDED.type,
			color = EXCLUDED.color, presentation = EXCLUDED.presentation,
			version = EXCLUDED.version, base_volume = EXCLUDED.base_volume,
			declared_wpv = EXCLUDED.declared_wpv, metadata = EXCLUDED.metadata`,
		formula.Key, formula.ID, formula.Brand, formula.Type, formula.Color,
		formula.Presentation, formula.Version, formula.BaseVolume,
		formula.DeclaredWPV, metadata, formula.CreatedAt)
	if err != nil {
		return fmt.Errorf("formulaRepo.Save: upserting formula: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM formula_ingredients WHERE formula_key = $1", formula.Key); err != nil {
		return fmt.Errorf("formulaRepo.Save: clearing ingredients: %w", err)
	}

	for i := range formula.Stages {
		st := &formula.Stages[i]
		for j := range st.Ingredients {
			ing := &st.Ingredients[j]
			_, err := tx.ExecContext(ctx, `
				INSERT INTO formula_ingredients (
					formula_key, stage_index, stage_name, stage_declared_volume,
					position, code, name, quantity, unit, density, density_inferred
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				formula.Key, st.Index, st.Name, st.DeclaredVolume,
				j, ing.Code, ing.Name, ing.Quantity, ing.Unit,
				ing.Density, ing.DensityInferred)
			if err != nil {
				return fmt.Errorf("formulaRepo.Save: inserting ingredient: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("formulaRepo.Save: commit: %w", err)
	}
	return nil
}

func (r *formulaRepo) GetByKey(ctx context.Context, key string) (*domain.Formula, error) {
	var row formulaRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM formulas WHERE key = $1", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("formulaRepo.GetByKey: %w", err)
	}

	var ingRows []ingredientRow
	err = r.db.SelectContext(ctx, &ingRows, `
		SELECT formula_key, stage_index, stage_name, stage_declared_volume,
		       position, code, name, quantity, unit, density, density_inferred
		FROM formula_ingredients
		WHERE formula_key = $1
		ORDER BY stage_index, position`, key)
	if err != nil {
		return nil, fmt.Errorf("formulaRepo.GetByKey: loading ingredients: %w", err)
	}
	return assembleFormula(&row, ingRows), nil
}

func (r *formulaRepo) List(ctx context.Context, filter port.FormulaFilter, offset, limit int) ([]domain.Formula, int, error) {
	where := "WHERE ($1 = '' OR brand = $1) AND ($2 = '' OR type = $2) AND ($3 = '' OR color = $3)"

	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM formulas "+where,
		string(filter.Brand), filter.Type, filter.Color)
	if err != nil {
		return nil, 0, fmt.Errorf("formulaRepo.List: counting: %w", err)
	}

	if limit <= 0 {
		limit = total
	}
	var rows []formulaRow
	err = r.db.SelectContext(ctx, &rows,
		"SELECT * FROM formulas "+where+" ORDER BY key OFFSET $4 LIMIT $5",
		string(filter.Brand), filter.Type, filter.Color, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("formulaRepo.List: %w", err)
	}

	out := make([]domain.Formula, 0, len(rows))
	for i := range rows {
		var ingRows []ingredientRow
		err = r.db.SelectContext(ctx, &ingRows, `
			SELECT formula_key, stage_index, stage_name, stage_declared_volume,
			       position, code, name, quantity, unit, density, density_inferred
			FROM formula_ingredients
			WHERE formula_key = $1
			ORDER BY stage_index, position`, rows[i].Key)
		if err != nil {
			return nil, 0, fmt.Errorf("formulaRepo.List: loading ingredients of %s: %w", rows[i].Key, err)
		}
		out = append(out, *assembleFormula(&rows[i], ingRows))
	}
	return out, total, nil
}

func (r *formulaRepo) Delete(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM formulas WHERE key = $1", key)
	if err != nil {
		return fmt.Errorf("formulaRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *formulaRepo) ExistsKey(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		"SELECT EXISTS (SELECT 1 FROM formulas WHERE key = $1)", key)
	if err != nil {
		return false, fmt.Errorf("formulaRepo.ExistsKey: %w", err)
	}
	return exists, nil
}

func assembleFormula(row *formulaRow, ingRows []ingredientRow) *domain.Formula {
	formula := &domain.Formula{
		ID:           row.ID,
		Key:          row.Key,
		Brand:        domain.Brand(row.Brand),
		Type:         row.Type,
		Color:        row.Color,
		Presentation: row.Presentation,
		Version:      row.Version,
		BaseVolume:   row.BaseVolume,
		DeclaredWPV:  row.DeclaredWPV,
		CreatedAt:    row.CreatedAt,
	}
	if len(row.Metadata) > 0 {
		meta := map[string]string{}
		if err := json.Unmarshal(row.Metadata, &meta); err == nil && len(meta) > 0 {
			formula.Metadata = meta
		}
	}

	for _, ir := range ingRows {
		for len(formula.Stages) <= ir.StageIndex {
			formula.Stages = append(formula.Stages, domain.Stage{Index: len(formula.Stages)})
		}
		st := &formula.Stages[ir.StageIndex]
		st.Name = ir.StageName
		st.DeclaredVolume = ir.StageVolume

		ing := domain.Ingredient{
			Code:            ir.Code,
			Name:            ir.Name,
			Quantity:        ir.Quantity,
			Unit:            domain.Unit(ir.Unit),
			Density:         ir.Density,
			DensityInferred: ir.DensityInferred,
		}
		ing.Weight = domain.WeightKg(ing.Quantity, ing.Unit, ing.Density)
		ing.Volume = domain.VolumeGal(ing.Quantity, ing.Unit, ing.Density)
		st.Ingredients = append(st.Ingredients, ing)
	}
	for i := range formula.Stages {
		formula.Stages[i].Recompute()
	}
	return formula
}
