package xlsx

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"formulab/internal/domain"
	"formulab/internal/port"
)

// Formulas returns the formula-catalog view of the workbook.
func (s *Store) Formulas() port.FormulaRepository {
	return &formulaRepo{s: s}
}

type formulaRepo struct {
	s *Store
}

// Save inserts or replaces a formula under its key.
func (r *formulaRepo) Save(_ context.Context, formula *domain.Formula) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.formulas[formula.Key] = formula.Clone()
	if err := r.s.persist(); err != nil {
		return fmt.Errorf("xlsx.Formulas.Save: %w", err)
	}
	return nil
}

// GetByKey returns the formula stored under key.
func (r *formulaRepo) GetByKey(_ context.Context, key string) (*domain.Formula, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	f, ok := r.s.formulas[key]
	if !ok {
		return nil, fmt.Errorf("xlsx.Formulas.GetByKey %q: %w", key, domain.ErrNotFound)
	}
	return f.Clone(), nil
}

// List returns formulas matching the filter, ordered by key.
func (r *formulaRepo) List(_ context.Context, filter port.FormulaFilter, offset, limit int) ([]domain.Formula, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	keys := make([]string, 0, len(r.s.formulas))
	for key, f := range r.s.formulas {
		if filter.Brand != "" && f.Brand != filter.Brand {
			continue
		}
		if filter.Type != "" && f.Type != filter.Type {
			continue
		}
		if filter.Color != "" && f.Color != filter.Color {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	total := len(keys)
	if offset >= total {
		return []domain.Formula{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}

	out := make([]domain.Formula, 0, end-offset)
	for _, key := range keys[offset:end] {
		out = append(out, *r.s.formulas[key].Clone())
	}
	return out, total, nil
}

// Delete removes a formula by key.
func (r *formulaRepo) Delete(_ context.Context, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.formulas[key]; !ok {
		return fmt.Errorf("xlsx.Formulas.Delete %q: %w", key, domain.ErrNotFound)
	}
	delete(r.s.formulas, key)
	if err := r.s.persist(); err != nil {
		return fmt.Errorf("xlsx.Formulas.Delete: %w", err)
	}
	return nil
}

// ExistsKey reports whether a formula is stored under key.
func (r *formulaRepo) ExistsKey(_ context.Context, key string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.formulas[key]
	return ok, nil
}

func (s *Store) writeFormulas(f *excelize.File) error {
	keys := make([]string, 0, len(s.formulas))
	for key := range s.formulas {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	row := 2
	ingRow := 2
	for _, key := range keys {
		formula := s.formulas[key]
		md := ""
		if len(formula.Metadata) > 0 {
			raw, err := json.Marshal(formula.Metadata)
			if err != nil {
				return fmt.Errorf("marshaling metadata of %s: %w", key, err)
			}
			md = string(raw)
		}
		values := []interface{}{
			formula.Key, formula.ID.String(), string(formula.Brand), formula.Type,
			formula.Color, formula.Presentation, formula.Version,
			formula.BaseVolume.String(), formula.DeclaredWPV.String(), md,
			formula.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := setRow(f, sheetFormulas, row, values); err != nil {
			return fmt.Errorf("writing formula %s: %w", key, err)
		}
		row++

		for i := range formula.Stages {
			st := &formula.Stages[i]
			for j := range st.Ingredients {
				ing := &st.Ingredients[j]
				values := []interface{}{
					formula.Key, st.Index, st.Name, st.DeclaredVolume.String(),
					ing.Code, ing.Name, ing.Quantity.String(), string(ing.Unit),
					ing.Density.String(), strconv.FormatBool(ing.DensityInferred),
				}
				if err := setRow(f, sheetIngredients, ingRow, values); err != nil {
					return fmt.Errorf("writing ingredient row of %s: %w", key, err)
				}
				ingRow++
			}
		}
	}
	return nil
}

func (s *Store) loadFormulas(f *excelize.File) error {
	rows, err := dataRows(f, sheetFormulas)
	if err != nil {
		return err
	}
	for _, row := range rows {
		key := cellVal(row, 0)
		if key == "" {
			continue
		}
		id, err := uuid.Parse(cellVal(row, 1))
		if err != nil {
			id = uuid.New()
		}
		formula := &domain.Formula{
			ID:           id,
			Key:          key,
			Brand:        domain.Brand(cellVal(row, 2)),
			Type:         cellVal(row, 3),
			Color:        cellVal(row, 4),
			Presentation: cellVal(row, 5),
			Version:      cellVal(row, 6),
			BaseVolume:   parseDec(cellVal(row, 7)),
			DeclaredWPV:  parseDec(cellVal(row, 8)),
		}
		if md := cellVal(row, 9); md != "" {
			meta := map[string]string{}
			if err := json.Unmarshal([]byte(md), &meta); err == nil {
				formula.Metadata = meta
			}
		}
		if ts, err := time.Parse(time.RFC3339, cellVal(row, 10)); err == nil {
			formula.CreatedAt = ts
		}
		s.formulas[key] = formula
	}

	ingRows, err := dataRows(f, sheetIngredients)
	if err != nil {
		return err
	}
	for _, row := range ingRows {
		key := cellVal(row, 0)
		formula, ok := s.formulas[key]
		if !ok {
			continue
		}
		idx, _ := strconv.Atoi(cellVal(row, 1))
		for len(formula.Stages) <= idx {
			formula.Stages = append(formula.Stages, domain.Stage{Index: len(formula.Stages)})
		}
		st := &formula.Stages[idx]
		st.Name = cellVal(row, 2)
		st.DeclaredVolume = parseDec(cellVal(row, 3))

		ing := domain.Ingredient{
			Code:            cellVal(row, 4),
			Name:            cellVal(row, 5),
			Quantity:        parseDec(cellVal(row, 6)),
			Unit:            domain.Unit(cellVal(row, 7)),
			Density:         parseDec(cellVal(row, 8)),
			DensityInferred: cellVal(row, 9) == "true",
		}
		ing.Weight = domain.WeightKg(ing.Quantity, ing.Unit, ing.Density)
		ing.Volume = domain.VolumeGal(ing.Quantity, ing.Unit, ing.Density)
		st.Ingredients = append(st.Ingredients, ing)
	}
	for _, formula := range s.formulas {
		for i := range formula.Stages {
			formula.Stages[i].Recompute()
		}
	}
	return nil
}

func parseDec(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
