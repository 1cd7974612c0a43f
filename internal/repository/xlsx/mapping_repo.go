package xlsx

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"formulab/internal/domain"
	"formulab/internal/port"
)

// TypeMappings returns the type→tag mapping view of the workbook.
func (s *Store) TypeMappings() port.TypeMappingRepository {
	return &mappingRepo{s: s}
}

type mappingRepo struct {
	s *Store
}

// Upsert stores a mapping; types are normalized to uppercase.
func (r *mappingRepo) Upsert(_ context.Context, mapping *domain.TypeMapping) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.mappings[strings.ToUpper(strings.TrimSpace(mapping.Type))] = mapping.Tag
	if err := r.s.persist(); err != nil {
		return fmt.Errorf("xlsx.TypeMappings.Upsert: %w", err)
	}
	return nil
}

// All returns every mapping, keyed by uppercased type.
func (r *mappingRepo) All(_ context.Context) (map[string]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[string]string, len(r.s.mappings))
	for k, v := range r.s.mappings {
		out[k] = v
	}
	return out, nil
}

func (s *Store) writeMappings(f *excelize.File) error {
	types := make([]string, 0, len(s.mappings))
	for t := range s.mappings {
		types = append(types, t)
	}
	sort.Strings(types)

	for i, t := range types {
		if err := setRow(f, sheetTypeMappings, i+2, []interface{}{t, s.mappings[t]}); err != nil {
			return fmt.Errorf("writing type mapping row %d: %w", i, err)
		}
	}
	return nil
}

func (s *Store) loadMappings(f *excelize.File) error {
	rows, err := dataRows(f, sheetTypeMappings)
	if err != nil {
		return err
	}
	for _, row := range rows {
		t := strings.ToUpper(strings.TrimSpace(cellVal(row, 0)))
		if t == "" {
			continue
		}
		s.mappings[t] = cellVal(row, 1)
	}
	return nil
}
