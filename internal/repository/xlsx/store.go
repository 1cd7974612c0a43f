// Package xlsx persists the formula catalog in a single Excel workbook.
// The plant already lives in spreadsheets; keeping the catalog as one means
// it can be inspected, backed up and hand-edited with the same tools as the
// master sheets. Every mutation rewrites the affected sheet and saves the
// file, so the workbook on disk is always consistent.
package xlsx

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"formulab/internal/domain"
)

const (
	sheetFormulas     = "Formulas"
	sheetIngredients  = "Ingredients"
	sheetRules        = "Rules"
	sheetOrders       = "Orders"
	sheetTypeMappings = "TypeMappings"
)

var sheetHeaders = map[string][]string{
	sheetFormulas: {"key", "id", "brand", "type", "color", "presentation", "version",
		"base_volume", "declared_wpv", "metadata", "created_at"},
	sheetIngredients: {"formula_key", "stage_index", "stage_name", "stage_declared_volume",
		"code", "name", "quantity", "unit", "density", "density_inferred"},
	sheetRules: {"id", "brand", "type", "rule_name", "kind", "config", "severity",
		"is_builtin", "builtin_key", "is_active", "created_at"},
	sheetOrders: {"id", "formula_key", "target_gal", "status", "document_ref",
		"measured_wpv", "notes", "created_by", "created_at", "updated_at"},
	sheetTypeMappings: {"type", "tag"},
}

// Store is a workbook-backed catalog. It satisfies the formula, rule, order
// and type-mapping repository contracts; all five sheets live in one file.
// State is cached in memory and flushed to disk on every mutation.
type Store struct {
	mu   sync.Mutex
	path string

	formulas map[string]*domain.Formula
	rules    []domain.ValidationRule
	orders   []domain.Order
	mappings map[string]string
}

// Open loads the workbook at path, creating a fresh one with empty sheets
// when the file does not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{
		path:     path,
		formulas: make(map[string]*domain.Formula),
		mappings: make(map[string]string),
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := s.persist(); err != nil {
			return nil, fmt.Errorf("xlsx.Open: initializing %s: %w", path, err)
		}
		return s, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("xlsx.Open: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := s.loadFormulas(f); err != nil {
		return nil, fmt.Errorf("xlsx.Open: loading formulas: %w", err)
	}
	if err := s.loadRules(f); err != nil {
		return nil, fmt.Errorf("xlsx.Open: loading rules: %w", err)
	}
	if err := s.loadOrders(f); err != nil {
		return nil, fmt.Errorf("xlsx.Open: loading orders: %w", err)
	}
	if err := s.loadMappings(f); err != nil {
		return nil, fmt.Errorf("xlsx.Open: loading type mappings: %w", err)
	}
	return s, nil
}

// persist rewrites the whole workbook from the in-memory state. Callers must
// hold s.mu.
func (s *Store) persist() error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for _, sheet := range []string{sheetFormulas, sheetIngredients, sheetRules, sheetOrders, sheetTypeMappings} {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		header := sheetHeaders[sheet]
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("writing header of %s: %w", sheet, err)
		}
	}
	// Drop excelize's default sheet.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("dropping default sheet: %w", err)
	}

	if err := s.writeFormulas(f); err != nil {
		return err
	}
	if err := s.writeRules(f); err != nil {
		return err
	}
	if err := s.writeOrders(f); err != nil {
		return err
	}
	if err := s.writeMappings(f); err != nil {
		return err
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("saving %s: %w", s.path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// dataRows returns a sheet's rows minus the header, tolerating a missing
// sheet (a hand-trimmed workbook is still usable).
func dataRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		var serr excelize.ErrSheetNotExist
		if errors.As(err, &serr) {
			return nil, nil
		}
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
