// Package docgen renders production orders as Excel workbooks the plant
// floor prints and works from. One sheet per order: header block, then a
// table per mixing stage with sign-off columns.
package docgen

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"formulab/internal/domain"
	"formulab/internal/port"
	"formulab/internal/scaling"
)

const orderSheet = "Orden"

var stageColumns = []string{"Codigo", "Materia Prima", "Cantidad", "Unidad", "Peso (kg)", "Volumen (gal)", "Agregado"}

type xlsxGenerator struct {
	plantName string
}

// NewXLSXGenerator creates a DocumentGenerator producing .xlsx workbooks.
func NewXLSXGenerator(plantName string) port.DocumentGenerator {
	return &xlsxGenerator{plantName: plantName}
}

func (g *xlsxGenerator) ProductionOrder(_ context.Context, formula *domain.Formula, order *domain.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", orderSheet); err != nil {
		return nil, fmt.Errorf("docgen: rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("docgen: header style: %w", err)
	}

	row := 1
	setRow := func(r int, style int, values ...interface{}) error {
		for col, v := range values {
			cell, cerr := excelize.CoordinatesToCellName(col+1, r)
			if cerr != nil {
				return cerr
			}
			if err := f.SetCellValue(orderSheet, cell, v); err != nil {
				return err
			}
			if style != 0 {
				if err := f.SetCellStyle(orderSheet, cell, cell, style); err != nil {
					return err
				}
			}
		}
		return nil
	}

	header := [][]interface{}{
		{g.plantName},
		{"ORDEN DE PRODUCCION", order.ID},
		{"Formula", formula.Key},
		{"Producto", fmt.Sprintf("%s %s", formula.Type, formula.Color)},
		{"Marca", string(formula.Brand)},
		{"Galones a producir", scaling.RoundForDisplay(order.TargetGal, domain.UnitGallon).String()},
		{"P/G objetivo", scaling.RoundRatio(formula.WeightPerVolume()).String()},
		{"Fecha", order.CreatedAt.Format("2006-01-02")},
		{"Emitida por", order.CreatedBy},
	}
	for _, h := range header {
		style := 0
		if row <= 2 {
			style = headerStyle
		}
		if err := setRow(row, style, h...); err != nil {
			return nil, fmt.Errorf("docgen: write header row %d: %w", row, err)
		}
		row++
	}
	if order.Notes != "" {
		if err := setRow(row, 0, "Notas", order.Notes); err != nil {
			return nil, fmt.Errorf("docgen: write notes: %w", err)
		}
		row++
	}
	row++ // blank separator

	for i := range formula.Stages {
		st := &formula.Stages[i]
		title := fmt.Sprintf("ETAPA %d: %s", st.Index+1, st.Name)
		if err := setRow(row, headerStyle, title); err != nil {
			return nil, fmt.Errorf("docgen: write stage title: %w", err)
		}
		row++
		if err := setRow(row, headerStyle, toAny(stageColumns)...); err != nil {
			return nil, fmt.Errorf("docgen: write stage columns: %w", err)
		}
		row++
		for j := range st.Ingredients {
			ing := &st.Ingredients[j]
			vals := []interface{}{
				ing.Code,
				ing.Name,
				scaling.RoundForDisplay(ing.Quantity, ing.Unit).String(),
				string(ing.Unit),
				scaling.RoundForDisplay(ing.Weight, domain.UnitKilogram).String(),
				scaling.RoundForDisplay(ing.Volume, domain.UnitGallon).String(),
				"", // sign-off box
			}
			if err := setRow(row, 0, vals...); err != nil {
				return nil, fmt.Errorf("docgen: write ingredient row: %w", err)
			}
			row++
		}
		totals := []interface{}{
			"", "TOTAL ETAPA", "", "",
			scaling.RoundForDisplay(st.TotalWeight, domain.UnitKilogram).String(),
			scaling.RoundForDisplay(st.TotalVolume, domain.UnitGallon).String(),
			"",
		}
		if err := setRow(row, headerStyle, totals...); err != nil {
			return nil, fmt.Errorf("docgen: write stage totals: %w", err)
		}
		row += 2
	}

	summary := [][]interface{}{
		{"Peso total (kg)", scaling.RoundForDisplay(formula.TotalWeight(), domain.UnitKilogram).String()},
		{"Volumen total (gal)", scaling.RoundForDisplay(formula.TotalVolume(), domain.UnitGallon).String()},
		{"P/G calculado", scaling.RoundRatio(formula.WeightPerVolume()).String()},
		{"P/G medido", "________"},
		{"Operador", "________", "Supervisor", "________"},
	}
	for _, s := range summary {
		if err := setRow(row, 0, s...); err != nil {
			return nil, fmt.Errorf("docgen: write summary row: %w", err)
		}
		row++
	}

	if err := f.SetColWidth(orderSheet, "A", "A", 14); err != nil {
		return nil, fmt.Errorf("docgen: column width: %w", err)
	}
	if err := f.SetColWidth(orderSheet, "B", "B", 36); err != nil {
		return nil, fmt.Errorf("docgen: column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("docgen: serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// DocumentKey returns the storage key under which an order's workbook is kept.
func DocumentKey(order *domain.Order) string {
	return fmt.Sprintf("%s/%s.xlsx", order.CreatedAt.Format("2006/01"), order.ID)
}
