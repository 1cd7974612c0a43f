// Package csvexport renders the catalog as CSV for spreadsheet use.
package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"formulab/internal/domain"
	"formulab/internal/scaling"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Key",
	"Brand",
	"Type",
	"Color",
	"Presentation",
	"Version",
	"Base Gallons",
	"Declared P/G",
	"Computed P/G",
	"Total Weight (kg)",
	"Total Volume (gal)",
	"Stage Count",
	"Ingredient Count",
	"Created At",
}

// Writer wraps csv.Writer for exporting the catalog as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteFormulas converts a batch of formulas to CSV rows and writes them.
func (w *Writer) WriteFormulas(formulas []domain.Formula) error {
	for i := range formulas {
		row := formulaToRow(&formulas[i])
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

func formulaToRow(f *domain.Formula) []string {
	ingredients := 0
	for i := range f.Stages {
		ingredients += len(f.Stages[i].Ingredients)
	}

	row := make([]string, len(columns))
	row[0] = f.Key
	row[1] = string(f.Brand)
	row[2] = f.Type
	row[3] = f.Color
	row[4] = f.Presentation
	row[5] = f.Version
	row[6] = scaling.RoundForDisplay(f.BaseVolume, domain.UnitGallon).String()
	row[7] = scaling.RoundRatio(f.DeclaredWPV).String()
	row[8] = scaling.RoundRatio(f.WeightPerVolume()).String()
	row[9] = scaling.RoundForDisplay(f.TotalWeight(), domain.UnitKilogram).String()
	row[10] = scaling.RoundForDisplay(f.TotalVolume(), domain.UnitGallon).String()
	row[11] = strconv.Itoa(len(f.Stages))
	row[12] = strconv.Itoa(ingredients)
	row[13] = f.CreatedAt.Format(time.RFC3339)
	return row
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a name for use in Content-Disposition. Replaces
// non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header, in the form {sanitized_name}_{YYYY-MM-DD}.csv.
func BuildFilename(name string) string {
	sanitized := SanitizeFilename(name)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
