package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// metadataQtyCeiling separates ingredient amounts from volume/cost figures in
// the metadata zone above the column header.
var metadataQtyCeiling = decimal.NewFromInt(10)

// LineKind is the closed classification set for input lines. Downstream code
// dispatches on the tag instead of re-sniffing strings.
type LineKind int

const (
	LineBlank LineKind = iota
	LineHeader
	LineStageMarker
	LineIngredientRow
	LineUnrecognized
)

func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineHeader:
		return "header"
	case LineStageMarker:
		return "stage_marker"
	case LineIngredientRow:
		return "ingredient_row"
	default:
		return "unrecognized"
	}
}

// RawLine is a single line of pasted formula text. Line numbers are 1-based
// and count every input line, including blanks, so error messages point at
// what the user actually pasted.
type RawLine struct {
	Text   string
	Number int
}

// ClassifiedLine is a RawLine plus its tag and the column split the
// classifier already computed, so the builder does not split twice.
type ClassifiedLine struct {
	Raw         RawLine
	Kind        LineKind
	Columns     []string
	StageName   string // canonical stage name, set when Kind == LineStageMarker
	StageVolume string // raw volume token from the marker, e.g. "2.5 GL", if present
}

// codePattern matches raw-material codes like SV-0001, PE-010, AV-023.
var codePattern = regexp.MustCompile(`^[A-Z]{2,3}-\d{3,5}$`)

// headerPattern matches table headers and metadata rows that survive a
// copy-paste from the source spreadsheets.
var headerPattern = regexp.MustCompile(`(?i)\b(CODIGO|NOMBRE\s+GENERICO|PRECIO|COSTO|FECHA|GALONES\s+PRODUCIDOS|UNIDAD|VOLUMEN|P\s*/\s*G|TOTAL|STANDARD|MODIFICACION)\b`)

// stageDefs maps multilingual stage keywords to canonical stage names.
// Source texts mix Spanish, French and English instructions. Order matters:
// classification is deterministic, first match wins.
var stageDefs = []struct {
	Name     string
	Keywords []string
}{
	{"Cowles dispersion", []string{"DISPERSAR", "COWLES", "DISPERS"}},
	{"Slow dissolution", []string{"DISOLVER", "DISOL", "DISSOLV"}},
	{"Quick mix", []string{"MEZCLAR", "MELANGER", "MEZCLA", "MIXING", "MIX"}},
	{"Base", []string{"BASE"}},
}

// Classify splits raw pasted text into lines and tags each one. It is pure
// and total: malformed lines become LineUnrecognized, never an error, so one
// bad line cannot abort a parse.
func Classify(raw string) []ClassifiedLine {
	var out []ClassifiedLine
	for i, text := range strings.Split(raw, "\n") {
		line := RawLine{Text: text, Number: i + 1}
		out = append(out, classifyLine(line))
	}
	demoteMetadataZone(out)
	return out
}

// demoteMetadataZone reclassifies ingredient-shaped lines that sit above the
// column header row. Spreadsheet exports put color/volume metadata there in
// the same name-then-numbers shape as an ingredient; a large quantity in
// that zone is a volume or a cost figure, not an ingredient amount.
func demoteMetadataZone(lines []ClassifiedLine) {
	headerIdx := -1
	for i := range lines {
		if lines[i].Kind != LineHeader {
			continue
		}
		upper := strings.ToUpper(lines[i].Raw.Text)
		if strings.Contains(upper, "CODIGO") || strings.Contains(upper, "NOMBRE") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return
	}
	for i := 0; i < headerIdx; i++ {
		if lines[i].Kind != LineIngredientRow {
			continue
		}
		if qty, ok := firstQuantity(lines[i].Columns); ok && qty.GreaterThan(metadataQtyCeiling) {
			lines[i].Kind = LineUnrecognized
		}
	}
}

func classifyLine(line RawLine) ClassifiedLine {
	trimmed := strings.TrimSpace(line.Text)
	if trimmed == "" {
		return ClassifiedLine{Raw: line, Kind: LineBlank}
	}

	cols := splitColumns(line.Text)

	if stage, ok := matchStage(trimmed, cols); ok {
		return ClassifiedLine{
			Raw: line, Kind: LineStageMarker, Columns: cols,
			StageName:   stage,
			StageVolume: stageVolumeToken(cols),
		}
	}

	if isIngredientRow(cols) {
		return ClassifiedLine{Raw: line, Kind: LineIngredientRow, Columns: cols}
	}

	if headerPattern.MatchString(trimmed) {
		return ClassifiedLine{Raw: line, Kind: LineHeader, Columns: cols}
	}

	return ClassifiedLine{Raw: line, Kind: LineUnrecognized, Columns: cols}
}

// stageVolumeToken finds a declared stage volume on a marker line, either as
// a single "2.5GL" token or a number followed by a volumetric unit column.
func stageVolumeToken(cols []string) string {
	for i, c := range cols {
		if _, unit, ok := ParseQuantity(c); ok && unit.IsVolumetric() {
			return c
		}
		if _, ok := ParseDecimal(c); ok && i+1 < len(cols) {
			if unit, known := lookupUnit(cols[i+1]); known && unit.IsVolumetric() {
				return c + " " + cols[i+1]
			}
		}
	}
	return ""
}

// matchStage reports whether the line introduces a mixing stage. Lines whose
// first token is a material code or a number are ingredient rows even when an
// instruction word appears in the name.
func matchStage(trimmed string, cols []string) (string, bool) {
	first := ""
	if len(cols) > 0 {
		first = cols[0]
	}
	if fields := strings.Fields(first); len(fields) > 0 {
		first = fields[0]
	}
	if codePattern.MatchString(first) {
		return "", false
	}
	if _, ok := ParseDecimal(first); ok {
		return "", false
	}

	upper := strings.ToUpper(trimmed)
	firstWord := ""
	if fields := strings.Fields(upper); len(fields) > 0 {
		firstWord = fields[0]
	}
	for _, def := range stageDefs {
		for _, kw := range def.Keywords {
			if !strings.Contains(upper, kw) {
				continue
			}
			// A keyword buried inside a name-plus-numbers row is an
			// ingredient ("WHITE BASE 5.0 4.1"), not an instruction.
			if !strings.HasPrefix(firstWord, kw) && numericTail(cols) >= 2 && isIngredientRow(cols) {
				continue
			}
			return def.Name, true
		}
	}
	return "", false
}

// isIngredientRow applies shape heuristics: either a code-prefixed row, or a
// textual name followed by a plausible quantity. Quantity syntax is checked
// loosely here; strict parsing happens in the builder so that a garbled
// number on a clearly ingredient-shaped row surfaces as a build error naming
// the line.
func isIngredientRow(cols []string) bool {
	if len(cols) < 2 {
		return false
	}
	if codePattern.MatchString(cols[0]) {
		return numericTail(cols[1:]) >= 1 || len(cols) >= 3
	}
	// No code: the first column must be a name, not a number or a header.
	if _, ok := ParseDecimal(cols[0]); ok {
		return false
	}
	if headerPattern.MatchString(cols[0]) {
		return false
	}
	if _, _, ok := ParseQuantity(cols[1]); !ok {
		return false
	}
	return true
}

func numericTail(cols []string) int {
	n := 0
	for _, c := range cols {
		if _, ok := ParseDecimal(c); ok {
			n++
		}
	}
	return n
}

// firstQuantity returns the first column that parses as a quantity, skipping
// the leading name/code columns.
func firstQuantity(cols []string) (decimal.Decimal, bool) {
	for _, c := range cols {
		if q, _, ok := ParseQuantity(c); ok {
			return q, true
		}
	}
	return decimal.Zero, false
}
