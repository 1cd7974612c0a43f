package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Metadata is what the free-text zone above and below the ingredient table
// declares about the formula as a whole.
type Metadata struct {
	Type           string
	Color          string
	DeclaredVolume decimal.Decimal // "VOLUMEN" column, gallons
	DeclaredWPV    decimal.Decimal // "P/G" column, kg per gallon
	BaseGallons    decimal.Decimal // gallons the master batch produces
}

var (
	volumeHeaderPat = regexp.MustCompile(`(?i)\bVOLUMEN\b.*\bP\s*/\s*G\b`)
	volumeInline    = regexp.MustCompile(`(?i)\bVOLUMEN\b[^0-9]*([0-9.,]+)`)
	wpvInline       = regexp.MustCompile(`(?i)\bP\s*/\s*G\b[^0-9]*([0-9.,]+)`)
	bareNumber      = regexp.MustCompile(`^[0-9]+([.,][0-9]+)?$`)
)

var (
	gallonsFloor   = decimal.RequireFromString("0.1")
	gallonsCeiling = decimal.NewFromInt(5000)
)

const metadataWindow = 15

// ExtractMetadata scans the raw text for the declarations the spreadsheet
// header zone carries: paint type, color, declared volume and P/G, and the
// gallons the master batch yields. Every field degrades to its zero value
// when absent; the builder's options override anything found here.
func ExtractMetadata(raw string) Metadata {
	var meta Metadata
	lines := nonBlankLines(raw)
	if len(lines) == 0 {
		return meta
	}

	meta.Type = cleanType(lines[0])

	// "VOLUMEN … P/G" header: the next line holds color text followed by
	// the two numbers in column order.
	for i := 0; i < len(lines) && i < 5; i++ {
		if !volumeHeaderPat.MatchString(lines[i]) || i+1 >= len(lines) {
			continue
		}
		color, nums := splitColorAndNumbers(lines[i+1])
		if len(nums) >= 2 {
			meta.DeclaredVolume = nums[0]
			meta.DeclaredWPV = nums[1]
		}
		if color != "" {
			meta.Color = color
		}
		break
	}

	joined := strings.Join(lines, "\n")
	if meta.DeclaredVolume.IsZero() {
		if m := volumeInline.FindStringSubmatch(joined); m != nil {
			if d, ok := ParseDecimal(m[1]); ok {
				meta.DeclaredVolume = d
			}
		}
	}
	if meta.DeclaredWPV.IsZero() {
		if m := wpvInline.FindStringSubmatch(joined); m != nil {
			if d, ok := ParseDecimal(m[1]); ok {
				meta.DeclaredWPV = d
			}
		}
	}

	meta.BaseGallons = detectBaseGallons(lines)
	return meta
}

// detectBaseGallons finds the batch size in gallons: preferred source is the
// trailing TOTAL row (last plausible number wins), falling back to an
// isolated numeric cell in the metadata zone.
func detectBaseGallons(lines []string) decimal.Decimal {
	for i := len(lines) - 1; i >= 0; i-- {
		if !strings.Contains(strings.ToUpper(lines[i]), "TOTAL") {
			continue
		}
		nums := numbersIn(lines[i])
		for j := len(nums) - 1; j >= 0; j-- {
			if plausibleGallons(nums[j]) {
				return nums[j]
			}
		}
		break
	}

	for i := 0; i < len(lines) && i < metadataWindow; i++ {
		trimmed := strings.TrimSpace(lines[i])
		if headerPattern.MatchString(trimmed) {
			// "STANDARD 150" style: batch size after a presentation word.
			if nums := numbersIn(trimmed); len(nums) == 1 && plausibleGallons(nums[0]) {
				return nums[0]
			}
			continue
		}
		if bareNumber.MatchString(trimmed) {
			if d, ok := ParseDecimal(trimmed); ok && plausibleGallons(d) {
				return d
			}
		}
	}
	return decimal.Zero
}

func plausibleGallons(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(gallonsFloor) && d.LessThanOrEqual(gallonsCeiling)
}

// splitColorAndNumbers splits a metadata data line into the leading color
// text and the numeric columns that follow it.
func splitColorAndNumbers(line string) (string, []decimal.Decimal) {
	var colorWords []string
	var nums []decimal.Decimal
	for _, col := range splitColumns(line) {
		if d, ok := ParseDecimal(col); ok {
			nums = append(nums, d)
			continue
		}
		if len(nums) == 0 {
			colorWords = append(colorWords, col)
		}
	}
	return titleCase(strings.Join(colorWords, " ")), nums
}

// cleanType extracts the paint type from the first visible line, cutting off
// the VOLUMEN header when both share the line.
func cleanType(line string) string {
	upper := strings.ToUpper(line)
	if idx := strings.Index(upper, "VOLUMEN"); idx >= 0 {
		line = line[:idx]
	}
	return titleCase(strings.Join(strings.Fields(line), " "))
}

func nonBlankLines(raw string) []string {
	var out []string
	for _, ln := range strings.Split(raw, "\n") {
		if strings.TrimSpace(ln) != "" {
			out = append(out, ln)
		}
	}
	return out
}

func numbersIn(line string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, col := range splitColumns(line) {
		for _, tok := range strings.Fields(col) {
			if d, ok := ParseDecimal(tok); ok {
				out = append(out, d)
			}
		}
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
