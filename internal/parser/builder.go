package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"formulab/internal/domain"
)

// BuildOptions carries the caller-supplied capture context. Overrides win
// over anything detected in the text.
type BuildOptions struct {
	Brand         domain.Brand
	TypeOverride  string
	ColorOverride string
	Presentation  string
	Version       string
	KeyOverride   string
	TypeTags      map[string]string
	Metadata      map[string]string
}

const implicitStageName = "Base preparation"

// Build assembles classified lines into a fully-derived Formula. Ingredient
// rows attach to the most recent stage marker; rows before the first marker
// go to an implicit preparation stage. Structural failures abort: zero stage
// markers in the whole text yields ErrNoStagesFound, a garbled quantity on
// an ingredient-shaped row yields an UnparsableQuantityError naming the line.
func Build(lines []ClassifiedLine, opts BuildOptions) (*domain.Formula, error) {
	var stages []domain.Stage
	current := -1
	markers := 0
	rows := 0

	for i := range lines {
		line := &lines[i]
		switch line.Kind {
		case LineStageMarker:
			markers++
			stage := domain.Stage{Index: len(stages), Name: line.StageName}
			if line.StageVolume != "" {
				if vol, unit, ok := ParseQuantity(line.StageVolume); ok {
					stage.DeclaredVolume = domain.ToGallons(vol, unit)
				} else if cols := strings.Fields(line.StageVolume); len(cols) == 2 {
					if d, ok := ParseDecimal(cols[0]); ok {
						if u, known := lookupUnit(cols[1]); known {
							stage.DeclaredVolume = domain.ToGallons(d, u)
						}
					}
				}
			}
			stages = append(stages, stage)
			current = len(stages) - 1

		case LineIngredientRow:
			rows++
			ing, err := parseIngredient(line)
			if err != nil {
				return nil, err
			}
			if current < 0 {
				stages = append(stages, domain.Stage{Index: 0, Name: implicitStageName})
				current = 0
			}
			stages[current].Ingredients = append(stages[current].Ingredients, ing)
		}
	}

	if markers == 0 {
		if rows > 0 {
			return nil, fmt.Errorf("%d ingredient rows but no stage markers: %w", rows, domain.ErrNoStagesFound)
		}
		return nil, fmt.Errorf("no stage markers or ingredient rows recognized: %w", domain.ErrNoStagesFound)
	}

	meta := ExtractMetadata(rawText(lines))
	f := assemble(stages, meta, opts)
	return f, nil
}

// parseIngredient reduces an ingredient-shaped row to a derived Ingredient.
func parseIngredient(line *ClassifiedLine) (domain.Ingredient, error) {
	cols := line.Columns
	var ing domain.Ingredient
	rest := cols

	if codePattern.MatchString(cols[0]) {
		ing.Code = cols[0]
		if len(cols) > 1 {
			ing.Name = strings.TrimSpace(cols[1])
			rest = cols[2:]
		} else {
			rest = nil
		}
	} else {
		ing.Name = strings.TrimSpace(cols[0])
		rest = cols[1:]
	}

	// The first digit-bearing token after the name is the quantity. A row
	// was already classified as an ingredient, so failure here is a
	// structural error, not noise.
	qtyIdx := -1
	for i, tok := range rest {
		if strings.ContainsAny(tok, "0123456789") {
			qtyIdx = i
			break
		}
	}
	if qtyIdx < 0 {
		return ing, &UnparsableQuantityError{Line: line.Raw.Number, Token: strings.TrimSpace(line.Raw.Text)}
	}
	qty, embedded, ok := ParseQuantity(rest[qtyIdx])
	if !ok {
		return ing, &UnparsableQuantityError{Line: line.Raw.Number, Token: rest[qtyIdx]}
	}
	ing.Quantity = qty
	ing.Unit = domain.UnitKilogram
	if embedded != "" {
		ing.Unit = embedded
	}

	// Explicit unit column directly after the quantity wins over a suffix.
	tail := rest[qtyIdx+1:]
	if len(tail) > 0 {
		if u, known := lookupUnit(tail[0]); known {
			ing.Unit = u
			tail = tail[1:]
		}
	}

	applyDensity(&ing, numericValues(tail))

	ing.Weight = domain.WeightKg(ing.Quantity, ing.Unit, ing.Density)
	ing.Volume = domain.VolumeGal(ing.Quantity, ing.Unit, ing.Density)
	return ing, nil
}

// applyDensity resolves the ingredient density: a declared column value in
// the plausibility band, else the name lookup table, else a ratio inferred
// from the row's derived weight and volume columns (flagged so the validator
// can treat it more loosely).
func applyDensity(ing *domain.Ingredient, nums []decimal.Decimal) {
	for _, n := range nums {
		if plausibleDensity(n) {
			ing.Density = n
			return
		}
	}
	if d, ok := densityByName(ing.Name); ok {
		ing.Density = d
		return
	}
	if len(nums) >= 2 && nums[0].IsPositive() && nums[1].IsPositive() {
		ratio := nums[0].Div(nums[1])
		if plausibleDensity(ratio) {
			ing.Density = ratio
			ing.DensityInferred = true
		}
	}
}

func assemble(stages []domain.Stage, meta Metadata, opts BuildOptions) *domain.Formula {
	typ := opts.TypeOverride
	if typ == "" {
		typ = meta.Type
	}
	color := opts.ColorOverride
	if color == "" {
		color = meta.Color
	}
	brand := opts.Brand
	if brand == "" {
		brand = domain.BrandInfiniti
	}
	presentation := opts.Presentation
	if presentation == "" {
		presentation = "STANDARD"
	}
	version := opts.Version
	if version == "" {
		version = "1.0"
	}

	key := opts.KeyOverride
	if key == "" {
		key = BuildKey(brand, typ, color, opts.TypeTags)
	}

	// A whole-batch declared volume applies to a single-stage formula whose
	// marker carried none of its own.
	if len(stages) == 1 && stages[0].DeclaredVolume.IsZero() && meta.DeclaredVolume.IsPositive() {
		stages[0].DeclaredVolume = meta.DeclaredVolume
	}
	for i := range stages {
		stages[i].Recompute()
	}

	md := map[string]string{}
	for k, v := range opts.Metadata {
		md[k] = v
	}
	if meta.DeclaredVolume.IsPositive() {
		md["declared_volume"] = meta.DeclaredVolume.String()
	}

	return &domain.Formula{
		ID:           uuid.New(),
		Key:          key,
		Brand:        brand,
		Type:         typ,
		Color:        color,
		Presentation: presentation,
		Version:      version,
		BaseVolume:   meta.BaseGallons,
		DeclaredWPV:  meta.DeclaredWPV,
		Stages:       stages,
		Metadata:     md,
		CreatedAt:    time.Now().UTC(),
	}
}

func rawText(lines []ClassifiedLine) string {
	var sb strings.Builder
	for i := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(lines[i].Raw.Text)
	}
	return sb.String()
}

func numericValues(cols []string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, c := range cols {
		if d, ok := ParseDecimal(c); ok {
			out = append(out, d)
		}
	}
	return out
}
