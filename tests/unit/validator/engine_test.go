package validator_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"formulab/internal/domain"
	"formulab/internal/validator"
	"formulab/internal/validator/paint"
	"formulab/mocks"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// twoStageFormula builds a well-formed two-stage formula with a total of
// 3 kg over 2.5 gal (W/V 1.2).
func twoStageFormula() *domain.Formula {
	f := &domain.Formula{
		Key:         "IN-AS-BLANCO",
		Brand:       domain.BrandInfiniti,
		Type:        "ACRILICA SATINADA",
		Color:       "BLANCO",
		BaseVolume:  dec("2.5"),
		DeclaredWPV: dec("1.2"),
		Stages: []domain.Stage{
			{
				Index: 0, Name: "Cowles dispersion",
				Ingredients: []domain.Ingredient{
					{Code: "SV-0001", Name: "AGUA", Quantity: dec("2.0"), Unit: domain.UnitKilogram, Density: dec("1.2"), Weight: dec("2.0"), Volume: decimal.RequireFromString("2.0").Div(dec("1.2"))},
				},
			},
			{
				Index: 1, Name: "Slow dissolution", DeclaredVolume: dec("0.8333333333333333"),
				Ingredients: []domain.Ingredient{
					{Code: "SV-0002", Name: "RESINA B", Quantity: dec("1.0"), Unit: domain.UnitKilogram, Density: dec("0.9"), Weight: dec("1.0"), Volume: decimal.RequireFromString("1.0").Div(dec("0.9"))},
				},
			},
		},
	}
	for i := range f.Stages {
		f.Stages[i].Recompute()
	}
	return f
}

// singleStageFormula puts the same 3 kg over 2.5 gal (W/V 1.2) in one stage.
func singleStageFormula() *domain.Formula {
	f := &domain.Formula{
		Key:   "IN-AS-BLANCO",
		Brand: domain.BrandInfiniti,
		Type:  "ACRILICA SATINADA",
		Stages: []domain.Stage{
			{
				Index: 0, Name: "Base", DeclaredVolume: dec("2.5"),
				Ingredients: []domain.Ingredient{
					{Code: "SV-0001", Name: "PIGMENTO A", Quantity: dec("2.0"), Unit: domain.UnitKilogram, Density: dec("1.2"), Weight: dec("2.0"), Volume: dec("2.0").Div(dec("1.2"))},
					{Code: "SV-0002", Name: "RESINA B", Quantity: dec("1.0"), Unit: domain.UnitKilogram, Density: dec("0.9"), Weight: dec("1.0"), Volume: dec("1.0").Div(dec("0.9"))},
				},
			},
		},
	}
	f.Stages[0].Recompute()
	return f
}

func newRegistry() *validator.Registry {
	registry := validator.NewRegistry()
	for _, checker := range paint.AllCheckers() {
		registry.Register(checker)
	}
	return registry
}

func TestEngine_Validate_SeedsMissingBuiltins(t *testing.T) {
	repo := new(mocks.MockRuleRepo)
	engine := validator.NewEngine(newRegistry(), repo)

	formula := twoStageFormula()

	// No rows exist yet: one Create per registered checker.
	repo.On("ListBuiltinKeys", mock.Anything, formula.Brand, formula.Type).Return([]string{}, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.ValidationRule")).Return(nil)
	repo.On("ListActive", mock.Anything, formula.Brand, formula.Type).Return([]domain.ValidationRule{}, nil)

	issues, err := engine.Validate(context.Background(), formula)

	require.NoError(t, err)
	assert.Empty(t, issues)
	repo.AssertNumberOfCalls(t, "Create", len(newRegistry().All()))
}

func TestEngine_Validate_SkipsSeedingWhenRowsExist(t *testing.T) {
	repo := new(mocks.MockRuleRepo)
	registry := newRegistry()
	engine := validator.NewEngine(registry, repo)

	formula := twoStageFormula()

	keys := make([]string, 0)
	for _, v := range registry.All() {
		keys = append(keys, v.RuleKey())
	}
	repo.On("ListBuiltinKeys", mock.Anything, formula.Brand, formula.Type).Return(keys, nil)
	repo.On("ListActive", mock.Anything, formula.Brand, formula.Type).Return([]domain.ValidationRule{}, nil)

	_, err := engine.Validate(context.Background(), formula)

	require.NoError(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEngine_Run_BandConfigFromRow(t *testing.T) {
	engine := validator.NewEngine(newRegistry(), new(mocks.MockRuleRepo))
	formula := twoStageFormula() // W/V = 1.2

	rules := []domain.ValidationRule{{
		IsBuiltin:  true,
		BuiltinKey: "paint.wpv_band",
		Config:     []byte(`{"min":"1.0","max":"1.1"}`),
		Severity:   domain.SeverityError,
		IsActive:   true,
	}}

	issues := engine.Run(context.Background(), formula, rules)

	require.NotEmpty(t, issues)
	assert.Equal(t, "paint.wpv_band", issues[0].Code)
	assert.Equal(t, domain.SeverityError, issues[0].Severity)
}

func TestEngine_Run_SingleStageBandViolationReportedOnce(t *testing.T) {
	engine := validator.NewEngine(newRegistry(), new(mocks.MockRuleRepo))
	formula := singleStageFormula() // W/V = 1.2, one stage

	rules := []domain.ValidationRule{{
		IsBuiltin:  true,
		BuiltinKey: "paint.wpv_band",
		Config:     []byte(`{"min":"1.0","max":"1.1"}`),
		Severity:   domain.SeverityError,
		IsActive:   true,
	}}

	issues := engine.Run(context.Background(), formula, rules)

	// One physical violation, one finding: the stage check already covers a
	// single-stage formula, so no formula-wide duplicate.
	var errors, warnings int
	for _, is := range issues {
		switch is.Severity {
		case domain.SeverityError:
			errors++
		case domain.SeverityWarning:
			warnings++
		}
	}
	assert.Equal(t, 1, errors)
	assert.Equal(t, 0, warnings)
	require.Len(t, issues, 1)
	assert.Equal(t, "Base", issues[0].Stage)
}

func TestEngine_Run_MultiStageReportsAggregateToo(t *testing.T) {
	engine := validator.NewEngine(newRegistry(), new(mocks.MockRuleRepo))
	formula := twoStageFormula() // both stages and the aggregate sit at 1.2

	rules := []domain.ValidationRule{{
		IsBuiltin:  true,
		BuiltinKey: "paint.wpv_band",
		Config:     []byte(`{"min":"1.0","max":"1.1"}`),
		Severity:   domain.SeverityError,
		IsActive:   true,
	}}

	issues := engine.Run(context.Background(), formula, rules)

	require.Len(t, issues, 3)
	assert.Equal(t, "Cowles dispersion", issues[0].Stage)
	assert.Equal(t, "Slow dissolution", issues[1].Stage)
	assert.Empty(t, issues[2].Stage, "formula-wide aggregate comes last")
}

func TestEngine_Run_SeverityOverrideFromRow(t *testing.T) {
	engine := validator.NewEngine(newRegistry(), new(mocks.MockRuleRepo))
	formula := twoStageFormula() // W/V 1.2, outside [2.0, 3.0]

	rules := []domain.ValidationRule{{
		IsBuiltin:  true,
		BuiltinKey: "paint.wpv_band",
		Config:     []byte(`{"min":"2.0","max":"3.0"}`),
		Severity:   domain.SeverityWarning, // softened from the checker's default
	}}

	issues := engine.Run(context.Background(), formula, rules)

	require.NotEmpty(t, issues)
	for _, is := range issues {
		assert.Equal(t, domain.SeverityWarning, is.Severity)
	}
}

func TestEngine_Run_SkipsNonBuiltinAndUnregisteredRows(t *testing.T) {
	engine := validator.NewEngine(newRegistry(), new(mocks.MockRuleRepo))
	formula := twoStageFormula()

	rules := []domain.ValidationRule{
		{IsBuiltin: false, BuiltinKey: "paint.wpv_band", Config: []byte(`{"min":"9","max":"10"}`)},
		{IsBuiltin: true, BuiltinKey: "paint.does_not_exist"},
	}

	issues := engine.Run(context.Background(), formula, rules)

	assert.Empty(t, issues)
}

func TestRegistry_AllPreservesRegistrationOrder(t *testing.T) {
	registry := newRegistry()

	want := make([]string, 0)
	for _, checker := range paint.AllCheckers() {
		want = append(want, checker.RuleKey())
	}
	got := make([]string, 0)
	for _, v := range registry.All() {
		got = append(got, v.RuleKey())
	}

	assert.Equal(t, want, got)
}

func TestEngine_Run_DeclarationOrderRegardlessOfRowOrder(t *testing.T) {
	engine := validator.NewEngine(newRegistry(), new(mocks.MockRuleRepo))
	formula := twoStageFormula()

	// Rows arrive in reverse declaration order, the way a map-backed store
	// might hand them over.
	rules := []domain.ValidationRule{
		{
			IsBuiltin:  true,
			BuiltinKey: "paint.unexpected_ingredients",
			Config:     []byte(`{"names":["AGUA"]}`), // flags RESINA B
			Severity:   domain.SeverityWarning,
			IsActive:   true,
		},
		{
			IsBuiltin:  true,
			BuiltinKey: "paint.wpv_band",
			Config:     []byte(`{"min":"2.0","max":"3.0"}`), // flags 1.2
			Severity:   domain.SeverityError,
			IsActive:   true,
		},
	}

	issues := engine.Run(context.Background(), formula, rules)

	require.NotEmpty(t, issues)
	assert.Equal(t, "paint.wpv_band", issues[0].Code)
	assert.Equal(t, "paint.unexpected_ingredients", issues[len(issues)-1].Code)
}

func TestEngine_Run_InBandProducesNoIssue(t *testing.T) {
	engine := validator.NewEngine(newRegistry(), new(mocks.MockRuleRepo))
	formula := twoStageFormula()

	rules := []domain.ValidationRule{{
		IsBuiltin:  true,
		BuiltinKey: "paint.wpv_band",
		Config:     []byte(`{"min":"1.0","max":"1.5"}`),
		Severity:   domain.SeverityError,
	}}

	issues := engine.Run(context.Background(), formula, rules)

	assert.Empty(t, issues)
}
