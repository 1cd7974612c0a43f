package xlsx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulab/internal/domain"
	"formulab/internal/port"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testFormula() *domain.Formula {
	f := &domain.Formula{
		ID:           uuid.New(),
		Key:          "IN-AS-BLANCO",
		Brand:        domain.BrandInfiniti,
		Type:         "ACRILICA SATINADA",
		Color:        "BLANCO",
		Presentation: "STANDARD",
		Version:      "1.0",
		BaseVolume:   dec("2.5"),
		DeclaredWPV:  dec("1.2"),
		Metadata:     map[string]string{"declared_volume": "2.5"},
		CreatedAt:    time.Now().Truncate(time.Second),
		Stages: []domain.Stage{
			{
				Index: 0, Name: "Quick mix", DeclaredVolume: dec("2.5"),
				Ingredients: []domain.Ingredient{
					{Code: "SV-0001", Name: "PIGMENTO A", Quantity: dec("2.0"), Unit: domain.UnitKilogram, Density: dec("1.2")},
					{Code: "SV-0002", Name: "RESINA B", Quantity: dec("1.0"), Unit: domain.UnitKilogram, Density: dec("0.9")},
				},
			},
		},
	}
	for i := range f.Stages {
		for j := range f.Stages[i].Ingredients {
			ing := &f.Stages[i].Ingredients[j]
			ing.Weight = domain.WeightKg(ing.Quantity, ing.Unit, ing.Density)
			ing.Volume = domain.VolumeGal(ing.Quantity, ing.Unit, ing.Density)
		}
		f.Stages[i].Recompute()
	}
	return f
}

func TestStore_FormulaRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)

	original := testFormula()
	require.NoError(t, store.Formulas().Save(ctx, original))

	// Reopen from disk: everything must come back from the workbook alone.
	reopened, err := Open(path)
	require.NoError(t, err)

	got, err := reopened.Formulas().GetByKey(ctx, original.Key)
	require.NoError(t, err)

	assert.Equal(t, original.Key, got.Key)
	assert.Equal(t, original.Brand, got.Brand)
	assert.Equal(t, original.Type, got.Type)
	assert.Equal(t, original.Color, got.Color)
	assert.True(t, got.BaseVolume.Equal(dec("2.5")))
	assert.True(t, got.DeclaredWPV.Equal(dec("1.2")))
	assert.Equal(t, "2.5", got.Metadata["declared_volume"])

	require.Len(t, got.Stages, 1)
	st := got.Stages[0]
	assert.Equal(t, "Quick mix", st.Name)
	require.Len(t, st.Ingredients, 2)
	assert.Equal(t, "SV-0001", st.Ingredients[0].Code)
	assert.True(t, st.Ingredients[0].Quantity.Equal(dec("2.0")))
	assert.Equal(t, domain.UnitKilogram, st.Ingredients[0].Unit)

	// Derived totals are recomputed on load.
	assert.True(t, st.TotalWeight.Equal(dec("3.0")), st.TotalWeight)
	assert.True(t, st.TotalVolume.Equal(dec("2.5")), st.TotalVolume)
	assert.True(t, st.WeightPerVolume.Equal(dec("1.2")), st.WeightPerVolume)
}

func TestStore_GetByKey_NotFound(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "catalog.xlsx"))
	require.NoError(t, err)

	_, err = store.Formulas().GetByKey(context.Background(), "IN-XX-NADA")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListFiltersAndPaginates(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "catalog.xlsx"))
	require.NoError(t, err)
	ctx := context.Background()

	a := testFormula()
	b := testFormula()
	b.Key = "PM-EP-GRIS"
	b.Brand = domain.BrandMilan
	b.Color = "GRIS"
	require.NoError(t, store.Formulas().Save(ctx, a))
	require.NoError(t, store.Formulas().Save(ctx, b))

	all, total, err := store.Formulas().List(ctx, port.FormulaFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	milan, total, err := store.Formulas().List(ctx, port.FormulaFilter{Brand: domain.BrandMilan}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, milan, 1)
	assert.Equal(t, "PM-EP-GRIS", milan[0].Key)

	page, total, err := store.Formulas().List(ctx, port.FormulaFilter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, page, 1)
}

func TestStore_DeleteAndExists(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "catalog.xlsx"))
	require.NoError(t, err)
	ctx := context.Background()

	f := testFormula()
	require.NoError(t, store.Formulas().Save(ctx, f))

	exists, err := store.Formulas().ExistsKey(ctx, f.Key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.Formulas().Delete(ctx, f.Key))

	exists, err = store.Formulas().ExistsKey(ctx, f.Key)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, store.Formulas().Delete(ctx, f.Key), domain.ErrNotFound)
}

func TestStore_RuleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)

	rule := &domain.ValidationRule{
		ID:         uuid.New(),
		Brand:      domain.BrandInfiniti,
		Type:       "ACRILICA SATINADA",
		RuleName:   "Weight per volume band",
		Kind:       domain.RuleKindRatioBand,
		Config:     []byte(`{"min":"2.8","max":"25"}`),
		Severity:   domain.SeverityError,
		IsBuiltin:  true,
		BuiltinKey: "paint.wpv_band",
		IsActive:   true,
		CreatedAt:  time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Rules().Create(ctx, rule))

	reopened, err := Open(path)
	require.NoError(t, err)

	got, err := reopened.Rules().GetByID(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.BuiltinKey, got.BuiltinKey)
	assert.Equal(t, rule.Severity, got.Severity)
	assert.JSONEq(t, string(rule.Config), string(got.Config))

	keys, err := reopened.Rules().ListBuiltinKeys(ctx, rule.Brand, rule.Type)
	require.NoError(t, err)
	assert.Contains(t, keys, "paint.wpv_band")

	active, err := reopened.Rules().ListActive(ctx, rule.Brand, rule.Type)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestStore_OrderRoundTripAndCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)

	order := &domain.Order{
		ID:          "ORD-20260826-0001",
		FormulaKey:  "IN-AS-BLANCO",
		TargetGal:   dec("5"),
		Status:      domain.OrderStatusPending,
		DocumentRef: "ordenes/2026/08/ORD-20260826-0001.xlsx",
		CreatedBy:   "operador",
		CreatedAt:   time.Now().Truncate(time.Second),
		UpdatedAt:   time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Orders().Create(ctx, order))

	n, err := store.Orders().CountByPrefix(ctx, "ORD-20260826-")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	reopened, err := Open(path)
	require.NoError(t, err)

	got, err := reopened.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	assert.True(t, got.TargetGal.Equal(dec("5")))

	got.Status = domain.OrderStatusProduced
	got.MeasuredWPV = dec("1.19")
	require.NoError(t, reopened.Orders().Update(ctx, got))

	produced, total, err := reopened.Orders().List(ctx, domain.OrderStatusProduced, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, produced, 1)
	assert.True(t, produced[0].MeasuredWPV.Equal(dec("1.19")))
}

func TestStore_MappingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.xlsx")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, store.TypeMappings().Upsert(ctx, &domain.TypeMapping{Type: "ACRILICA SATINADA", Tag: "AS"}))
	require.NoError(t, store.TypeMappings().Upsert(ctx, &domain.TypeMapping{Type: "ACRILICA SATINADA", Tag: "SAT"}))

	reopened, err := Open(path)
	require.NoError(t, err)

	all, err := reopened.TypeMappings().All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SAT", all["ACRILICA SATINADA"], "upsert replaces the tag")
}
