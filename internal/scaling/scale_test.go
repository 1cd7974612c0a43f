package scaling

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulab/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ingredient(name, qty, density string) domain.Ingredient {
	ing := domain.Ingredient{
		Name:     name,
		Quantity: dec(qty),
		Unit:     domain.UnitKilogram,
		Density:  dec(density),
	}
	ing.Weight = domain.WeightKg(ing.Quantity, ing.Unit, ing.Density)
	ing.Volume = domain.VolumeGal(ing.Quantity, ing.Unit, ing.Density)
	return ing
}

func twoIngredientFormula() *domain.Formula {
	st := domain.Stage{
		Name: "Quick mix",
		Ingredients: []domain.Ingredient{
			ingredient("PIGMENTO A", "2.0", "1.2"),
			ingredient("RESINA B", "1.0", "0.9"),
		},
		DeclaredVolume: dec("2.5"),
	}
	st.Recompute()
	return &domain.Formula{Key: "IN-AS-BLANCO", Stages: []domain.Stage{st}}
}

func TestScaleToVolume_DoublesQuantitiesKeepsRatio(t *testing.T) {
	f := twoIngredientFormula()
	require.True(t, f.WeightPerVolume().Equal(dec("1.2")))

	scaled, err := ScaleToVolume(f, dec("5"))
	require.NoError(t, err)

	st := scaled.Stages[0]
	assert.True(t, st.Ingredients[0].Quantity.Equal(dec("4.0")), st.Ingredients[0].Quantity)
	assert.True(t, st.Ingredients[1].Quantity.Equal(dec("2.0")), st.Ingredients[1].Quantity)
	assert.True(t, st.TotalWeight.Equal(dec("6.0")), st.TotalWeight)
	assert.True(t, st.TotalVolume.Equal(dec("5")), st.TotalVolume)
	assert.True(t, scaled.WeightPerVolume().Equal(dec("1.2")), scaled.WeightPerVolume())
}

func TestScaleToVolume_PercentQuantitiesHold(t *testing.T) {
	st := domain.Stage{
		Name: "Quick mix",
		Ingredients: []domain.Ingredient{
			ingredient("PIGMENTO A", "2.0", "1.2"),
			ingredient("RESINA B", "1.0", "0.9"),
			{Name: "ADITIVO C", Quantity: dec("2"), Unit: domain.UnitPercent, Density: dec("1.0"), Weight: dec("2"), Volume: dec("2")},
		},
		DeclaredVolume: dec("4.5"),
	}
	st.Recompute()
	f := &domain.Formula{Key: "IN-AS-BLANCO", Stages: []domain.Stage{st}}

	scaled, err := ScaleToVolume(f, dec("9"))
	require.NoError(t, err)

	ings := scaled.Stages[0].Ingredients
	// A percent quantity is a proportion; it stays put while its derived
	// weight and volume double with the batch.
	assert.True(t, ings[2].Quantity.Equal(dec("2")), ings[2].Quantity)
	assert.True(t, ings[2].Weight.Equal(dec("4")), ings[2].Weight)
	assert.True(t, ings[2].Volume.Equal(dec("4")), ings[2].Volume)
	assert.True(t, ings[0].Quantity.Equal(dec("4.0")), ings[0].Quantity)
	assert.True(t, scaled.Stages[0].TotalVolume.Equal(dec("9")))
}

func TestScaleToVolume_InputNotMutated(t *testing.T) {
	f := twoIngredientFormula()
	_, err := ScaleToVolume(f, dec("50"))
	require.NoError(t, err)

	assert.True(t, f.Stages[0].Ingredients[0].Quantity.Equal(dec("2.0")))
	assert.True(t, f.Stages[0].TotalVolume.Equal(dec("2.5")))
}

func TestScaleToVolume_RoundTripReproducesOriginal(t *testing.T) {
	f := twoIngredientFormula()
	up, err := ScaleToVolume(f, dec("7"))
	require.NoError(t, err)
	back, err := ScaleToVolume(up, dec("2.5"))
	require.NoError(t, err)

	eps := dec("0.000000000001")
	for j := range back.Stages[0].Ingredients {
		got := back.Stages[0].Ingredients[j].Quantity
		want := f.Stages[0].Ingredients[j].Quantity
		assert.True(t, got.Sub(want).Abs().LessThan(eps), "ingredient %d: %s != %s", j, got, want)
	}
}

func TestScaleToVolume_SameTargetIsIdentity(t *testing.T) {
	f := twoIngredientFormula()
	same, err := ScaleToVolume(f, dec("2.5"))
	require.NoError(t, err)
	assert.True(t, same.Stages[0].Ingredients[0].Quantity.Equal(dec("2.0")))
	assert.True(t, same.Stages[0].TotalVolume.Equal(dec("2.5")))
}

func TestScaleToVolume_PerStageRatiosPreserved(t *testing.T) {
	st1 := domain.Stage{
		Name:        "Cowles dispersion",
		Ingredients: []domain.Ingredient{ingredient("AGUA", "10", "4")},
	}
	st1.Recompute()
	st2 := domain.Stage{
		Name:        "Quick mix",
		Ingredients: []domain.Ingredient{ingredient("RESINA", "8", "5")},
	}
	st2.Recompute()
	f := &domain.Formula{Stages: []domain.Stage{st1, st2}}
	// volumes 2.5 + 1.6 gal; target doubles the batch
	before1, before2 := st1.WeightPerVolume, st2.WeightPerVolume
	scaled, err := ScaleToVolume(f, dec("8.2"))
	require.NoError(t, err)

	assert.True(t, scaled.Stages[0].WeightPerVolume.Equal(before1))
	assert.True(t, scaled.Stages[1].WeightPerVolume.Equal(before2))
	assert.True(t, scaled.TotalVolume().Equal(dec("8.2")), scaled.TotalVolume())
}

func TestScaleToVolume_NonPositiveTarget(t *testing.T) {
	f := twoIngredientFormula()
	for _, target := range []string{"0", "-3"} {
		_, err := ScaleToVolume(f, dec(target))
		require.Error(t, err, target)
		assert.ErrorIs(t, err, domain.ErrNonPositiveTarget, target)
	}
}

func TestScaleToVolume_DegenerateStage(t *testing.T) {
	st := domain.Stage{
		Name: "Slow dissolution",
		// No density anywhere: weight known, volume underivable.
		Ingredients: []domain.Ingredient{{Name: "ESPESANTE", Quantity: dec("1"), Unit: domain.UnitKilogram, Weight: dec("1")}},
	}
	st.Recompute()
	f := &domain.Formula{Stages: []domain.Stage{st}}

	_, err := ScaleToVolume(f, dec("10"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDegenerateStage)

	var ds *DegenerateStageError
	require.True(t, errors.As(err, &ds))
	assert.Equal(t, "Slow dissolution", ds.Stage)
}

func TestScale_LiterTargetConvertsToGallons(t *testing.T) {
	f := twoIngredientFormula()
	scaled, err := Scale(f, domain.ScalingRequest{TargetVolume: dec("18.927058920"), Unit: domain.UnitLiter})
	require.NoError(t, err)
	// 18.92705892 L = 5 gal
	assert.True(t, scaled.TotalVolume().Equal(dec("5")), scaled.TotalVolume())
}

func TestScale_RejectsMassUnit(t *testing.T) {
	f := twoIngredientFormula()
	_, err := Scale(f, domain.ScalingRequest{TargetVolume: dec("5"), Unit: domain.UnitKilogram})
	require.Error(t, err)
}

func TestRoundForDisplay(t *testing.T) {
	assert.Equal(t, "1.234", RoundForDisplay(dec("1.23449"), domain.UnitKilogram).String())
	assert.Equal(t, "2.568", RoundForDisplay(dec("2.5675"), domain.UnitGallon).String())
	assert.Equal(t, "1.2", RoundRatio(dec("1.2")).String())
}
