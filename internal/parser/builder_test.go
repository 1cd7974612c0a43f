package parser

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formulab/internal/domain"
)

func mustBuild(t *testing.T, raw string, opts BuildOptions) *domain.Formula {
	t.Helper()
	f, err := Build(Classify(raw), opts)
	require.NoError(t, err)
	return f
}

func TestBuild_StageTotalsWithDeclaredVolume(t *testing.T) {
	raw := "MEZCLAR 2.5 GL\n" +
		"PIGMENTO A\t2.0\tKG\t1.2\n" +
		"RESINA B\t1.0\tKG\t0.9\n"

	f := mustBuild(t, raw, BuildOptions{})
	require.Len(t, f.Stages, 1)

	st := f.Stages[0]
	assert.Equal(t, "Quick mix", st.Name)
	require.Len(t, st.Ingredients, 2)
	assert.True(t, st.TotalWeight.Equal(decimal.RequireFromString("3.0")), st.TotalWeight)
	// Declared stage volume wins over the density-derived sum.
	assert.True(t, st.TotalVolume.Equal(decimal.RequireFromString("2.5")), st.TotalVolume)
	assert.True(t, st.WeightPerVolume.Equal(decimal.RequireFromString("1.2")), st.WeightPerVolume)
}

func TestBuild_GroupsRowsUnderMostRecentMarker(t *testing.T) {
	raw := "DISPERSAR EN COWLES\n" +
		"SV-0001\tAGUA\t2.0\tKG\n" +
		"rev. juan 12/03\n" +
		"PE-010\tPIGMENTO\t0.5\tKG\n" +
		"MEZCLAR\n" +
		"AV-023\tESPESANTE\t0.1\tKG\n"

	f := mustBuild(t, raw, BuildOptions{})
	require.Len(t, f.Stages, 2)
	assert.Equal(t, "Cowles dispersion", f.Stages[0].Name)
	require.Len(t, f.Stages[0].Ingredients, 2) // noise line between rows is skipped
	assert.Equal(t, "SV-0001", f.Stages[0].Ingredients[0].Code)
	assert.Equal(t, "AGUA", f.Stages[0].Ingredients[0].Name)
	assert.Equal(t, "Quick mix", f.Stages[1].Name)
	require.Len(t, f.Stages[1].Ingredients, 1)
}

func TestBuild_ImplicitLeadingStage(t *testing.T) {
	raw := "AGUA\t2.0\tKG\n" +
		"MEZCLAR\n" +
		"RESINA\t1.0\tKG\t4.0\n"

	f := mustBuild(t, raw, BuildOptions{})
	require.Len(t, f.Stages, 2)
	assert.Equal(t, implicitStageName, f.Stages[0].Name)
	require.Len(t, f.Stages[0].Ingredients, 1)
	require.Len(t, f.Stages[1].Ingredients, 1)
}

func TestBuild_NoStagesFound(t *testing.T) {
	_, err := Build(Classify("AGUA\t2.0\tKG\nRESINA\t1.0\tKG"), BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoStagesFound)
	// Rows without a marker are a different failure than empty input; the
	// message says which one the caller is looking at.
	assert.Contains(t, err.Error(), "2 ingredient rows but no stage markers")

	_, err = Build(Classify("nota suelta\n"), BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoStagesFound)
	assert.Contains(t, err.Error(), "no stage markers or ingredient rows")
}

func TestBuild_UnparsableQuantity(t *testing.T) {
	raw := "MEZCLAR\n" +
		"SV-0001\tAGUA\t2..O\tKG\n"

	_, err := Build(Classify(raw), BuildOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnparsableQuantity)

	var uq *UnparsableQuantityError
	require.True(t, errors.As(err, &uq))
	assert.Equal(t, 2, uq.Line)
	assert.Equal(t, "2..O", uq.Token)
}

func TestBuild_DensityResolution(t *testing.T) {
	raw := "MEZCLAR\n" +
		"PIGMENTO\t2.0\tKG\t4.5\n" + // declared column in band
		"AGUA\t1.0\tKG\n" + // name lookup
		"PASTA GORDA\t120\tKG\t120\t30\n" // inferred from weight/volume pair

	f := mustBuild(t, raw, BuildOptions{})
	ings := f.Stages[0].Ingredients
	require.Len(t, ings, 3)

	assert.True(t, ings[0].Density.Equal(decimal.RequireFromString("4.5")))
	assert.False(t, ings[0].DensityInferred)

	assert.True(t, ings[1].Density.Equal(decimal.RequireFromString("3.78")))
	assert.False(t, ings[1].DensityInferred)

	assert.True(t, ings[2].Density.Equal(decimal.RequireFromString("4")), ings[2].Density)
	assert.True(t, ings[2].DensityInferred)
}

func TestBuild_UnknownDensityLeavesVolumeZero(t *testing.T) {
	raw := "MEZCLAR\nESPESANTE\t0.5\tKG\n"
	f := mustBuild(t, raw, BuildOptions{})
	ing := f.Stages[0].Ingredients[0]
	assert.True(t, ing.Density.IsZero())
	assert.True(t, ing.Volume.IsZero())
	assert.True(t, ing.Weight.Equal(decimal.RequireFromString("0.5")))
}

func TestBuild_EmbeddedAndVolumetricUnits(t *testing.T) {
	raw := "MEZCLAR\n" +
		"SOLVENTE\t2.0GL\t4.0\n" +
		"ADITIVO\t500\tG\n"

	f := mustBuild(t, raw, BuildOptions{})
	ings := f.Stages[0].Ingredients
	require.Len(t, ings, 2)

	assert.Equal(t, domain.UnitGallon, ings[0].Unit)
	assert.True(t, ings[0].Weight.Equal(decimal.RequireFromString("8")), ings[0].Weight)
	assert.True(t, ings[0].Volume.Equal(decimal.RequireFromString("2.0")))

	assert.Equal(t, domain.UnitGram, ings[1].Unit)
	assert.True(t, ings[1].Weight.Equal(decimal.RequireFromString("0.5")))
}

func TestBuild_MetadataAndKey(t *testing.T) {
	raw := "PINTURA ACRILICA SATINADA\tVOLUMEN\tP/G\n" +
		"BLANCO\t21.3335\t4.72\n" +
		"CODIGO\tNOMBRE GENERICO\tCANT\n" +
		"MEZCLAR\n" +
		"AGUA\t2.0\tKG\n" +
		"TOTAL\t\t150\n"

	f := mustBuild(t, raw, BuildOptions{Brand: domain.BrandInfiniti})
	assert.Equal(t, "Pintura Acrilica Satinada", f.Type)
	assert.Equal(t, "Blanco", f.Color)
	assert.True(t, f.DeclaredWPV.Equal(decimal.RequireFromString("4.72")))
	assert.True(t, f.BaseVolume.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "21.3335", f.Metadata["declared_volume"])
	// Single stage with no marker volume inherits the whole-batch declaration.
	assert.True(t, f.Stages[0].DeclaredVolume.Equal(decimal.RequireFromString("21.3335")))
	assert.NotEqual(t, "", f.Key)
}

func TestBuild_OptionOverrides(t *testing.T) {
	raw := "MEZCLAR\nAGUA\t2.0\tKG\n"

	f := mustBuild(t, raw, BuildOptions{
		Brand:         domain.BrandMilan,
		TypeOverride:  "ACRILICA SATINADA",
		ColorOverride: "Gris",
		Presentation:  "CUÑETE",
		Version:       "2.1",
	})
	assert.Equal(t, domain.BrandMilan, f.Brand)
	assert.Equal(t, "ACRILICA SATINADA", f.Type)
	assert.Equal(t, "Gris", f.Color)
	assert.Equal(t, "CUÑETE", f.Presentation)
	assert.Equal(t, "2.1", f.Version)
	assert.Equal(t, "PM-AS-GRIS", f.Key)
}

func TestBuild_KeyOverrideWins(t *testing.T) {
	f := mustBuild(t, "MEZCLAR\nAGUA\t2.0\tKG\n", BuildOptions{KeyOverride: "IN-AS-CUSTOM"})
	assert.Equal(t, "IN-AS-CUSTOM", f.Key)
}
