package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_TabSeparatedSheet(t *testing.T) {
	raw := "CODIGO\tNOMBRE GENERICO\tCANT\tUNIDAD\n" +
		"MEZCLAR\n" +
		"SV-0001\tAGUA\t2.0\tKG\n" +
		"\n" +
		"PE-010\tDISPERSANTE ACRILICO\t0.5\tKG\n"

	lines := Classify(raw)
	require.Len(t, lines, 6) // trailing newline yields a final blank

	assert.Equal(t, LineHeader, lines[0].Kind)
	assert.Equal(t, LineStageMarker, lines[1].Kind)
	assert.Equal(t, "Quick mix", lines[1].StageName)
	assert.Equal(t, LineIngredientRow, lines[2].Kind)
	assert.Equal(t, []string{"SV-0001", "AGUA", "2.0", "KG"}, lines[2].Columns)
	assert.Equal(t, LineBlank, lines[3].Kind)
	assert.Equal(t, LineIngredientRow, lines[4].Kind)
}

func TestClassify_SpaceRunsAndSingleSpaces(t *testing.T) {
	lines := Classify("DISPERSAR EN COWLES\nAGUA    2.0    KG\nBIOCIDA 0.1 KG")
	require.Len(t, lines, 3)
	assert.Equal(t, LineStageMarker, lines[0].Kind)
	assert.Equal(t, "Cowles dispersion", lines[0].StageName)
	assert.Equal(t, LineIngredientRow, lines[1].Kind)
	assert.Equal(t, LineIngredientRow, lines[2].Kind)
}

func TestClassify_StageMarkerWithDeclaredVolume(t *testing.T) {
	lines := Classify("MEZCLAR 2.5 GL")
	require.Len(t, lines, 1)
	assert.Equal(t, LineStageMarker, lines[0].Kind)
	assert.Equal(t, "2.5 GL", lines[0].StageVolume)

	lines = Classify("BASE 2.5GL")
	require.Len(t, lines, 1)
	assert.Equal(t, LineStageMarker, lines[0].Kind)
	assert.Equal(t, "2.5GL", lines[0].StageVolume)
}

func TestClassify_StageKeywordInsideIngredientName(t *testing.T) {
	// "BASE" buried in a name-plus-numbers row is an ingredient, not a marker.
	lines := Classify("WHITE BASE\t5.0\t4.1")
	require.Len(t, lines, 1)
	assert.Equal(t, LineIngredientRow, lines[0].Kind)
}

func TestClassify_MultilingualStageKeywords(t *testing.T) {
	cases := map[string]string{
		"MELANGER LENTEMENT":  "Quick mix",
		"DISOLVER APARTE":     "Slow dissolution",
		"ADD WHILE MIXING":    "Quick mix",
		"DISPERSE AT 2000RPM": "Cowles dispersion",
	}
	for text, want := range cases {
		lines := Classify(text)
		require.Len(t, lines, 1, text)
		assert.Equal(t, LineStageMarker, lines[0].Kind, text)
		assert.Equal(t, want, lines[0].StageName, text)
	}
}

func TestClassify_NoiseStaysUnrecognized(t *testing.T) {
	lines := Classify("???\nrev. juan 12/03\nCODIGO NOMBRE GENERICO CANT")
	require.Len(t, lines, 3)
	assert.Equal(t, LineUnrecognized, lines[0].Kind)
	assert.Equal(t, LineUnrecognized, lines[1].Kind)
	assert.Equal(t, LineHeader, lines[2].Kind)
}

func TestClassify_MetadataZoneDemotion(t *testing.T) {
	raw := "PINTURA VINILICA VOLUMEN P/G\n" +
		"BLANCO CON WHITE ULTRA 21.3335 4.72\n" +
		"CODIGO\tNOMBRE GENERICO\tCANT\n" +
		"MEZCLAR\n" +
		"AGUA\t2.0\tKG"

	lines := Classify(raw)
	require.Len(t, lines, 5)
	// The color row above the header looks like an ingredient but carries a
	// whole-batch volume figure.
	assert.Equal(t, LineUnrecognized, lines[1].Kind)
	assert.Equal(t, LineIngredientRow, lines[4].Kind)
}

func TestClassify_LineNumbersCountBlanks(t *testing.T) {
	lines := Classify("MEZCLAR\n\nAGUA\t2.0\tKG")
	require.Len(t, lines, 3)
	assert.Equal(t, 1, lines[0].Raw.Number)
	assert.Equal(t, 2, lines[1].Raw.Number)
	assert.Equal(t, 3, lines[2].Raw.Number)
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "stage_marker", LineStageMarker.String())
	assert.Equal(t, "ingredient_row", LineIngredientRow.String())
	assert.Equal(t, "unrecognized", LineUnrecognized.String())
}
