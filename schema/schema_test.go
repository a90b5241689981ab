package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/needsradar/engine"
)

// ============================================================================
// NAME TESTS
// ============================================================================

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Región", "region"},
		{"  Región  de   Ñuble ", "region de nuble"},
		{"BIOBÍO", "biobio"},
		{"Temática específica", "tematica especifica"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, NormalizeName(tt.input), "input %q", tt.input)
	}
}

func TestUniqueSortedCollatesSpanish(t *testing.T) {
	got := UniqueSorted([]string{"Ñuble", "Maule", "Zona Austral", " ", "maule"}, []string{"Maule", "Antofagasta"})
	require.Len(t, got, 5)
	assert.Equal(t, "Antofagasta", got[0])
	assert.Equal(t, "Zona Austral", got[4])
	assert.Less(t, indexOf(got, "Maule"), indexOf(got, "Ñuble"))
	assert.Less(t, indexOf(got, "Ñuble"), indexOf(got, "Zona Austral"))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

// ============================================================================
// COLUMN TESTS
// ============================================================================

func TestMatchColumnsSpanishHeaders(t *testing.T) {
	headers := TrimHeaders([]string{
		" Región ",
		"Ejes traccionantes/dimensiones priorizadas",
		"Temática específica",
		"Necesidad",
		"Categorías tecnológicas",
		"Impacto",
		"Innovación",
		"Observaciones",
	})

	cols, missing := MatchColumns(headers)
	assert.Empty(t, missing)
	assert.Equal(t, 0, cols[engine.FieldRegion])
	assert.Equal(t, 1, cols[engine.FieldAxis])
	assert.Equal(t, 6, cols[engine.FieldInnovation])
	assert.Len(t, cols, len(RequiredFields))
}

func TestMatchColumnsReportsMissing(t *testing.T) {
	_, missing := MatchColumns([]string{"Region", "Eje", "Necesidad"})
	assert.Equal(t, []string{
		"Temática específica",
		"Categorías tecnológicas",
		"Impacto",
		"Innovación",
	}, missing)
}

func TestMatchColumnsFirstHeaderWins(t *testing.T) {
	cols, _ := MatchColumns([]string{"Región", "Region"})
	assert.Equal(t, 0, cols[engine.FieldRegion])
}

func TestCanonicalKeyAcceptsCanonicalNames(t *testing.T) {
	assert.Equal(t, engine.FieldTechCategories, CanonicalKey("tech_categories"))
	assert.Equal(t, engine.FieldTechCategories, CanonicalKey("Tech Categories"))
	assert.Equal(t, "", CanonicalKey("Observaciones"))
}

func TestColumnMapCell(t *testing.T) {
	cols := ColumnMap{engine.FieldRegion: 0, engine.FieldNeed: 3}
	row := []string{" Maule ", "A"}
	assert.Equal(t, "Maule", cols.Cell(row, engine.FieldRegion))
	assert.Equal(t, "", cols.Cell(row, engine.FieldNeed))
	assert.Equal(t, "", cols.Cell(row, engine.FieldTheme))
}

// ============================================================================
// DESCRIBE TESTS
// ============================================================================

func describeFixture(t *testing.T) *engine.Dataset {
	t.Helper()
	ds, err := engine.NewDataset([]engine.Record{
		{Region: "Ñuble", Axis: "Agua", Theme: "Riego", TechCategories: "IoT, Drones"},
		{Region: "Maule", Axis: "Energía", Theme: "", TechCategories: "AI"},
		{Region: "Maule", Axis: "Agua", Theme: "Sequía", TechCategories: ""},
	}, "fixture.xlsx")
	require.NoError(t, err)
	return ds
}

func TestDescribe(t *testing.T) {
	ds := describeFixture(t)
	config := Describe(ds)

	assert.Equal(t, "fixture.xlsx", config.Source)
	assert.Equal(t, 3, config.Records)
	assert.Equal(t, []string{
		engine.FieldRegion, engine.FieldAxis, engine.FieldTheme,
		engine.FieldTechCategories, engine.FieldImpact, engine.FieldInnovation,
	}, config.DimensionKeys())

	assert.Equal(t, []string{"Maule", "Ñuble"}, config.Values(engine.FieldRegion))
	assert.Equal(t, []string{"Agua", "Energía"}, config.Values(engine.FieldAxis))
	assert.Equal(t, []string{"Riego", "Sequía"}, config.Values(engine.FieldTheme))
	assert.Equal(t, []string{"AI", "Drones", "IoT"}, config.Values(engine.FieldTechCategories))
	assert.Equal(t, []string{"Alto", "Medio", "Bajo"}, config.Values(engine.FieldImpact))

	cats, ok := config.Dimension(engine.FieldTechCategories)
	require.True(t, ok)
	assert.Equal(t, MatchSubstring, cats.Match)

	theme, _ := config.Dimension(engine.FieldTheme)
	assert.Equal(t, engine.FieldAxis, theme.Parent)
}

func TestDescribeMergesOverlayRegions(t *testing.T) {
	ds := describeFixture(t)
	opts := DefaultDescribeOptions()
	opts.Regions = []string{"Arica y Parinacota", "Maule"}

	config := Describe(ds, opts)
	assert.Equal(t, []string{"Arica y Parinacota", "Maule", "Ñuble"}, config.Values(engine.FieldRegion))
}

func TestDescribeCustomScale(t *testing.T) {
	ds := describeFixture(t)
	opts := DescribeOptions{Scale: engine.NewOrdinalScale(map[int]string{2: "Sí", 1: "No"})}

	config := Describe(ds, opts)
	assert.Equal(t, []string{"Sí", "No"}, config.Values(engine.FieldInnovation))
	assert.NotEmpty(t, config.Name)
}
