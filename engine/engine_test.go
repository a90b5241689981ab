package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FIXTURES
// ============================================================================

func scenarioDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := NewDataset([]Record{
		{Row: 2, Region: "Maule", Axis: "A", TechCategories: "IoT, AI"},
		{Row: 3, Region: "Maule", Axis: "B", TechCategories: "IoT"},
		{Row: 4, Region: "Coquimbo", Axis: "A", TechCategories: ""},
	}, "scenario")
	require.NoError(t, err)
	return ds
}

var (
	fxRegions    = []string{"Maule", "Coquimbo", "Ñuble", "Biobío"}
	fxAxes       = []string{"Agua", "Energía", "Salud", "Educación", "Minería"}
	fxThemes     = []string{"Riego", "Sequía", "Redes", "Telemedicina", ""}
	fxCategories = []string{"IoT", "AI", "AI Ethics", "Big Data", "Robótica", "Drones"}
	fxOrdinals   = []int{0, 1, 3, 4, 5}
)

func randomDataset(t *testing.T, seed int64, n int) *Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	records := make([]Record, n)
	for i := range records {
		var cats []string
		for k := rng.Intn(4); k > 0; k-- {
			cats = append(cats, fxCategories[rng.Intn(len(fxCategories))])
		}
		raw := ""
		for j, c := range cats {
			if j > 0 {
				raw += ", "
			}
			raw += c
		}
		records[i] = Record{
			Row:            i + 2,
			Region:         fxRegions[rng.Intn(len(fxRegions))],
			Axis:           fxAxes[rng.Intn(len(fxAxes))],
			Theme:          fxThemes[rng.Intn(len(fxThemes))],
			Need:           fmt.Sprintf("need %d", i),
			TechCategories: raw,
			Impact:         fxOrdinals[rng.Intn(len(fxOrdinals))],
			Innovation:     fxOrdinals[rng.Intn(len(fxOrdinals))],
		}
	}
	ds, err := NewDataset(records, "random")
	require.NoError(t, err)
	return ds
}

func randomCriteria(rng *rand.Rand) Criteria {
	pick := func(pool []string) []string {
		var out []string
		for _, p := range pool {
			if p != "" && rng.Intn(3) == 0 {
				out = append(out, p)
			}
		}
		return out
	}
	c := Criteria{
		Regions:    pick(fxRegions),
		Categories: pick(fxCategories),
		Axes:       pick(fxAxes),
		Themes:     pick(fxThemes),
		Impact:     pick([]string{"Alto", "Medio", "Bajo"}),
		Innovation: pick([]string{"Alto", "Medio", "Bajo"}),
	}
	if rng.Intn(4) == 0 {
		c.FocusedRegion = fxRegions[rng.Intn(len(fxRegions))]
	}
	return c
}

// ============================================================================
// DATASET
// ============================================================================

func TestNewDatasetRejectsBlankRegionOrAxis(t *testing.T) {
	_, err := NewDataset([]Record{{Region: "Maule", Axis: ""}}, "x")
	assert.Error(t, err)

	_, err = NewDataset([]Record{{Region: "  ", Axis: "A"}}, "x")
	assert.Error(t, err)
}

func TestDatasetVocabulariesFirstSeenOrder(t *testing.T) {
	ds := scenarioDataset(t)
	assert.Equal(t, []string{"Maule", "Coquimbo"}, ds.Regions())
	assert.Equal(t, []string{"A", "B"}, ds.Axes())
	assert.True(t, ds.HasRegion("Coquimbo"))
	assert.False(t, ds.HasRegion("coquimbo"))
}

func TestDatasetIsNotMutableThroughAccessors(t *testing.T) {
	ds := scenarioDataset(t)

	recs := ds.Records()
	recs[0].Region = "Changed"
	axes := ds.Axes()
	axes[0] = "Z"

	assert.Equal(t, "Maule", ds.Record(0).Region)
	assert.Equal(t, "A", ds.Axes()[0])
}

// ============================================================================
// SCENARIOS
// ============================================================================

func TestScenarioA_UnfilteredRadarZeroFill(t *testing.T) {
	ds := scenarioDataset(t)
	radar := Radar(Apply(ds, Criteria{}, DefaultOrdinalScale()), ds)

	maule, ok := radar.Count("Maule", "B")
	require.True(t, ok)
	coquimbo, ok := radar.Count("Coquimbo", "B")
	require.True(t, ok, "zero-filled pair must exist")
	total, ok := radar.Count(TotalLabel, "B")
	require.True(t, ok)

	assert.Equal(t, 1, maule)
	assert.Equal(t, 0, coquimbo)
	assert.Equal(t, 1, total)

	// Ordering: regions first-seen, Total last.
	var names []string
	for _, s := range radar.Series {
		names = append(names, s.Region)
	}
	assert.Equal(t, []string{"Maule", "Coquimbo", TotalLabel}, names)
}

func TestScenarioB_CategoryFilterAndTally(t *testing.T) {
	ds := scenarioDataset(t)
	view := Apply(ds, Criteria{Categories: []string{"AI"}}, DefaultOrdinalScale())

	require.Equal(t, 1, view.Len())
	assert.Equal(t, 2, view.Record(0).Row)

	cats := Categories(view, ",", 0)
	assert.Equal(t, 1, cats.Get("IoT"))
	assert.Equal(t, 1, cats.Get("AI"))
	assert.Len(t, cats, 2)
}

func TestScenarioE_OrdinalFilterIgnoresUnmappedValues(t *testing.T) {
	ds, err := NewDataset([]Record{
		{Region: "Maule", Axis: "A", Impact: 5},
		{Region: "Maule", Axis: "A", Impact: 4},
		{Region: "Maule", Axis: "A", Impact: 3},
		{Region: "Maule", Axis: "A"},
	}, "e")
	require.NoError(t, err)

	scale := NewOrdinalScale(map[int]string{5: "Alto"})
	view := Apply(ds, Criteria{Impact: []string{"Alto"}}, scale)

	require.Equal(t, 1, view.Len())
	assert.Equal(t, 5, view.Record(0).Impact)

	assert.Equal(t, NotAvailable, scale.Label(4))
	table := BuildDetailTable(ds, scale, "t")
	assert.Equal(t, "Alto", table.Rows[0][5])
	assert.Equal(t, NotAvailable, table.Rows[1][5])
	assert.Equal(t, NotAvailable, table.Rows[3][5])
}

// ============================================================================
// FILTERS
// ============================================================================

func TestApplyEmptyCriteriaReturnsDataset(t *testing.T) {
	ds := scenarioDataset(t)
	view := Apply(ds, Criteria{}, DefaultOrdinalScale())
	assert.Equal(t, ds.Len(), view.Len())
}

func TestApplyFocusOverridesRegionSelection(t *testing.T) {
	ds := scenarioDataset(t)
	view := Apply(ds, Criteria{Regions: []string{"Maule"}, FocusedRegion: "Coquimbo"}, DefaultOrdinalScale())
	require.Equal(t, 1, view.Len())
	assert.Equal(t, "Coquimbo", view.Record(0).Region)
}

func TestApplyCategorySubstringMatch(t *testing.T) {
	ds, err := NewDataset([]Record{
		{Region: "R", Axis: "A", TechCategories: "AI Ethics"},
		{Region: "R", Axis: "A", TechCategories: "Drones"},
		{Region: "R", Axis: "A", TechCategories: "ai"},
		{Region: "R", Axis: "A", TechCategories: "   "},
	}, "x")
	require.NoError(t, err)

	view := Apply(ds, Criteria{Categories: []string{"AI"}}, DefaultOrdinalScale())
	require.Equal(t, 1, view.Len(), "case-sensitive substring; blank cells never match")
	assert.Equal(t, "AI Ethics", view.Record(0).TechCategories)
}

func TestApplyBlankCategoriesAreNoRestriction(t *testing.T) {
	ds, err := NewDataset([]Record{
		{Region: "R", Axis: "A", TechCategories: "IoT"},
		{Region: "R", Axis: "A", TechCategories: "Drones"},
	}, "x")
	require.NoError(t, err)

	view := Apply(ds, Criteria{Categories: []string{""}}, DefaultOrdinalScale())
	assert.Equal(t, 2, view.Len())

	view = Apply(ds, Criteria{Categories: []string{" ", "IoT"}}, DefaultOrdinalScale())
	require.Equal(t, 1, view.Len())
	assert.Equal(t, "IoT", view.Record(0).TechCategories)
}

func TestApplyBlankFieldsNeverMatchMembership(t *testing.T) {
	ds, err := NewDataset([]Record{
		{Region: "R", Axis: "A", Theme: ""},
		{Region: "R", Axis: "A", Theme: "Riego"},
	}, "x")
	require.NoError(t, err)

	view := Apply(ds, Criteria{Themes: []string{"", "Riego"}}, DefaultOrdinalScale())
	require.Equal(t, 1, view.Len())
	assert.Equal(t, "Riego", view.Record(0).Theme)
}

func TestApplyUnknownOrdinalLabelsMatchNothing(t *testing.T) {
	ds := randomDataset(t, 7, 50)
	view := Apply(ds, Criteria{Innovation: []string{"Altísimo"}}, DefaultOrdinalScale())
	assert.Equal(t, 0, view.Len())
}

func TestApplyPredicatesCommute(t *testing.T) {
	ds := randomDataset(t, 11, 200)
	scale := DefaultOrdinalScale()
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 50; i++ {
		c := randomCriteria(rng)
		all := Collect(Apply(ds, c, scale))

		// Filtering dimension by dimension, in reverse, yields the same rows.
		steps := []Criteria{
			{Innovation: c.Innovation},
			{Impact: c.Impact},
			{Themes: c.Themes},
			{Axes: c.Axes},
			{Categories: c.Categories},
			{Regions: c.Regions, FocusedRegion: c.FocusedRegion},
		}
		var current []Record
		for j, s := range steps {
			var next *Dataset
			var err error
			if j == 0 {
				next = ds
			} else {
				next, err = NewDataset(current, "step")
				require.NoError(t, err)
			}
			current = Collect(Apply(next, s, scale))
		}
		assert.Equal(t, len(all), len(current), "criteria %+v", c)
		for k := range all {
			assert.Equal(t, all[k].Row, current[k].Row)
		}
	}
}

// ============================================================================
// AGGREGATE PROPERTIES
// ============================================================================

func TestRadarTotalEqualsSumOfRegions(t *testing.T) {
	ds := randomDataset(t, 42, 300)
	scale := DefaultOrdinalScale()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 100; i++ {
		c := randomCriteria(rng)
		radar := Radar(Apply(ds, c, scale), ds)
		total := radar.Total()

		require.Equal(t, ds.Axes(), radar.Axes)
		for j := range radar.Axes {
			sum := 0
			for _, s := range radar.Series {
				if !s.IsTotal {
					sum += s.Counts[j]
				}
			}
			assert.Equal(t, sum, total.Counts[j])
		}
	}
}

func TestRadarZeroFillCompleteness(t *testing.T) {
	ds := randomDataset(t, 5, 150)
	scale := DefaultOrdinalScale()
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 100; i++ {
		c := randomCriteria(rng)
		view := Apply(ds, c, scale)
		radar := Radar(view, ds)

		for _, region := range UniqueValues(view, FieldRegion) {
			for _, axis := range ds.Axes() {
				n, ok := radar.Count(region, axis)
				assert.True(t, ok, "missing pair %s/%s", region, axis)
				assert.GreaterOrEqual(t, n, 0)
			}
		}
		assert.Len(t, radar.Rows(), len(radar.Series)*len(ds.Axes()))
	}
}

func TestRadarEmptyViewKeepsZeroTotal(t *testing.T) {
	ds := scenarioDataset(t)
	radar := Radar(Apply(ds, Criteria{Regions: []string{"Nowhere"}}, DefaultOrdinalScale()), ds)
	require.Len(t, radar.Series, 1)
	assert.True(t, radar.Series[0].IsTotal)
	assert.Equal(t, []int{0, 0}, radar.Series[0].Counts)
}

func TestCategorySumBoundsNonBlankRecords(t *testing.T) {
	ds := randomDataset(t, 21, 250)
	scale := DefaultOrdinalScale()
	rng := rand.New(rand.NewSource(2))

	for i := 0; i < 100; i++ {
		view := Apply(ds, randomCriteria(rng), scale)
		filled, single := 0, true
		for k := 0; k < view.Len(); k++ {
			parts := SplitCategories(view.Record(k).TechCategories, ",")
			if len(parts) > 0 {
				filled++
			}
			if len(parts) > 1 {
				single = false
			}
		}
		sum := Categories(view, ",", 0).Sum()
		assert.GreaterOrEqual(t, sum, filled)
		if single {
			assert.Equal(t, filled, sum)
		}
	}
}

func TestCategoriesRankedWithStableTies(t *testing.T) {
	ds, err := NewDataset([]Record{
		{Region: "R", Axis: "A", TechCategories: "Drones, IoT"},
		{Region: "R", Axis: "A", TechCategories: "IoT,  , Big Data"},
		{Region: "R", Axis: "A", TechCategories: "Big Data"},
	}, "x")
	require.NoError(t, err)

	cats := Categories(ds, ",", 0)
	require.Len(t, cats, 3)
	assert.Equal(t, "IoT", cats[0].Category)
	assert.Equal(t, "Big Data", cats[1].Category)
	assert.Equal(t, "Drones", cats[2].Category)
}

func TestCategoryTicksNeverMergeBuckets(t *testing.T) {
	ds, err := NewDataset([]Record{
		{Region: "R", Axis: "A", TechCategories: "Inteligencia artificial aplicada"},
		{Region: "R", Axis: "A", TechCategories: "Inteligencia artificial generativa"},
	}, "x")
	require.NoError(t, err)

	cats := Categories(ds, ",", 12)
	require.Len(t, cats, 2)
	assert.Equal(t, cats[0].Tick, cats[1].Tick)
	assert.NotEqual(t, cats[0].Category, cats[1].Category)

	chart := BuildCategoryChart(cats, "c")
	keys := []string{chart.Series[0].Data[0].Key, chart.Series[0].Data[1].Key}
	assert.ElementsMatch(t, []string{"Inteligencia artificial aplicada", "Inteligencia artificial generativa"}, keys)
}

func TestHierarchyCountsAndWrapping(t *testing.T) {
	ds, err := NewDataset([]Record{
		{Region: "Maule", Axis: "Agua y cambio climático", Theme: "Riego tecnificado"},
		{Region: "Maule", Axis: "Agua y cambio climático", Theme: "Riego tecnificado"},
		{Region: "Maule", Axis: "Agua y cambio climático", Theme: ""},
		{Region: "Coquimbo", Axis: "Energía", Theme: "Solar"},
	}, "x")
	require.NoError(t, err)

	root := Hierarchy(ds, 10, "<br>")
	assert.Equal(t, 4, root.Count)

	maule := root.Child("Maule")
	require.NotNil(t, maule)
	assert.Equal(t, 3, maule.Count)

	axis := maule.Child("Agua y cambio climático")
	require.NotNil(t, axis)
	assert.Equal(t, "Maule/Agua y cambio climático", axis.ID)
	assert.Contains(t, axis.Label, "<br>")
	assert.Equal(t, 2, axis.Child("Riego tecnificado").Count)
	assert.Equal(t, 1, axis.Child(NotAvailable).Count)

	// No zero-filled nodes.
	assert.Nil(t, root.Child("Coquimbo").Child("Agua y cambio climático"))

	leaves := 0
	root.Walk(func(n *HierarchyNode) {
		if len(n.Children) == 0 {
			leaves += n.Count
		}
	})
	assert.Equal(t, ds.Len(), leaves)
}

// ============================================================================
// DERIVE
// ============================================================================

func TestDeriveIsIdempotent(t *testing.T) {
	ds := randomDataset(t, 99, 200)
	rng := rand.New(rand.NewSource(4))

	for i := 0; i < 20; i++ {
		c := randomCriteria(rng)
		a, err := Derive(context.Background(), ds, c)
		require.NoError(t, err)
		b, err := Derive(context.Background(), ds, c)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestDeriveDoesNotMutateDataset(t *testing.T) {
	ds := randomDataset(t, 8, 60)
	before := ds.Records()

	_, err := Derive(context.Background(), ds, Criteria{Categories: []string{"IoT"}})
	require.NoError(t, err)

	assert.Equal(t, before, ds.Records())
}

func TestDeriveEmptyState(t *testing.T) {
	ds := scenarioDataset(t)
	snap, err := Derive(context.Background(), ds, Criteria{Axes: []string{"Z"}})
	require.NoError(t, err)

	assert.True(t, snap.Empty)
	assert.Equal(t, 0, snap.Records)
	assert.Contains(t, snap.Summary, "No hay datos")
	assert.Empty(t, snap.Table.Rows)
	assert.Empty(t, snap.Categories)
}

func TestDeriveHonorsCanceledContext(t *testing.T) {
	ds := scenarioDataset(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Derive(ctx, ds, Criteria{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeriveCopiesCriteria(t *testing.T) {
	ds := scenarioDataset(t)
	c := Criteria{Regions: []string{"Maule"}}
	snap, err := Derive(context.Background(), ds, c)
	require.NoError(t, err)

	c.Regions[0] = "Coquimbo"
	assert.Equal(t, "Maule", snap.Criteria.Regions[0])
}

// ============================================================================
// LABELS
// ============================================================================

func TestWrapLabel(t *testing.T) {
	assert.Equal(t, "short", WrapLabel("short", 10, "\n"))
	assert.Equal(t, "Agua y\ncambio\nclimático", WrapLabel("Agua y cambio climático", 10, "\n"))
	assert.Equal(t, "Supercalifragilístico", WrapLabel("Supercalifragilístico", 5, "\n"))
	assert.Equal(t, "a b c", WrapLabel("a b c", 0, "\n"))
}

func TestTruncateLabel(t *testing.T) {
	assert.Equal(t, "Robótica", TruncateLabel("Robótica", 10))
	assert.Equal(t, "Robó…", TruncateLabel("Robótica", 5))
	assert.Equal(t, "Robótica", TruncateLabel("Robótica", 0))
}

func TestOrdinalScaleLabelsOrdered(t *testing.T) {
	assert.Equal(t, []string{"Alto", "Medio", "Bajo"}, DefaultOrdinalScale().Labels())
	v, ok := DefaultOrdinalScale().Value("Medio")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestOrdinalScaleString(t *testing.T) {
	assert.Equal(t, "5=Alto,3=Medio,1=Bajo", DefaultOrdinalScale().String())
	assert.Equal(t, DefaultOrdinalScale().String(),
		NewOrdinalScale(map[int]string{1: "Bajo", 3: "Medio", 5: "Alto"}).String())
	assert.Empty(t, OrdinalScale{}.String())
}
