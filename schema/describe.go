package schema

import (
	"time"

	"github.com/spektr-org/needsradar/engine"
)

// ============================================================================
// DESCRIBE — filter vocabularies from a loaded dataset
// ============================================================================
// Pipeline:
//   1. Region, axis, theme: distinct non-blank raw values
//   2. Categories: exploded with the configured delimiter
//   3. Impact / innovation: the ordinal scale's labels, highest first
//   4. Hierarchy parents: theme → axis → region
//
// Regions are collated alphabetically for the selector; axes keep dataset
// order because that is the radar's spoke order.
// ============================================================================

// DescribeOptions controls Describe.
type DescribeOptions struct {
	Name      string
	Scale     engine.OrdinalScale
	Delimiter string
	Regions   []string // extra region names (e.g. map overlay) merged into the selector
}

// DefaultDescribeOptions returns sensible defaults.
func DefaultDescribeOptions() DescribeOptions {
	return DescribeOptions{
		Name:      "Necesidades tecnológicas",
		Scale:     engine.DefaultOrdinalScale(),
		Delimiter: engine.DefaultDelimiter,
	}
}

// Describe builds the filter vocabulary of ds.
func Describe(ds *engine.Dataset, opts ...DescribeOptions) *Config {
	opt := DefaultDescribeOptions()
	if len(opts) > 0 {
		opt = opts[0]
		if opt.Scale.IsZero() {
			opt.Scale = engine.DefaultOrdinalScale()
		}
		if opt.Delimiter == "" {
			opt.Delimiter = engine.DefaultDelimiter
		}
	}

	var categories []string
	for i := 0; i < ds.Len(); i++ {
		categories = append(categories, engine.SplitCategories(ds.Record(i).TechCategories, opt.Delimiter)...)
	}

	region := DefaultDimension(engine.FieldRegion, "Región", RegionOptions(ds, opt.Regions))
	region.Description = "Región del país; un clic en cualquier gráfico enfoca la región"

	axis := DefaultDimension(engine.FieldAxis, "Eje", ds.Axes())
	axis.Parent = engine.FieldRegion
	axis.Description = "Eje traccionante o dimensión priorizada"

	theme := DefaultDimension(engine.FieldTheme, "Temática", UniqueSorted(engine.UniqueValues(ds, engine.FieldTheme)))
	theme.Parent = engine.FieldAxis

	cats := DefaultDimension(engine.FieldTechCategories, "Categorías", UniqueSorted(categories))
	cats.Match = MatchSubstring
	cats.Description = "Coincide si la categoría aparece dentro del texto de la celda"

	impact := DefaultDimension(engine.FieldImpact, "Impacto", opt.Scale.Labels())
	impact.Match = MatchOrdinal

	innovation := DefaultDimension(engine.FieldInnovation, "Innovación", opt.Scale.Labels())
	innovation.Match = MatchOrdinal

	name := opt.Name
	if name == "" {
		name = DefaultDescribeOptions().Name
	}

	return &Config{
		Name:        name,
		Source:      ds.Source(),
		Records:     ds.Len(),
		Dimensions:  []DimensionMeta{region, axis, theme, cats, impact, innovation},
		DescribedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// RegionOptions lists the selector's regions: every dataset region plus any
// extra names (map regions without data), collated alphabetically.
func RegionOptions(ds *engine.Dataset, extra []string) []string {
	return UniqueSorted(ds.Regions(), extra)
}
