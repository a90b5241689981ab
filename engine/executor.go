package engine

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ============================================================================
// EXECUTOR — One full derivation pass
// ============================================================================
// Entry point: Derive(ctx, dataset, criteria, opts...)
//
// Pipeline:
//   1. Apply criteria → SubView
//   2. Radar, Hierarchy, Categories, and the detail table run concurrently
//      over the same read-only view
//   3. Chart configs + summary
//   4. Return a complete Snapshot
//
// Nothing is published until every part is done, so callers never see a
// mix of old and new aggregates.
// ============================================================================

// Chart and table titles.
const (
	RadarTitle     = "Frecuencia por eje priorizado"
	HierarchyTitle = "Región → Eje → Temática"
	CategoryTitle  = "Categorías tecnológicas más frecuentes"
	DetailTitle    = "Detalle de datos"
)

// Derive filters the dataset with c and builds every aggregate.
func Derive(ctx context.Context, ds *Dataset, c Criteria, opts ...Option) (*Snapshot, error) {
	cfg := applyOptions(opts)
	criteria := c.Clone()

	view := Apply(ds, criteria, cfg.Scale)

	var (
		radar     RadarAggregate
		hierarchy *HierarchyNode
		cats      CategoryCounts
		table     *TableData
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		radar = Radar(view, ds)
		return gctx.Err()
	})
	g.Go(func() error {
		hierarchy = Hierarchy(view, cfg.WrapWidth, cfg.LineBreak)
		return gctx.Err()
	})
	g.Go(func() error {
		cats = Categories(view, cfg.Delimiter, cfg.TickLen)
		return gctx.Err()
	})
	g.Go(func() error {
		table = BuildDetailTable(view, cfg.Scale, DetailTitle)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Snapshot{
		Criteria:       criteria,
		Records:        view.Len(),
		Empty:          view.Len() == 0,
		Summary:        BuildSummary(criteria, view.Len()),
		Radar:          radar,
		Hierarchy:      hierarchy,
		Categories:     cats,
		RadarChart:     BuildRadarChart(radar, RadarTitle),
		HierarchyChart: BuildHierarchyChart(hierarchy, HierarchyTitle),
		CategoryChart:  BuildCategoryChart(cats, CategoryTitle),
		Table:          table,
	}, nil
}
