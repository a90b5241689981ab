package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// NEEDSRADAR ENGINE TYPES — Regional Technology Needs
// ============================================================================
// Record is a fixed, validated row (not a dimension map): the schema is
// established once by the loader and never re-validated per access.
//
// Dependency: engine imports only golang.org/x/sync besides the stdlib.
// ============================================================================

// Canonical field keys. The loader maps source headers onto these.
const (
	FieldRegion         = "region"
	FieldAxis           = "axis"
	FieldTheme          = "theme"
	FieldNeed           = "need"
	FieldTechCategories = "tech_categories"
	FieldImpact         = "impact"
	FieldInnovation     = "innovation"
)

// TotalLabel names the synthetic radar series summing every in-view region.
const TotalLabel = "Total"

// NotAvailable is displayed for blank fields and unmapped ordinal values.
const NotAvailable = "N/A"

// ============================================================================
// RECORD
// ============================================================================

// Record is one row of the technology-needs dataset.
// Impact and Innovation are ordinals; 0 means the cell was blank.
type Record struct {
	Row            int    `json:"row"`
	Region         string `json:"region"`
	Axis           string `json:"axis"`
	Theme          string `json:"theme"`
	Need           string `json:"need"`
	TechCategories string `json:"techCategories"`
	Impact         int    `json:"impact"`
	Innovation     int    `json:"innovation"`
}

// Field returns a string field by canonical key. Ordinal fields are
// rendered as their integer text ("" when absent).
func (r Record) Field(key string) string {
	switch key {
	case FieldRegion:
		return r.Region
	case FieldAxis:
		return r.Axis
	case FieldTheme:
		return r.Theme
	case FieldNeed:
		return r.Need
	case FieldTechCategories:
		return r.TechCategories
	case FieldImpact:
		return ordinalText(r.Impact)
	case FieldInnovation:
		return ordinalText(r.Innovation)
	}
	return ""
}

func ordinalText(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// ============================================================================
// DATASET
// ============================================================================

// Dataset is the immutable, ordered ground truth loaded once per session.
// Records are only handed out by value, so callers cannot mutate it.
type Dataset struct {
	records []Record
	regions []string
	axes    []string
	source  string
}

// NewDataset validates and wraps records. Every record must carry a
// non-blank region and axis. The input slice is copied.
func NewDataset(records []Record, source string) (*Dataset, error) {
	ds := &Dataset{
		records: make([]Record, len(records)),
		source:  source,
	}
	copy(ds.records, records)

	seenRegion := make(map[string]bool)
	seenAxis := make(map[string]bool)
	for i, r := range ds.records {
		if strings.TrimSpace(r.Region) == "" || strings.TrimSpace(r.Axis) == "" {
			return nil, fmt.Errorf("record %d (row %d): region and axis are required", i, r.Row)
		}
		if !seenRegion[r.Region] {
			seenRegion[r.Region] = true
			ds.regions = append(ds.regions, r.Region)
		}
		if !seenAxis[r.Axis] {
			seenAxis[r.Axis] = true
			ds.axes = append(ds.axes, r.Axis)
		}
	}
	return ds, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns a copy of the record at index i.
func (d *Dataset) Record(i int) Record {
	if i < 0 || i >= len(d.records) {
		return Record{}
	}
	return d.records[i]
}

// Source identifies where the dataset came from (path or content hash).
func (d *Dataset) Source() string { return d.source }

// Regions returns region names in first-seen order.
func (d *Dataset) Regions() []string { return append([]string(nil), d.regions...) }

// Axes returns the full axis vocabulary in first-seen order.
func (d *Dataset) Axes() []string { return append([]string(nil), d.axes...) }

// HasRegion reports whether name is a region present in the dataset.
func (d *Dataset) HasRegion(name string) bool {
	for _, r := range d.regions {
		if r == name {
			return true
		}
	}
	return false
}

// Records returns a copy of every record, in order.
func (d *Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// ============================================================================
// CRITERIA — the session's selection state
// ============================================================================

// Criteria holds the active selection. OR within a dimension, AND across
// dimensions, empty = no restriction. FocusedRegion, when set, overrides
// Regions and narrows the view to exactly that region.
type Criteria struct {
	Regions       []string `json:"regions,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Axes          []string `json:"axes,omitempty"`
	Themes        []string `json:"themes,omitempty"`
	Impact        []string `json:"impact,omitempty"`
	Innovation    []string `json:"innovation,omitempty"`
	FocusedRegion string   `json:"focusedRegion,omitempty"`
}

// IsEmpty returns true if no restriction is active.
func (c Criteria) IsEmpty() bool {
	return c.FocusedRegion == "" &&
		len(c.Regions) == 0 &&
		len(c.Categories) == 0 &&
		len(c.Axes) == 0 &&
		len(c.Themes) == 0 &&
		len(c.Impact) == 0 &&
		len(c.Innovation) == 0
}

// Clone returns a deep copy.
func (c Criteria) Clone() Criteria {
	return Criteria{
		Regions:       cloneStrings(c.Regions),
		Categories:    cloneStrings(c.Categories),
		Axes:          cloneStrings(c.Axes),
		Themes:        cloneStrings(c.Themes),
		Impact:        cloneStrings(c.Impact),
		Innovation:    cloneStrings(c.Innovation),
		FocusedRegion: c.FocusedRegion,
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

// ============================================================================
// AGGREGATES
// ============================================================================

// RadarSeries is one closed polygon: counts aligned with RadarAggregate.Axes.
type RadarSeries struct {
	Region  string `json:"region"`
	Counts  []int  `json:"counts"`
	IsTotal bool   `json:"isTotal,omitempty"`
}

// RadarRow is a flattened (region, axis, count) triple.
type RadarRow struct {
	Region string `json:"region"`
	Axis   string `json:"axis"`
	Count  int    `json:"count"`
}

// RadarAggregate is the zero-filled region × axis frequency table.
// Series holds in-view regions in first-seen order followed by Total.
type RadarAggregate struct {
	Axes   []string      `json:"axes"`
	Series []RadarSeries `json:"series"`
}

// Rows flattens the aggregate into (region, axis, count) rows.
func (a RadarAggregate) Rows() []RadarRow {
	rows := make([]RadarRow, 0, len(a.Series)*len(a.Axes))
	for _, s := range a.Series {
		for j, axis := range a.Axes {
			rows = append(rows, RadarRow{Region: s.Region, Axis: axis, Count: s.Counts[j]})
		}
	}
	return rows
}

// Count returns the count for (region, axis) and whether the pair exists.
func (a RadarAggregate) Count(region, axis string) (int, bool) {
	for _, s := range a.Series {
		if s.Region != region {
			continue
		}
		for j, ax := range a.Axes {
			if ax == axis {
				return s.Counts[j], true
			}
		}
	}
	return 0, false
}

// Total returns the synthetic Total series.
func (a RadarAggregate) Total() RadarSeries {
	for _, s := range a.Series {
		if s.IsTotal {
			return s
		}
	}
	return RadarSeries{Region: TotalLabel, Counts: make([]int, len(a.Axes)), IsTotal: true}
}

// HierarchyNode is one node of the region → axis → theme count tree.
// ID is the "/"-joined path of raw names and is the grouping identity;
// Label is a wrapped display copy of Name.
type HierarchyNode struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Label    string           `json:"label"`
	Depth    int              `json:"depth"`
	Count    int              `json:"count"`
	Children []*HierarchyNode `json:"children,omitempty"`
}

// Child returns the direct child with the given name, or nil.
func (n *HierarchyNode) Child(name string) *HierarchyNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// CategoryCount is one bar of the ranked category chart. Tick is a
// truncated display label; Category stays the lookup key.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Tick     string `json:"tick"`
}

// CategoryCounts is ordered by descending count.
type CategoryCounts []CategoryCount

// Get returns the count for an untruncated category label.
func (c CategoryCounts) Get(category string) int {
	for _, cc := range c {
		if cc.Category == category {
			return cc.Count
		}
	}
	return 0
}

// Sum returns the total number of category occurrences.
func (c CategoryCounts) Sum() int {
	total := 0
	for _, cc := range c {
		total += cc.Count
	}
	return total
}

// ============================================================================
// SNAPSHOT — one complete, consistent render pass
// ============================================================================

// Snapshot is everything the render layer needs after one derivation.
// It is built whole and never partially updated.
type Snapshot struct {
	Criteria   Criteria       `json:"criteria"`
	Records    int            `json:"records"`
	Empty      bool           `json:"empty"`
	Summary    string         `json:"summary"`
	Radar      RadarAggregate `json:"radar"`
	Hierarchy  *HierarchyNode `json:"hierarchy"`
	Categories CategoryCounts `json:"categories"`

	RadarChart     *ChartConfig `json:"radarChart"`
	HierarchyChart *ChartConfig `json:"hierarchyChart"`
	CategoryChart  *ChartConfig `json:"categoryChart"`
	Table          *TableData   `json:"table"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart, independent of any front end.
type ChartConfig struct {
	ChartType  string        `json:"chartType"` // "radar", "sunburst", "bar"
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series,omitempty"`
	Nodes      []ChartNode   `json:"nodes,omitempty"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
	Dash  string       `json:"dash,omitempty"`
}

// ChartPoint is a single data point. Key is the value-lookup identity;
// Label is what is drawn on the tick.
type ChartPoint struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartNode is a flattened hierarchy node (sunburst / treemap).
type ChartNode struct {
	ID     string  `json:"id"`
	Parent string  `json:"parent"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Color  string  `json:"color,omitempty"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number", "ordinal"
	Align string `json:"align"` // "left", "center", "right"
}

// Summary provides totals for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values"`
}
