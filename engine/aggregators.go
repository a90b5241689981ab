package engine

import (
	"sort"
	"strings"
)

// ============================================================================
// AGGREGATORS — Radar, Hierarchy, and Category counts via RecordView
// ============================================================================
// All three are pure functions of a filtered view. None of them touches the
// dataset beyond reading it; grouping keys are always the raw field values.
// ============================================================================

// DefaultDelimiter separates categories inside the tech_categories cell.
const DefaultDelimiter = ","

// ============================================================================
// RADAR
// ============================================================================

// Radar builds the zero-filled region × axis frequency table.
//
// Axes come from the unfiltered dataset so that an axis with no matches
// still appears as a zero spoke. Regions come from the view in first-seen
// order. Total is appended last and sums every region per axis.
func Radar(view RecordView, ds *Dataset) RadarAggregate {
	axes := ds.Axes()
	axisIndex := make(map[string]int, len(axes))
	for i, a := range axes {
		axisIndex[a] = i
	}

	// 1. Group by (region, axis), only pairs that occur.
	counts := make(map[string][]int)
	var order []string
	for i := 0; i < view.Len(); i++ {
		r := view.Record(i)
		j, ok := axisIndex[r.Axis]
		if !ok {
			continue
		}
		row, exists := counts[r.Region]
		if !exists {
			// 2+3. Cross-product row, zero-filled on creation.
			row = make([]int, len(axes))
			counts[r.Region] = row
			order = append(order, r.Region)
		}
		row[j]++
	}

	// 4. Total over the same axis vocabulary.
	series := make([]RadarSeries, 0, len(order)+1)
	total := make([]int, len(axes))
	for _, region := range order {
		row := counts[region]
		for j, c := range row {
			total[j] += c
		}
		series = append(series, RadarSeries{Region: region, Counts: row})
	}
	series = append(series, RadarSeries{Region: TotalLabel, Counts: total, IsTotal: true})

	return RadarAggregate{Axes: axes, Series: series}
}

// ============================================================================
// HIERARCHY
// ============================================================================

// Hierarchy builds the region → axis → theme count tree. Absent
// combinations have no node. A blank theme is grouped under NotAvailable.
// Labels are wrapped at wrapWidth runes using lineBreak; IDs and Names keep
// the raw values used for grouping.
func Hierarchy(view RecordView, wrapWidth int, lineBreak string) *HierarchyNode {
	root := &HierarchyNode{ID: "", Name: TotalLabel, Label: TotalLabel}
	for i := 0; i < view.Len(); i++ {
		r := view.Record(i)
		theme := r.Theme
		if strings.TrimSpace(theme) == "" {
			theme = NotAvailable
		}
		root.Count++
		node := root
		for _, name := range []string{r.Region, r.Axis, theme} {
			child := node.Child(name)
			if child == nil {
				child = &HierarchyNode{
					ID:    joinPath(node.ID, name),
					Name:  name,
					Label: WrapLabel(name, wrapWidth, lineBreak),
					Depth: node.Depth + 1,
				}
				node.Children = append(node.Children, child)
			}
			child.Count++
			node = child
		}
	}
	return root
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

// Walk visits every node depth-first, parents before children.
func (n *HierarchyNode) Walk(fn func(*HierarchyNode)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// ============================================================================
// CATEGORIES
// ============================================================================

// SplitCategories explodes a raw category cell into trimmed, non-blank labels.
func SplitCategories(raw, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, delimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Categories tallies every category occurrence across the view and ranks
// them by descending count; ties keep first-seen order. Tick labels are
// truncated to tickLen runes but never used as keys.
func Categories(view RecordView, delimiter string, tickLen int) CategoryCounts {
	tally := make(map[string]int)
	var order []string
	for i := 0; i < view.Len(); i++ {
		for _, cat := range SplitCategories(view.Record(i).TechCategories, delimiter) {
			if _, ok := tally[cat]; !ok {
				order = append(order, cat)
			}
			tally[cat]++
		}
	}

	out := make(CategoryCounts, 0, len(order))
	for _, cat := range order {
		out = append(out, CategoryCount{
			Category: cat,
			Count:    tally[cat],
			Tick:     TruncateLabel(cat, tickLen),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
