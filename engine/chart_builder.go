package engine

// ============================================================================
// CHART BUILDER — Produces ChartConfig from the three aggregates
// ============================================================================
// Output is front-end neutral: the HTTP API serves it as JSON, the PNG
// exporter and the terminal dashboard read the same structures.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// totalColor is reserved for the synthetic Total series.
const totalColor = "#6B7280"

// BuildRadarChart turns the radar aggregate into one closed series per
// region plus a dashed Total overlay.
func BuildRadarChart(agg RadarAggregate, title string) *ChartConfig {
	config := &ChartConfig{
		ChartType:  "radar",
		Title:      title,
		YAxis:      "Necesidades",
		ShowLegend: true,
		ShowGrid:   true,
	}

	colorIdx := 0
	for _, s := range agg.Series {
		points := make([]ChartPoint, 0, len(agg.Axes))
		for j, axis := range agg.Axes {
			points = append(points, ChartPoint{Key: axis, Label: axis, Value: float64(s.Counts[j])})
		}
		series := ChartSeries{Name: s.Region, Data: points}
		if s.IsTotal {
			series.Color = totalColor
			series.Dash = "dash"
		} else {
			series.Color = defaultColors[colorIdx%len(defaultColors)]
			colorIdx++
		}
		config.Series = append(config.Series, series)
		config.Colors = append(config.Colors, series.Color)
	}
	return config
}

// BuildHierarchyChart flattens the count tree into sunburst nodes.
// The root is omitted; region nodes have an empty parent.
func BuildHierarchyChart(root *HierarchyNode, title string) *ChartConfig {
	config := &ChartConfig{
		ChartType: "sunburst",
		Title:     title,
	}
	if root == nil {
		return config
	}

	regionColor := make(map[string]string)
	for i, c := range root.Children {
		regionColor[c.Name] = defaultColors[i%len(defaultColors)]
	}

	var visit func(n *HierarchyNode, parent, color string)
	visit = func(n *HierarchyNode, parent, color string) {
		config.Nodes = append(config.Nodes, ChartNode{
			ID:     n.ID,
			Parent: parent,
			Label:  n.Label,
			Value:  float64(n.Count),
			Color:  color,
		})
		for _, c := range n.Children {
			visit(c, n.ID, color)
		}
	}
	for _, c := range root.Children {
		visit(c, "", regionColor[c.Name])
	}
	return config
}

// BuildCategoryChart produces the ranked bar chart. Points are keyed by the
// full category so truncated ticks never merge two bars.
func BuildCategoryChart(counts CategoryCounts, title string) *ChartConfig {
	points := make([]ChartPoint, 0, len(counts))
	for _, c := range counts {
		points = append(points, ChartPoint{Key: c.Category, Label: c.Tick, Value: float64(c.Count)})
	}
	return &ChartConfig{
		ChartType:  "bar",
		Title:      title,
		XAxis:      "Categoría tecnológica",
		YAxis:      "Frecuencia",
		Series:     []ChartSeries{{Name: "Frecuencia", Data: points, Color: defaultColors[0]}},
		Colors:     assignColors(1),
		ShowLegend: false,
		ShowGrid:   true,
	}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
