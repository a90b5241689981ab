// Package render turns engine snapshots into files: PNG charts, XLSX
// workbooks, CSV and JSON.
package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spektr-org/needsradar/engine"
)

// ============================================================================
// PNG CHARTS — gonum/plot rendering of engine.ChartConfig
// ============================================================================
// Input is the front-end neutral ChartConfig, so the exported image always
// matches what the API serves. Bars keep the truncated tick labels; radar
// polygons are drawn on a unit circle scaled by the largest count.
// ============================================================================

// Size of exported images.
var (
	DefaultWidth  = 10 * vg.Inch
	DefaultHeight = 7 * vg.Inch
)

var (
	gridColor = color.RGBA{R: 209, G: 213, B: 219, A: 255}
	textColor = color.RGBA{R: 55, G: 65, B: 81, A: 255}
)

// ChartPNG renders a "bar" or "radar" chart to w.
func ChartPNG(w io.Writer, chart *engine.ChartConfig) error {
	if chart == nil {
		return fmt.Errorf("render: nil chart")
	}

	var (
		p   *plot.Plot
		err error
	)
	switch chart.ChartType {
	case "bar":
		p, err = barPlot(chart)
	case "radar":
		p, err = radarPlot(chart)
	default:
		return fmt.Errorf("render: chart type %q has no PNG form", chart.ChartType)
	}
	if err != nil {
		return fmt.Errorf("render: %s: %w", chart.ChartType, err)
	}

	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, "png")
	if err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

func newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.Title.TextStyle.Color = textColor
	return p
}

func barPlot(chart *engine.ChartConfig) (*plot.Plot, error) {
	p := newPlot(chart.Title)
	p.X.Label.Text = chart.XAxis
	p.Y.Label.Text = chart.YAxis

	if len(chart.Series) == 0 || len(chart.Series[0].Data) == 0 {
		return emptyPlot(p)
	}
	series := chart.Series[0]

	values := make(plotter.Values, len(series.Data))
	ticks := make([]string, len(series.Data))
	for i, d := range series.Data {
		values[i] = d.Value
		ticks[i] = d.Label
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, err
	}
	bars.Color = parseHex(series.Color)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	if chart.ShowGrid {
		grid := plotter.NewGrid()
		grid.Vertical.Width = 0
		grid.Horizontal.Color = gridColor
		p.Add(grid)
	}

	p.NominalX(ticks...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Y.Min = 0
	return p, nil
}

func radarPlot(chart *engine.ChartConfig) (*plot.Plot, error) {
	p := newPlot(chart.Title)
	p.HideAxes()

	if len(chart.Series) == 0 || len(chart.Series[0].Data) == 0 {
		return emptyPlot(p)
	}

	axes := make([]string, len(chart.Series[0].Data))
	for j, d := range chart.Series[0].Data {
		axes[j] = d.Label
	}
	n := len(axes)

	maxCount := 0.0
	for _, s := range chart.Series {
		for _, d := range s.Data {
			maxCount = math.Max(maxCount, d.Value)
		}
	}
	if maxCount == 0 {
		maxCount = 1
	}

	// Concentric guides at quarters plus one spoke per axis.
	for _, r := range []float64{0.25, 0.5, 0.75, 1} {
		ring := make(plotter.XYs, n+1)
		for j := 0; j <= n; j++ {
			ring[j] = polar(r, j, n)
		}
		l, err := plotter.NewLine(ring)
		if err != nil {
			return nil, err
		}
		l.LineStyle.Color = gridColor
		l.LineStyle.Width = vg.Points(0.5)
		p.Add(l)
	}
	labelXYs := make(plotter.XYs, n)
	for j := 0; j < n; j++ {
		spoke, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, polar(1, j, n)})
		if err != nil {
			return nil, err
		}
		spoke.LineStyle.Color = gridColor
		spoke.LineStyle.Width = vg.Points(0.5)
		p.Add(spoke)
		labelXYs[j] = polar(1.12, j, n)
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: axes})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].Color = textColor
	}
	p.Add(labels)

	for _, s := range chart.Series {
		pts := make(plotter.XYs, 0, n+1)
		for j, d := range s.Data {
			pts = append(pts, polar(d.Value/maxCount, j, n))
		}
		pts = append(pts, pts[0])

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.LineStyle.Color = parseHex(s.Color)
		line.LineStyle.Width = vg.Points(2)
		if s.Dash != "" {
			line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
		}
		p.Add(line)
		if chart.ShowLegend {
			p.Legend.Add(s.Name, line)
		}
	}
	p.Legend.Top = true

	p.X.Min, p.X.Max = -1.35, 1.35
	p.Y.Min, p.Y.Max = -1.25, 1.25
	return p, nil
}

// polar places axis j of n at radius r, starting at twelve o'clock and
// running clockwise.
func polar(r float64, j, n int) plotter.XY {
	theta := math.Pi/2 - 2*math.Pi*float64(j)/float64(n)
	return plotter.XY{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

func emptyPlot(p *plot.Plot) (*plot.Plot, error) {
	msg, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: 0, Y: 0}},
		Labels: []string{"Sin datos para los filtros actuales"},
	})
	if err != nil {
		return nil, err
	}
	msg.TextStyle[0].XAlign = draw.XCenter
	msg.TextStyle[0].Color = textColor
	p.Add(msg)
	p.HideAxes()
	p.X.Min, p.X.Max = -1, 1
	p.Y.Min, p.Y.Max = -1, 1
	return p, nil
}

// parseHex reads "#RRGGBB"; anything else falls back to the text color.
func parseHex(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return textColor
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return textColor
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
