package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/session"
)

const (
	maxCategories = 10
	barWidth      = 20
	cellWidth     = 9
	axisWidth     = 22
)

// View renders the dashboard from the coordinator's current snapshot.
func (m Model) View() string {
	snap := m.coord.Snapshot()
	focus := m.coord.Focus()

	title := TitleStyle.Render("needsradar · " + m.coord.Dataset().Source())
	if focus.State == session.Focused {
		title += " " + FocusedItem.Render("● "+focus.Region)
	}
	summary := SummaryStyle.Render(snap.Summary)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		PaneStyle.Render(m.renderRegions(focus)),
		PaneStyle.Render(renderRadar(snap.Radar)),
		PaneStyle.Render(renderCategories(snap.Categories)),
	)

	var footer string
	switch {
	case m.mode == modeFilter:
		footer = m.input.View()
	case m.err != nil:
		footer = ErrorStyle.Render("Error: " + m.err.Error())
	default:
		footer = m.renderStatusBar()
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, summary, panes, footer)
}

func (m Model) renderRegions(focus session.Focus) string {
	var b strings.Builder
	b.WriteString(PaneTitle.Render("Regiones"))
	b.WriteString("\n")
	for i, r := range m.regions {
		line := r
		if r == focus.Region {
			line = "● " + line
		} else {
			line = "  " + line
		}
		switch {
		case i == m.cursor:
			line = SelectedItem.Render(line)
		case r == focus.Region:
			line = FocusedItem.Render(line)
		default:
			line = NormalItem.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderRadar shows the radar aggregate as an axis × region matrix with
// the Total column last.
func renderRadar(agg engine.RadarAggregate) string {
	var b strings.Builder
	b.WriteString(PaneTitle.Render("Frecuencia por eje"))
	b.WriteString("\n")

	header := pad("", axisWidth)
	for _, s := range agg.Series {
		cell := pad(engine.TruncateLabel(s.Region, cellWidth-1), cellWidth)
		if s.IsTotal {
			cell = TotalStyle.Render(cell)
		}
		header += cell
	}
	b.WriteString(header)

	for j, axis := range agg.Axes {
		b.WriteString("\n")
		b.WriteString(pad(engine.TruncateLabel(axis, axisWidth-1), axisWidth))
		for _, s := range agg.Series {
			cell := fmt.Sprintf("%*d ", cellWidth-1, s.Counts[j])
			if s.IsTotal {
				cell = TotalStyle.Render(cell)
			}
			b.WriteString(cell)
		}
	}
	return b.String()
}

// renderCategories draws the top categories as horizontal bars.
func renderCategories(counts engine.CategoryCounts) string {
	var b strings.Builder
	b.WriteString(PaneTitle.Render("Categorías tecnológicas"))
	if len(counts) == 0 {
		b.WriteString("\n")
		b.WriteString(StatusBarText.Render("sin datos"))
		return b.String()
	}

	top := counts
	if len(top) > maxCategories {
		top = top[:maxCategories]
	}
	peak, tickWidth := top[0].Count, 0
	for _, c := range top {
		if w := lipgloss.Width(c.Tick); w > tickWidth {
			tickWidth = w
		}
	}
	for _, c := range top {
		n := 1
		if peak > 0 {
			n = c.Count * barWidth / peak
		}
		if n < 1 {
			n = 1
		}
		b.WriteString("\n")
		b.WriteString(pad(c.Tick, tickWidth+1))
		b.WriteString(BarStyle.Render(strings.Repeat("█", n)))
		b.WriteString(fmt.Sprintf(" %d", c.Count))
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	hints := []struct{ key, text string }{
		{"↑/↓", "región"},
		{"enter", "enfocar"},
		{"/", "categorías"},
		{"c", "limpiar"},
		{"R", "reiniciar"},
		{"q", "salir"},
	}
	parts := make([]string, 0, len(hints)+1)
	for _, h := range hints {
		parts = append(parts, StatusBarKey.Render(h.key)+" "+StatusBarText.Render(h.text))
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return StatusBar.Width(m.width).Render(strings.Join(parts, "  "))
}

// pad right-pads s to width runes.
func pad(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
