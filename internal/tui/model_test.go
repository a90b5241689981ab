package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/session"
)

func newModel(t *testing.T) (Model, *session.Coordinator) {
	t.Helper()
	ds, err := engine.NewDataset([]engine.Record{
		{Region: "Maule", Axis: "Agua", Theme: "Riego", TechCategories: "IoT, Drones", Impact: 5},
		{Region: "Maule", Axis: "Energía", Theme: "Solar", TechCategories: "Solar", Impact: 3},
		{Region: "Biobío", Axis: "Agua", Theme: "Riego", TechCategories: "IoT", Impact: 1},
	}, "needs.xlsx")
	require.NoError(t, err)
	coord, err := session.New(context.Background(), ds, session.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)
	return New(context.Background(), coord, []string{"Biobío", "Maule"}), coord
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends one key and runs the resulting coordinator command, feeding
// its message back like the Bubble Tea runtime would. Commands issued while
// the text input is open only drive cursor blinking and are dropped.
func press(t *testing.T, m Model, s string) Model {
	t.Helper()
	next, cmd := m.Update(keyMsg(s))
	m = next.(Model)
	if cmd != nil && !m.Filtering() {
		if msg, ok := cmd().(TransitionDone); ok {
			next, _ = m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func TestNavigationBounds(t *testing.T) {
	m, _ := newModel(t)
	m = press(t, m, "k")
	assert.Equal(t, 0, m.Cursor())
	for i := 0; i < 5; i++ {
		m = press(t, m, "j")
	}
	assert.Equal(t, 2, m.Cursor())
	m = press(t, m, "up")
	assert.Equal(t, 1, m.Cursor())
}

func TestSelectFocusesRegion(t *testing.T) {
	m, coord := newModel(t)

	m = press(t, m, "down")
	m = press(t, m, "enter")
	assert.Equal(t, session.Focus{State: session.Focused, Region: "Biobío"}, coord.Focus())
	assert.Equal(t, 1, coord.Snapshot().Records)
	assert.Contains(t, m.Status(), "Biobío")
	assert.Contains(t, m.View(), "● Biobío")

	// The first entry clears the focus.
	m = press(t, m, "k")
	m = press(t, m, "enter")
	assert.Equal(t, session.Unfocused, coord.Focus().State)
}

func TestTotalIsNoop(t *testing.T) {
	m, coord := newModel(t)
	m = press(t, m, "j")
	m = press(t, m, "j")
	m = press(t, m, "enter")
	require.Equal(t, "Maule", coord.Focus().Region)

	m = press(t, m, "t")
	assert.Equal(t, "Maule", coord.Focus().Region)
	assert.Contains(t, m.Status(), session.ReasonTotal)
}

func TestCategoryFilterInput(t *testing.T) {
	m, coord := newModel(t)

	m = press(t, m, "/")
	require.True(t, m.Filtering())
	for _, r := range "IoT" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")
	assert.False(t, m.Filtering())
	assert.Equal(t, []string{"IoT"}, coord.Criteria().Categories)
	assert.Equal(t, 2, coord.Snapshot().Records)

	// Esc leaves the criteria alone.
	m = press(t, m, "/")
	m = press(t, m, "x")
	m = press(t, m, "esc")
	assert.False(t, m.Filtering())
	assert.Equal(t, []string{"IoT"}, coord.Criteria().Categories)
}

func TestClearAndReset(t *testing.T) {
	m, coord := newModel(t)
	m = press(t, m, "j")
	m = press(t, m, "enter")
	m = press(t, m, "c")
	assert.Equal(t, session.Unfocused, coord.Focus().State)
	assert.Equal(t, 0, m.Cursor())

	m = press(t, m, "/")
	for _, r := range "Solar" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")
	require.Equal(t, 1, coord.Snapshot().Records)

	m = press(t, m, "R")
	assert.True(t, coord.Criteria().IsEmpty())
	assert.Equal(t, 3, coord.Snapshot().Records)
}

func TestViewShowsRadarAndCategories(t *testing.T) {
	m, _ := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 40})
	out := next.(Model).View()

	assert.Contains(t, out, "needsradar · needs.xlsx")
	assert.Contains(t, out, "Frecuencia por eje")
	assert.Contains(t, out, engine.TotalLabel)
	assert.Contains(t, out, "IoT")
	assert.Contains(t, out, AllRegions)
}

func TestEmptyViewRenders(t *testing.T) {
	m, coord := newModel(t)
	_, err := coord.SetFilters(context.Background(), engine.Criteria{Axes: []string{"Minería"}})
	require.NoError(t, err)
	assert.Contains(t, m.View(), "sin datos")
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
