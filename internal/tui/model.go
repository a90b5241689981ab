// Package tui is the terminal dashboard: a region selector, the radar
// matrix, the category ranking and the detail summary, all driven by one
// session.Coordinator.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/session"
)

// TransitionDone is sent when a coordinator operation finishes.
type TransitionDone struct {
	Transition session.Transition
	Err        error
}

type mode int

const (
	modeBrowse mode = iota
	modeFilter
)

// AllRegions is the first selector entry; choosing it clears the focus.
const AllRegions = "(todas las regiones)"

// Key bindings
var keys = struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Total  key.Binding
	Clear  key.Binding
	Reset  key.Binding
	Filter key.Binding
	Escape key.Binding
}{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Up:     key.NewBinding(key.WithKeys("k", "up")),
	Down:   key.NewBinding(key.WithKeys("j", "down")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Total:  key.NewBinding(key.WithKeys("t")),
	Clear:  key.NewBinding(key.WithKeys("c")),
	Reset:  key.NewBinding(key.WithKeys("R")),
	Filter: key.NewBinding(key.WithKeys("/")),
	Escape: key.NewBinding(key.WithKeys("esc")),
}

// Model is the root Bubble Tea model. It never derives on its own: every
// change goes through the coordinator inside a command, and the view reads
// the published snapshot.
type Model struct {
	ctx     context.Context
	coord   *session.Coordinator
	regions []string // selector entries, AllRegions first

	cursor int
	mode   mode
	input  textinput.Model

	status string
	err    error
	width  int
	height int
}

// New creates the dashboard model. regions is the alphabetical selector
// vocabulary (dataset regions plus map regions).
func New(ctx context.Context, coord *session.Coordinator, regions []string) Model {
	ti := textinput.New()
	ti.Placeholder = "IoT, Drones"
	ti.Prompt = "categorías › "
	ti.CharLimit = 200
	ti.Width = 50

	return Model{
		ctx:     ctx,
		coord:   coord,
		regions: append([]string{AllRegions}, regions...),
		input:   ti,
		width:   100,
		height:  30,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TransitionDone:
		m.err = msg.Err
		if msg.Err == nil {
			m.status = describeTransition(msg.Transition)
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeFilter {
			return m.updateFilter(msg)
		}
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.regions)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, keys.Select):
		region := ""
		if m.cursor > 0 {
			region = m.regions[m.cursor]
		}
		return m, m.run(func(ctx context.Context, c *session.Coordinator) (session.Transition, error) {
			return c.Select(ctx, region)
		})

	case key.Matches(msg, keys.Total):
		return m, m.run(func(ctx context.Context, c *session.Coordinator) (session.Transition, error) {
			return c.HandleClick(ctx, session.ClickEvent{Chart: "tui", Label: engine.TotalLabel})
		})

	case key.Matches(msg, keys.Clear):
		m.cursor = 0
		return m, m.run(func(ctx context.Context, c *session.Coordinator) (session.Transition, error) {
			return c.Clear(ctx)
		})

	case key.Matches(msg, keys.Reset):
		m.cursor = 0
		return m, m.run(func(ctx context.Context, c *session.Coordinator) (session.Transition, error) {
			return c.Reset(ctx)
		})

	case key.Matches(msg, keys.Filter):
		m.mode = modeFilter
		m.input.SetValue(strings.Join(m.coord.Criteria().Categories, ", "))
		m.input.CursorEnd()
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil

	case key.Matches(msg, keys.Select):
		m.mode = modeBrowse
		m.input.Blur()
		criteria := m.coord.Criteria()
		criteria.Categories = engine.SplitCategories(m.input.Value(), ",")
		return m, m.run(func(ctx context.Context, c *session.Coordinator) (session.Transition, error) {
			return c.SetFilters(ctx, criteria)
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run wraps a coordinator operation as a command.
func (m Model) run(op func(context.Context, *session.Coordinator) (session.Transition, error)) tea.Cmd {
	ctx, coord := m.ctx, m.coord
	return func() tea.Msg {
		t, err := op(ctx, coord)
		return TransitionDone{Transition: t, Err: err}
	}
}

func describeTransition(t session.Transition) string {
	if !t.Applied {
		return "sin cambios: " + t.Reason
	}
	if t.To.State == session.Focused {
		return "región enfocada: " + t.To.Region
	}
	return t.Reason
}

// Cursor returns the selector position (for testing).
func (m Model) Cursor() int { return m.cursor }

// Status returns the last transition message (for testing).
func (m Model) Status() string { return m.status }

// Filtering reports whether the category input is open (for testing).
func (m Model) Filtering() bool { return m.mode == modeFilter }
