package tui

import "github.com/charmbracelet/lipgloss"

// Colors used in the dashboard.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorTotal     = lipgloss.Color("245")
	colorBar       = lipgloss.Color("78") // Green
)

// TitleStyle for the dashboard header.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SummaryStyle for the one-line view summary.
var SummaryStyle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// PaneStyle frames each panel.
var PaneStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// PaneTitle is the heading inside a panel.
var PaneTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// SelectedItem style for the highlighted region.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// FocusedItem marks the region currently in focus.
var FocusedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// NormalItem style for other regions.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// TotalStyle for the Total radar column.
var TotalStyle = lipgloss.NewStyle().
	Foreground(colorTotal).
	Italic(true)

// BarStyle for category bars.
var BarStyle = lipgloss.NewStyle().
	Foreground(colorBar)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("196")).
	Bold(true).
	Padding(0, 1)
