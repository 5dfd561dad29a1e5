// Package ui renders boards, circuits and training progress in the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

// Layout constants
const (
	cellW         = 11 // width of each column in characters
	labelVisualW  = 7  // visual width of qubit label area
	gateNameW     = 5  // width of gate name inside box
	gateBoxW      = 7  // ┤ + gateNameW + ├ = 1 + 5 + 1
	columnsPerRow = 10 // circuit columns drawn before wrapping
)

// Lipgloss styles used across the package.
var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	boardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	xStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#f7768e"))

	oStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7dcfff"))

	qubitLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	gateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#73daca"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68"))

	goodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#9ece6a"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f7768e"))
)
