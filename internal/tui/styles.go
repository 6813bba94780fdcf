package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentFg  = lipgloss.Color("#7C3AED")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}

	titleStyle   = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	cursorStyle  = lipgloss.NewStyle().Foreground(accentFg)
	dimStyle     = lipgloss.NewStyle().Foreground(baseDimFg)
	checkedStyle = lipgloss.NewStyle().Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#243141")).Padding(0, 1)
)
