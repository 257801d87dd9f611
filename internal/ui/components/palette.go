package components

import "github.com/charmbracelet/lipgloss"

// Palette shared by every component. The ui theme is built on it.
var (
	ColorBorder  = lipgloss.Color("#273540")
	ColorAccent  = lipgloss.Color("#7f57b4")
	ColorLabel   = lipgloss.Color("#436b77")
	ColorText    = lipgloss.Color("#d7d9da")
	ColorMuted   = lipgloss.Color("#9ba0bf")
	ColorInk     = lipgloss.Color("#16161d")
	ColorChip    = lipgloss.Color("#888ba4")
	ColorRowFill = lipgloss.Color("#1f2530")

	colorErrorBorder = lipgloss.Color("#7a2f3a")
	colorErrorTitle  = lipgloss.Color("#e06c75")
	colorErrorBody   = lipgloss.Color("#d6b5b5")
)
