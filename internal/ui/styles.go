package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/nebula-notes/internal/ui/components"
)

// --- Theme Colors ---

var (
	ColorPrimary = components.ColorAccent
	ColorLabel   = components.ColorLabel
	ColorMuted   = components.ColorMuted
	ColorBorder  = components.ColorBorder
	ColorSuccess = lipgloss.Color("#3f866b")
	ColorWarning = lipgloss.Color("#c78854")
)

// --- Reusable Styles ---

var (
	BannerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Field labels in the editor.
	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Bold(true)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	TagChipStyle = lipgloss.NewStyle().
			Foreground(components.ColorInk).
			Background(components.ColorChip).
			Padding(0, 1)

	TagChipActiveStyle = TagChipStyle.
				Background(ColorPrimary).
				Bold(true)

	BusyStyle = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)
)
