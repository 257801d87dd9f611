package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	bannerMark     = "◆"
	bannerName     = "n e b u l a   n o t e s"
	bannerSubtitle = "Notes with AI text tools"
)

// RenderBanner returns the one-line header shown above the panes.
func RenderBanner(width int) string {
	left := BannerStyle.Render(bannerMark+" "+bannerName) + "  " + MutedStyle.Render(bannerSubtitle)
	if width <= 0 {
		return left
	}
	rule := DividerStyle.Render(strings.Repeat("─", max(width-1, 0)))
	line := lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(left)
	return line + "\n" + rule
}
