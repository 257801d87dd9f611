package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/gravitrone/nebula-notes/internal/ui/components"
)

func TestRenderBannerIncludesSubtitleAndNoOSC(t *testing.T) {
	out := RenderBanner(80)
	assert.NotContains(t, out, "\x1b]")

	clean := components.SanitizeText(out)
	assert.Contains(t, clean, "n e b u l a")
	assert.Contains(t, clean, "Notes with AI text tools")
	assert.Contains(t, clean, "─")
}

func TestRenderBannerFitsWidth(t *testing.T) {
	for _, line := range strings.Split(RenderBanner(60), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), 60)
	}
	assert.NotContains(t, RenderBanner(0), "\n")
}
