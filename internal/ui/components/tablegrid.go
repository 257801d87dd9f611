package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a single column for TableGrid. Width is the visual
// width of the cell text, excluding separators.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

const tableGridLeftOffset = 1

var (
	gridLineStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	gridHeaderStyle = boxLabelStyle.Bold(true)

	gridActiveRowStyle = lipgloss.NewStyle().
				Foreground(ColorText).
				Background(ColorRowFill).
				Bold(true)

	gridActiveSepStyle = lipgloss.NewStyle().
				Foreground(ColorBorder).
				Background(ColorRowFill)
)

// TableGrid renders rows under a header rule. Every returned line has a
// visual width of tableWidth. activeRow indexes rows; -1 highlights none.
func TableGrid(columns []TableColumn, rows [][]string, tableWidth int, activeRow int) string {
	if tableWidth <= 0 {
		return ""
	}
	if len(columns) == 0 {
		return padRight("", tableWidth)
	}

	sep := lipgloss.RoundedBorder().Left
	cols := fitGridColumns(columns, sep, tableWidth)

	out := make([]string, 0, len(rows)+2)
	out = append(out, renderGridRow(cols, headerCells(cols), sep, tableWidth, true, false))
	out = append(out, renderGridRule(cols, lipgloss.RoundedBorder().Middle, lipgloss.RoundedBorder().Top, tableWidth))
	for i, row := range rows {
		out = append(out, renderGridRow(cols, row, sep, tableWidth, false, i == activeRow))
	}
	return strings.Join(out, "\n")
}

func headerCells(columns []TableColumn) []string {
	hdr := make([]string, len(columns))
	for i, c := range columns {
		hdr[i] = SanitizeOneLine(c.Header)
	}
	return hdr
}

// fitGridColumns grows or shrinks the last column so the row fills
// tableWidth exactly.
func fitGridColumns(columns []TableColumn, sep string, tableWidth int) []TableColumn {
	fitted := make([]TableColumn, len(columns))
	copy(fitted, columns)

	sepW := max(lipgloss.Width(sep), 1)
	contentWidth := max(tableWidth-tableGridLeftOffset, len(fitted))

	sum := 0
	for i := range fitted {
		fitted[i].Width = max(fitted[i].Width, 1)
		sum += fitted[i].Width
	}
	expected := sum + (len(fitted)-1)*sepW
	last := len(fitted) - 1
	fitted[last].Width = max(fitted[last].Width+contentWidth-expected, 1)
	return fitted
}

func renderGridRow(columns []TableColumn, cells []string, sep string, tableWidth int, header bool, active bool) string {
	sepStyle := gridLineStyle
	if active {
		sepStyle = gridActiveSepStyle
	}
	sepStyled := sepStyle.Inline(true).Render(sep)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", tableGridLeftOffset))
	for i, col := range columns {
		if i > 0 {
			b.WriteString(sepStyled)
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		rendered := renderGridCell(text, col.Width, col.Align)
		switch {
		case header:
			rendered = gridHeaderStyle.Inline(true).Render(rendered)
		case active:
			rendered = gridActiveRowStyle.Inline(true).Render(rendered)
		}
		b.WriteString(rendered)
	}
	return padRight(b.String(), tableWidth)
}

func renderGridRule(columns []TableColumn, cross, horiz string, tableWidth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", tableGridLeftOffset))
	for i, col := range columns {
		b.WriteString(strings.Repeat(horiz, max(col.Width, 1)))
		if i < len(columns)-1 {
			b.WriteString(cross)
		}
	}
	return gridLineStyle.Inline(true).Render(padRight(b.String(), tableWidth))
}

func renderGridCell(text string, width int, align lipgloss.Position) string {
	if width <= 0 {
		return ""
	}
	clamped := ClampTextWidth(text, width)
	pad := width - lipgloss.Width(clamped)
	if pad <= 0 {
		return truncateRunes(clamped, width)
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + clamped
	case lipgloss.Center:
		left := pad / 2
		return strings.Repeat(" ", left) + clamped + strings.Repeat(" ", pad-left)
	default:
		return clamped + strings.Repeat(" ", pad)
	}
}
