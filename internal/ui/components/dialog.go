package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 2).
			Width(44)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)

	dialogBodyStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	dialogCursorStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true)
)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	header := dialogTitleStyle.Render(title)
	body := dialogBodyStyle.Render(message)
	hint := dialogBodyStyle.Render("\ny: confirm | n: cancel")
	return dialogStyle.Render(header + "\n\n" + body + hint)
}

// MenuItem is one choice in a MenuDialog.
type MenuItem struct {
	Key   string
	Label string
	Desc  string
}

// MenuDialog renders a keyed menu with the cursor on index active. footer
// is shown under the items when set.
func MenuDialog(title string, items []MenuItem, active int, footer string) string {
	var b strings.Builder
	for i, item := range items {
		line := "[" + item.Key + "] " + item.Label
		if item.Desc != "" {
			line += "  " + dialogBodyStyle.Render(item.Desc)
		}
		if i == active {
			b.WriteString(dialogCursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}
	body := b.String()
	if footer != "" {
		body += "\n\n" + dialogBodyStyle.Render(footer)
	}
	return dialogStyle.Width(56).Render(dialogTitleStyle.Render(title) + "\n\n" + body)
}
