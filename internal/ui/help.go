package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Views",
			items: []helpItem{
				{"1", "Dashboard"},
				{"2", "Settings"},
				{"3", "Logs"},
				{"4", "Account"},
			},
		},
		{
			title: "Dashboard",
			items: []helpItem{
				{"r", "Refresh now"},
				{"s", "Start hunt"},
				{"S", "Stop hunt"},
				{"x", "Reset statistics"},
				{"j/k", "Select app"},
			},
		},
		{
			title: "Settings",
			items: []helpItem{
				{"h/l", "Switch tab"},
				{"j/k", "Move between fields"},
				{"enter", "Edit/toggle field"},
				{"ctrl+s", "Save tab"},
				{"ctrl+r", "Revert tab"},
				{"ctrl+x", "Reset tab to defaults"},
				{"ctrl+t", "Test connection"},
			},
		},
		{
			title: "Logs",
			items: []helpItem{
				{"space", "Toggle follow"},
				{"f", "Cycle app filter"},
				{"c", "Clear buffer"},
				{"j/k g/G", "Scroll"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"T", "Cycle theme"},
				{"?", "Toggle help"},
				{"ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 32)))
	b.WriteString("\n\n")

	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			keyStyle := lipgloss.NewStyle().
				Foreground(lipgloss.Color(m.theme.Warning)).
				Width(12)
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	modal := styles.Modal.Width(44).Render(b.String())
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
