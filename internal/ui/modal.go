package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// confirmState is a pending yes/no decision. The action runs on confirm.
type confirmState struct {
	prompt string
	action tea.Cmd
}

func (m *Model) askConfirm(prompt string, action tea.Cmd) {
	m.confirm = &confirmState{prompt: prompt, action: action}
}

func (m Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "y", msg.String() == "Y", key.Matches(msg, m.keys.Confirm):
		action := m.confirm.action
		m.confirm = nil
		return m, action
	case msg.String() == "n", msg.String() == "N", key.Matches(msg, m.keys.Escape):
		m.confirm = nil
		return m, nil
	}
	return m, nil
}

func (m Model) renderConfirm() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(m.confirm.prompt))
	b.WriteString("\n\n")
	b.WriteString(styles.SuccessText.Render("y"))
	b.WriteString(styles.MutedText.Render(" confirm   "))
	b.WriteString(styles.DangerText.Render("n"))
	b.WriteString(styles.MutedText.Render(" cancel"))

	modal := styles.Modal.Width(min(60, max(40, m.width-10))).Render(b.String())
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
