package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Fiala06/Huntarr.io/internal/auth"
	"github.com/Fiala06/Huntarr.io/internal/notify"
)

// renderHeader renders the top status bar: logo, server, connectivity, user.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()

	parts := []string{styles.Logo.Render(" HUNTARR ")}
	parts = append(parts, styles.MutedText.Render(m.client.BaseURL()))

	switch {
	case m.snapshot.IsOffline():
		parts = append(parts, styles.DangerText.Render("● offline"))
	case m.snapshot.LastError != nil:
		parts = append(parts, styles.WarningText.Render("● degraded"))
	case m.snapshot.HasStats:
		parts = append(parts, styles.SuccessText.Render("● online"))
	default:
		parts = append(parts, styles.FaintText.Render("● connecting"))
	}

	if user := m.session.User(); user != nil {
		label := user.Username
		if user.Is2FAEnabled {
			label += " [2FA]"
		}
		parts = append(parts, styles.AccentText.Render(label))
	}

	line := strings.Join(parts, styles.FaintText.Render("  │  "))
	return styles.Header.Width(max(m.width, lipgloss.Width(line))).Render(line)
}

// renderCommandBar renders the view tabs with the active one highlighted.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()

	if m.needsSetup || m.session.State() != auth.StateAuthenticated {
		return styles.Footer.Width(max(m.width, 0)).Render("ctrl+c quit")
	}

	tabs := []struct {
		view  View
		label string
	}{
		{ViewStats, "1:Dashboard"},
		{ViewSettings, "2:Settings"},
		{ViewLogs, "3:Logs"},
		{ViewUser, "4:Account"},
	}

	var parts []string
	for _, tab := range tabs {
		label := tab.label
		if tab.view == ViewSettings && m.settingsView.editor != nil && m.settingsView.editor.DirtyAny() {
			label += "*"
		}
		if tab.view == m.currentView {
			parts = append(parts, styles.Selected.Render(" "+label+" "))
			continue
		}
		parts = append(parts, styles.MutedText.Render(" "+label+" "))
	}
	parts = append(parts, styles.FaintText.Render("  ?:help  T:theme"))

	line := strings.Join(parts, "")
	return styles.Footer.Width(max(m.width, lipgloss.Width(line))).Render(line)
}

// renderToasts renders active notifications as a stack under the header.
func (m Model) renderToasts() string {
	items := m.notify.Active()
	if len(items) == 0 {
		return ""
	}
	styles := m.theme.Styles()

	var b strings.Builder
	for _, item := range items {
		var style lipgloss.Style
		var badge string
		switch item.Kind {
		case notify.KindSuccess:
			style, badge = styles.SuccessText, "✓"
		case notify.KindWarning:
			style, badge = styles.WarningText, "!"
		case notify.KindError:
			style, badge = styles.DangerText, "✗"
		default:
			style, badge = styles.InfoText, "i"
		}
		b.WriteString(style.Render(fmt.Sprintf("  %s %s", badge, item.Message)))
		b.WriteString("\n")
	}
	return b.String()
}
