package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

// statsView is the dashboard: per-app hunt counters plus totals.
type statsView struct {
	selected int // index into huntarr.Apps; len(Apps) selects "all"
}

func newStatsView() statsView {
	return statsView{}
}

func (m Model) handleStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.statsView

	switch {
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Right):
		if v.selected < len(huntarr.Apps) {
			v.selected++
		}
		return m, nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Left):
		if v.selected > 0 {
			v.selected--
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		m.toastInfo("Refreshing statistics")
		return m, fetchStatsCmd(m.ctx, m.client, m.store)
	case key.Matches(msg, m.keys.StartHunt):
		m.toastInfo("Starting hunt...")
		return m, startHuntCmd(m.ctx, m.client)
	case key.Matches(msg, m.keys.StopHunt):
		m.toastInfo("Stopping hunt...")
		return m, stopHuntCmd(m.ctx, m.client)
	case key.Matches(msg, m.keys.ResetStats):
		target, label := resetStatsTarget(v.selected)
		m.askConfirm(
			fmt.Sprintf("Reset statistics for %s?", label),
			resetStatsCmd(m.ctx, m.client, target),
		)
		return m, nil
	}
	return m, nil
}

// resetStatsTarget maps the card selection to the reset request scope. The
// last card covers every app, which the endpoint expects as an absent
// app_type, not a pseudo-app name.
func resetStatsTarget(selected int) (app, label string) {
	if selected < len(huntarr.Apps) {
		return huntarr.Apps[selected], huntarr.Apps[selected]
	}
	return "", "all apps"
}

func (m Model) renderStats() string {
	styles := m.theme.Styles()
	snap := m.snapshot

	var b strings.Builder
	b.WriteString("\n")

	if !snap.HasStats {
		if snap.IsOffline() {
			b.WriteString(styles.DangerText.Render("  Server unreachable"))
			if snap.LastError != nil {
				b.WriteString("\n")
				b.WriteString(styles.MutedText.Render("  " + snap.LastError.Error()))
			}
		} else {
			b.WriteString(styles.MutedText.Render("  Waiting for first statistics poll..."))
		}
		return b.String()
	}

	var totalHunted, totalUpgraded int
	var cards []string
	for i, app := range huntarr.Apps {
		counters := snap.Stats[app]
		totalHunted += counters.Hunted
		totalUpgraded += counters.Upgraded
		cards = append(cards, m.renderStatsCard(app, counters, m.statsView.selected == i))
	}
	total := huntarr.AppStats{Hunted: totalHunted, Upgraded: totalUpgraded}
	cards = append(cards, m.renderStatsCard("total", total, m.statsView.selected == len(huntarr.Apps)))

	b.WriteString(renderCardRows(cards, m.width))
	b.WriteString("\n")

	if snap.LastError != nil {
		b.WriteString(styles.WarningText.Render("  Last poll failed: " + snap.LastError.Error()))
		b.WriteString("\n")
	} else if !snap.LastUpdated.IsZero() {
		b.WriteString(styles.FaintText.Render("  Updated " + snap.LastUpdated.Format("15:04:05")))
		b.WriteString("\n")
	}
	b.WriteString(styles.FaintText.Render("  r refresh · s/S start/stop hunt · x reset selected · j/k select"))
	return b.String()
}

func (m Model) renderStatsCard(name string, counters huntarr.AppStats, selected bool) string {
	styles := m.theme.Styles()

	title := styles.MutedText.Render(strings.ToUpper(name))
	if selected {
		title = styles.AccentText.Bold(true).Render(strings.ToUpper(name))
	}

	body := fmt.Sprintf(
		"%s\n%s %s\n%s %s",
		title,
		styles.SuccessText.Render(fmt.Sprintf("%5d", counters.Hunted)),
		styles.MutedText.Render("hunted"),
		styles.InfoText.Render(fmt.Sprintf("%5d", counters.Upgraded)),
		styles.MutedText.Render("upgraded"),
	)

	card := styles.Card
	if selected {
		card = styles.CardFocus
	}
	return card.Width(16).Render(body)
}

// renderCardRows lays cards out horizontally, wrapping to the terminal width.
func renderCardRows(cards []string, width int) string {
	if len(cards) == 0 {
		return ""
	}
	perRow := 1
	if width > 0 {
		if w := lipgloss.Width(cards[0]); w > 0 {
			perRow = max(1, width/(w+1))
		}
	}

	var rows []string
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[start:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
