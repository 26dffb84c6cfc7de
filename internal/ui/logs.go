package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/logstream"
)

// logsView renders the live stream buffer in a viewport.
type logsView struct {
	viewport viewport.Model
	follow   bool
	version  uint64
	ready    bool
}

func newLogsView(follow bool) logsView {
	return logsView{follow: follow}
}

func (m *Model) initLogsViewport() {
	m.logsView.viewport = viewport.New(m.width, m.logsBodyHeight())
	m.logsView.ready = true
}

func (m *Model) resizeLogsViewport() {
	if !m.logsView.ready {
		return
	}
	m.logsView.viewport.Width = m.width
	m.logsView.viewport.Height = m.logsBodyHeight()
	m.refreshLogsViewport()
}

// logsBodyHeight leaves room for header, command bar, logs status, hints.
func (m *Model) logsBodyHeight() int {
	return max(m.height-5, 3)
}

// refreshLogsViewport re-renders the buffer when new entries arrived. The
// change counter makes the no-news case a cheap comparison.
func (m *Model) refreshLogsViewport() {
	if !m.logsView.ready {
		return
	}
	entries, version := m.stream.Entries()
	if version == m.logsView.version {
		return
	}
	m.logsView.version = version
	m.logsView.viewport.SetContent(m.renderLogLines(entries))
	if m.logsView.follow {
		m.logsView.viewport.GotoBottom()
	}
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.logsView

	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		v.follow = !v.follow
		if v.follow {
			v.viewport.GotoBottom()
		}
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.CycleApp):
		m.stream.SetApp(nextAppFilter(m.stream.App()))
		m.toastInfo("Log filter: " + m.stream.App())
		return m, nil
	case key.Matches(msg, m.keys.ClearLogs):
		m.stream.Clear()
		m.refreshLogsViewport()
		return m, nil
	case key.Matches(msg, m.keys.Top):
		v.follow = false
		v.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		v.viewport.GotoBottom()
		return m, nil
	case key.Matches(msg, m.keys.Up),
		key.Matches(msg, m.keys.PageUp),
		key.Matches(msg, m.keys.HalfPageUp):
		// Manual upward scrolling suspends follow until re-enabled.
		v.follow = false
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return m, cmd
}

// nextAppFilter cycles all -> each app -> all.
func nextAppFilter(current string) string {
	if current == "" || current == "all" {
		return huntarr.Apps[0]
	}
	for i, app := range huntarr.Apps {
		if app == current {
			if i == len(huntarr.Apps)-1 {
				return "all"
			}
			return huntarr.Apps[i+1]
		}
	}
	return "all"
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	v := m.logsView

	var status []string
	switch m.stream.State() {
	case logstream.StateConnected:
		status = append(status, styles.SuccessText.Render("● streaming"))
	case logstream.StateConnecting:
		status = append(status, styles.WarningText.Render("● connecting"))
	default:
		status = append(status, styles.DangerText.Render("● disconnected, retrying"))
	}
	status = append(status, styles.MutedText.Render("filter: "+m.stream.App()))
	if v.follow {
		status = append(status, styles.AccentText.Render("follow"))
	} else {
		status = append(status, styles.FaintText.Render("paused"))
	}

	var b strings.Builder
	b.WriteString("  " + strings.Join(status, styles.FaintText.Render("  │  ")))
	b.WriteString("\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("  space follow · f filter · c clear · j/k scroll"))
	return b.String()
}

func (m Model) renderLogLines(entries []huntarr.LogEntry) string {
	styles := m.theme.Styles()
	if len(entries) == 0 {
		return styles.FaintText.Render("  Waiting for log events...")
	}

	var b strings.Builder
	for _, entry := range entries {
		stamp := entry.Timestamp
		if t := entry.ParsedTime(); !t.IsZero() {
			stamp = t.Format("15:04:05")
		}
		level := strings.ToUpper(entry.Level)
		line := fmt.Sprintf("%s %s %s",
			styles.FaintText.Render(stamp),
			styles.LevelStyle(entry.Level).Render(fmt.Sprintf("%-7s", level)),
			entry.Message,
		)
		if entry.App != "" {
			line += styles.MutedText.Render(" [" + entry.App + "]")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
