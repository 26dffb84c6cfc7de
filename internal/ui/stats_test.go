package ui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/notify"
)

func keyPress(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestResetStatsTarget(t *testing.T) {
	for i, app := range huntarr.Apps {
		target, label := resetStatsTarget(i)
		if target != app || label != app {
			t.Errorf("resetStatsTarget(%d) = %q/%q, want %q", i, target, label, app)
		}
	}

	// The last card spans every app; the endpoint expects no app_type there.
	target, label := resetStatsTarget(len(huntarr.Apps))
	if target != "" {
		t.Fatalf("reset-all target = %q, want empty", target)
	}
	if label != "all apps" {
		t.Fatalf("reset-all label = %q, want %q", label, "all apps")
	}
}

func TestHandleStatsKey_Bindings(t *testing.T) {
	m := Model{
		ctx:    context.Background(),
		keys:   DefaultKeyMap(),
		notify: notify.NewCenter(),
	}

	next, _ := m.handleStatsKey(keyPress("j"))
	m = next.(Model)
	if m.statsView.selected != 1 {
		t.Fatalf("selected = %d after j, want 1", m.statsView.selected)
	}
	next, _ = m.handleStatsKey(keyPress("k"))
	m = next.(Model)
	if m.statsView.selected != 0 {
		t.Fatalf("selected = %d after k, want 0", m.statsView.selected)
	}

	next, cmd := m.handleStatsKey(keyPress("s"))
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("s produced no command, want hunt start")
	}
	next, cmd = m.handleStatsKey(keyPress("S"))
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("S produced no command, want hunt stop")
	}

	next, _ = m.handleStatsKey(keyPress("x"))
	m = next.(Model)
	if m.confirm == nil {
		t.Fatalf("x did not ask for confirmation")
	}
}
