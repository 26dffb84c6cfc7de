package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/Fiala06/Huntarr.io/internal/prefs"
)

func TestSavePrefs_LogsFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker file: %v", err)
	}

	var buf bytes.Buffer
	m := Model{
		logger: log.New(&buf),
		// A regular file where the prefs directory should be makes Save fail.
		prefsPath: filepath.Join(blocker, "prefs.toml"),
		theme:     GetTheme("Huntarr"),
	}

	m.savePrefs()
	if !strings.Contains(buf.String(), "failed to save preferences") {
		t.Fatalf("no diagnostic logged, got %q", buf.String())
	}
}

func TestSavePrefs_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")

	var buf bytes.Buffer
	m := Model{
		logger:    log.New(&buf),
		prefsPath: path,
		theme:     GetTheme("Slate"),
	}
	m.logsView.follow = true

	m.savePrefs()
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %q", buf.String())
	}

	loaded, err := prefs.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Theme != "Slate" || !loaded.AutoScroll {
		t.Fatalf("loaded prefs = %#v, want saved theme and auto-scroll", loaded)
	}
}
