package huntarr

import (
	"testing"
	"time"
)

func TestSettingsCloneIsIndependent(t *testing.T) {
	original := &Settings{
		Sonarr: AppSettings{
			APIURL:    "http://x:8989",
			Instances: []Instance{{Name: "4k", APIURL: "http://y:8989"}},
		},
	}
	dup := original.Clone()
	dup.Sonarr.APIURL = "http://changed"
	dup.Sonarr.Instances[0].Name = "changed"

	if original.Sonarr.APIURL != "http://x:8989" {
		t.Fatalf("clone mutation leaked into original APIURL")
	}
	if original.Sonarr.Instances[0].Name != "4k" {
		t.Fatalf("clone mutation leaked into original instances")
	}
}

func TestSettingsAppClosedSet(t *testing.T) {
	s := &Settings{}
	for _, name := range Apps {
		if s.App(name) == nil {
			t.Fatalf("App(%q) = nil, want pointer", name)
		}
	}
	if s.App("general") != nil {
		t.Fatalf("general must not resolve as an app")
	}
	if s.App("plex") != nil {
		t.Fatalf("unknown app must resolve to nil")
	}
}

func TestLogEntryParsedTime(t *testing.T) {
	entry := LogEntry{Timestamp: "2025-04-01T10:30:00Z"}
	if got := entry.ParsedTime(); got.IsZero() || !got.Equal(time.Date(2025, 4, 1, 10, 30, 0, 0, time.UTC)) {
		t.Fatalf("ParsedTime = %v, want parsed RFC3339", got)
	}
	if got := (LogEntry{Timestamp: "not a time"}).ParsedTime(); !got.IsZero() {
		t.Fatalf("ParsedTime on garbage = %v, want zero", got)
	}
	if got := (LogEntry{}).ParsedTime(); !got.IsZero() {
		t.Fatalf("ParsedTime on empty = %v, want zero", got)
	}
}
