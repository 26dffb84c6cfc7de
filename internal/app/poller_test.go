package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/state"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // Would be 32s, capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

type fakeStatsAPI struct {
	stats huntarr.Stats
	err   error
}

func (f *fakeStatsAPI) FetchStats(ctx context.Context) (huntarr.Stats, error) {
	return f.stats, f.err
}

func TestRefresh(t *testing.T) {
	store := &state.Store{}
	api := &fakeStatsAPI{stats: huntarr.Stats{"sonarr": {Hunted: 7, Upgraded: 2}}}
	logger := log.New(io.Discard)

	refresh(context.Background(), store, api, logger)
	snap := store.Snapshot()
	if !snap.HasStats || snap.Stats["sonarr"].Hunted != 7 {
		t.Fatalf("snapshot after refresh = %+v", snap)
	}

	api.err = errors.New("connection refused")
	refresh(context.Background(), store, api, logger)
	snap = store.Snapshot()
	if !snap.HasStats || snap.Stats["sonarr"].Hunted != 7 {
		t.Fatalf("failed refresh dropped last good stats: %+v", snap)
	}
	if snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("failure not recorded: %+v", snap)
	}
}
