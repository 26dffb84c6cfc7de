package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	stats := huntarr.Stats{
		"sonarr": {Hunted: 12, Upgraded: 4},
		"radarr": {Hunted: 7, Upgraded: 1},
	}

	before := time.Now()
	s.Update(stats, nil)

	snap := s.Snapshot()
	if !snap.HasStats || snap.Stats["sonarr"].Hunted != 12 {
		t.Fatalf("snapshot stats = %#v, want sonarr hunted=12 HasStats=true", snap.Stats)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Stats["sonarr"] = huntarr.AppStats{Hunted: 999}
	snap2 := s.Snapshot()
	if snap2.Stats["sonarr"].Hunted != 12 {
		t.Fatalf("Snapshot should clone stats; got %d want 12", snap2.Stats["sonarr"].Hunted)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(huntarr.Stats{"sonarr": {Hunted: 1}}, nil)
	prev := s.Snapshot()

	before := time.Now()
	origErr := errors.New("boom")
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if snap.HasStats != prev.HasStats || snap.Stats["sonarr"].Hunted != 1 {
		t.Fatalf("stats changed on error: got %#v want %#v", snap.Stats, prev.Stats)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store reports failures: %#v", snap)
	}

	s.Update(nil, errors.New("fail 1"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after one failure: %d failures, offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 2"))
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after two failures: %d failures, offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(huntarr.Stats{}, nil)
	if snap = s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("success did not reset failures: %#v", snap)
	}
}
