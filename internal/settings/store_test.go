package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

type fakeAPI struct {
	bundle     *huntarr.Settings
	fetchCalls int
	fetchErr   error
	resetCalls []string

	onUpdate func(app string, payload any) *huntarr.Settings
}

func (f *fakeAPI) FetchSettings(ctx context.Context) (*huntarr.Settings, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.bundle.Clone(), nil
}

func (f *fakeAPI) UpdateSettings(ctx context.Context, app string, payload any) (*huntarr.Settings, error) {
	if f.onUpdate != nil {
		f.bundle = f.onUpdate(app, payload)
	}
	return f.bundle.Clone(), nil
}

func (f *fakeAPI) ResetSettings(ctx context.Context, app string) error {
	f.resetCalls = append(f.resetCalls, app)
	return nil
}

func testBundle(url string) *huntarr.Settings {
	return &huntarr.Settings{
		Sonarr:  huntarr.AppSettings{APIURL: url, HuntMissing: 3},
		General: huntarr.GeneralSettings{Timezone: "UTC", DarkMode: true},
	}
}

func TestStore_ServesCacheWithinTTL(t *testing.T) {
	api := &fakeAPI{bundle: testBundle("http://x:8989")}
	store := NewStore(api)

	current := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	if _, err := store.Get(context.Background(), false); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	current = current.Add(time.Second)
	if _, err := store.Get(context.Background(), false); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("fetchCalls = %d within TTL, want 1", api.fetchCalls)
	}

	// Past the TTL a fresh fetch happens.
	current = current.Add(2 * time.Second)
	if _, err := store.Get(context.Background(), false); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if api.fetchCalls != 2 {
		t.Fatalf("fetchCalls = %d past TTL, want 2", api.fetchCalls)
	}

	// Forced refresh always hits the network, TTL or not.
	if _, err := store.Get(context.Background(), true); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if api.fetchCalls != 3 {
		t.Fatalf("fetchCalls = %d after force, want 3", api.fetchCalls)
	}
}

func TestStore_FailedRefreshKeepsCacheAndPropagates(t *testing.T) {
	api := &fakeAPI{bundle: testBundle("http://x:8989")}
	store := NewStore(api)

	if _, err := store.Get(context.Background(), false); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	api.fetchErr = errors.New("connection refused")
	if _, err := store.Get(context.Background(), true); err == nil {
		t.Fatalf("forced refresh with failing backend returned nil error")
	}

	// Previous cache survives the failed refresh.
	api.fetchErr = nil
	bundle, err := store.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if bundle.Sonarr.APIURL != "http://x:8989" {
		t.Fatalf("cache lost after failed refresh: %#v", bundle.Sonarr)
	}
}

func TestStore_SaveAdoptsServerBundle(t *testing.T) {
	api := &fakeAPI{bundle: testBundle("http://x:8989")}
	// Server normalizes hunt_missing on save.
	api.onUpdate = func(app string, payload any) *huntarr.Settings {
		next := testBundle("http://x:8989")
		next.Sonarr.HuntMissing = 5
		return next
	}
	store := NewStore(api)

	if _, err := store.Get(context.Background(), false); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	draft := huntarr.AppSettings{APIURL: "http://x:8989", HuntMissing: 99}
	saved, err := store.Save(context.Background(), "sonarr", draft)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if saved.Sonarr.HuntMissing != 5 {
		t.Fatalf("Save returned HuntMissing = %d, want server's 5", saved.Sonarr.HuntMissing)
	}

	// A read inside the TTL reflects the post-write state, not the pre-write cache.
	bundle, err := store.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if bundle.Sonarr.HuntMissing != 5 {
		t.Fatalf("post-save read = %d, want write-through 5", bundle.Sonarr.HuntMissing)
	}
	if api.fetchCalls != 1 {
		t.Fatalf("fetchCalls = %d, post-save read should hit cache", api.fetchCalls)
	}
}

func TestStore_ResetReloadsFromServer(t *testing.T) {
	api := &fakeAPI{bundle: testBundle("http://x:8989")}
	store := NewStore(api)

	if _, err := store.Get(context.Background(), false); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	api.bundle = testBundle("") // server-side defaults

	bundle, err := store.Reset(context.Background(), "sonarr")
	if err != nil {
		t.Fatalf("Reset returned error: %v", err)
	}
	if len(api.resetCalls) != 1 || api.resetCalls[0] != "sonarr" {
		t.Fatalf("resetCalls = %v, want [sonarr]", api.resetCalls)
	}
	if bundle.Sonarr.APIURL != "" {
		t.Fatalf("Reset returned stale bundle, want server defaults")
	}
	if api.fetchCalls != 2 {
		t.Fatalf("fetchCalls = %d, reset must force a reload", api.fetchCalls)
	}
}

func TestStore_StaleResponseDoesNotOvertakeNewer(t *testing.T) {
	api := &fakeAPI{bundle: testBundle("new")}
	store := NewStore(api)

	// Newer request completes first.
	if _, err := store.Get(context.Background(), true); err != nil {
		t.Fatalf("Get returned error: %v", err)
	}

	// An older, slower request finishing now must not clobber the cache.
	store.install(testBundle("stale"), 0)

	bundle, err := store.Get(context.Background(), false)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if bundle.Sonarr.APIURL != "new" {
		t.Fatalf("cache = %q, stale response overtook newer one", bundle.Sonarr.APIURL)
	}
}
