package settings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

// API is the slice of the backend client the store needs.
type API interface {
	FetchSettings(ctx context.Context) (*huntarr.Settings, error)
	UpdateSettings(ctx context.Context, app string, payload any) (*huntarr.Settings, error)
	ResetSettings(ctx context.Context, app string) error
}

const cacheTTL = 2 * time.Second

// Store is the single read cache for /api/settings. Reads within the TTL
// window return the cached bundle; any successful write replaces it, so a
// read after a write never observes pre-write state.
type Store struct {
	api API

	mu        sync.Mutex
	cached    *huntarr.Settings
	fetchedAt time.Time

	// issueSeq orders requests by issue time; installedSeq records which
	// request last populated the cache. A slow response to an older request
	// must not overwrite the result of a newer one.
	issueSeq     uint64
	installedSeq uint64

	ttl time.Duration
	now func() time.Time
}

// NewStore builds a Store over the given API.
func NewStore(api API) *Store {
	return &Store{api: api, ttl: cacheTTL, now: time.Now}
}

// Get returns the settings bundle, serving the cache when it is younger than
// the TTL and force is false. The returned bundle is a copy; callers may
// mutate it freely. A failed refresh keeps the previous cache intact and
// returns the error.
func (s *Store) Get(ctx context.Context, force bool) (*huntarr.Settings, error) {
	s.mu.Lock()
	if !force && s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		cached := s.cached.Clone()
		s.mu.Unlock()
		return cached, nil
	}
	s.issueSeq++
	seq := s.issueSeq
	s.mu.Unlock()

	fetched, err := s.api.FetchSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh settings: %w", err)
	}

	s.install(fetched, seq)
	return fetched.Clone(), nil
}

// Save posts a partial update for one app and adopts the server's returned
// bundle as the new cache. The caller gets that authoritative bundle back,
// not its own draft.
func (s *Store) Save(ctx context.Context, app string, payload any) (*huntarr.Settings, error) {
	s.mu.Lock()
	s.issueSeq++
	seq := s.issueSeq
	s.mu.Unlock()

	updated, err := s.api.UpdateSettings(ctx, app, payload)
	if err != nil {
		return nil, fmt.Errorf("save %s settings: %w", app, err)
	}

	s.install(updated, seq)
	return updated.Clone(), nil
}

// Reset restores server-side defaults for one app (or all when app is empty)
// and reloads the bundle from the server. The client never fabricates
// defaults locally.
func (s *Store) Reset(ctx context.Context, app string) (*huntarr.Settings, error) {
	if err := s.api.ResetSettings(ctx, app); err != nil {
		return nil, fmt.Errorf("reset settings: %w", err)
	}
	return s.Get(ctx, true)
}

// Invalidate drops the cache so the next read refetches.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cached = nil
	s.fetchedAt = time.Time{}
}

func (s *Store) install(bundle *huntarr.Settings, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.installedSeq {
		return
	}
	s.installedSeq = seq
	s.cached = bundle.Clone()
	s.fetchedAt = s.now()
}
