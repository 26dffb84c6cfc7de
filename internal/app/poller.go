package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/state"
)

const (
	defaultPollInterval = 5 * time.Second
	maxBackoff          = 30 * time.Second
)

// statsFetcher is the slice of the backend client the poller needs.
type statsFetcher interface {
	FetchStats(ctx context.Context) (huntarr.Stats, error)
}

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence, backing off while the server is unreachable. It returns
// immediately.
func StartPoller(ctx context.Context, store *state.Store, client statsFetcher, interval time.Duration, logger *log.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		for {
			refresh(ctx, store, client, logger)
			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

func refresh(ctx context.Context, store *state.Store, client statsFetcher, logger *log.Logger) {
	stats, err := client.FetchStats(ctx)
	if err != nil {
		store.Update(huntarr.Stats{}, err)
		logger.Warn("stats poll failed", "err", err)
		return
	}
	store.Update(stats, nil)
}

// calculateBackoff doubles the poll interval per consecutive failure, capped
// at maxBackoff, so a down server is not hammered at full cadence.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	backoff := interval
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
