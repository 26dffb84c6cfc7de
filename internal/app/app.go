package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/Fiala06/Huntarr.io/internal/auth"
	"github.com/Fiala06/Huntarr.io/internal/config"
	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/logstream"
	"github.com/Fiala06/Huntarr.io/internal/notify"
	"github.com/Fiala06/Huntarr.io/internal/prefs"
	"github.com/Fiala06/Huntarr.io/internal/settings"
	"github.com/Fiala06/Huntarr.io/internal/state"
	"github.com/Fiala06/Huntarr.io/internal/ui"
)

// Options configure the dashboard application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/huntarr-tui/prefs.toml
	ServerURL  string // overrides the configured server when set
	PollEvery  int    // seconds; zero uses the configured cadence
}

const startupProbeTimeout = 5 * time.Second

// Run boots the dashboard TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if server := strings.TrimSpace(opts.ServerURL); server != "" {
		cfg.ServerURL = server
	}
	if opts.PollEvery > 0 {
		cfg.PollEvery = time.Duration(opts.PollEvery) * time.Second
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	logger, closeLog := newLogger(cfg.LogFile)
	defer closeLog()

	client, err := huntarr.NewClient(cfg.ServerURL, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init huntarr client: %w", err)
	}

	store := &state.Store{}
	settingsStore := settings.NewStore(client)
	session := auth.NewSession(client)
	center := notify.NewCenter()

	stream, err := logstream.New(logstream.Options{
		BaseURL:    client.BaseURL(),
		HTTPClient: client.HTTPClient(),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("init log stream: %w", err)
	}
	defer stream.Close()

	// Resolve first-run and session state before the first frame so the UI
	// never flashes the wrong view.
	needsSetup := resolveStartupState(ctx, client, session, logger)

	StartPoller(ctx, store, client, cfg.PollEvery, logger)

	uiOpts := ui.Options{
		Context:    ctx,
		Client:     client,
		Store:      store,
		Settings:   settingsStore,
		Session:    session,
		Stream:     stream,
		Notify:     center,
		Logger:     logger,
		PollTick:   cfg.PollEvery,
		ThemeName:  userPrefs.Theme,
		DarkMode:   userPrefs.DarkMode,
		AutoScroll: userPrefs.AutoScroll,
		PrefsPath:  opts.PrefsPath,
		NeedsSetup: needsSetup,
	}
	return ui.Run(uiOpts)
}

// resolveStartupState probes the setup endpoint and the current session in
// parallel. Probe failures are not fatal; the UI shows the offline state.
func resolveStartupState(ctx context.Context, client *huntarr.Client, session *auth.Session, logger *log.Logger) bool {
	probeCtx, cancel := context.WithTimeout(ctx, startupProbeTimeout)
	defer cancel()

	var needsSetup bool
	g, gctx := errgroup.WithContext(probeCtx)
	g.Go(func() error {
		required, err := client.SetupStatus(gctx)
		if err != nil {
			logger.Warn("setup probe failed", "err", err)
			return nil
		}
		needsSetup = required
		return nil
	})
	g.Go(func() error {
		session.Probe(gctx)
		return nil
	})
	_ = g.Wait()
	return needsSetup
}

// newLogger opens the diagnostic log file. The TUI owns the terminal, so
// diagnostics never go to stderr; on failure they are discarded.
func newLogger(path string) (*log.Logger, func()) {
	if strings.TrimSpace(path) == "" {
		return log.New(io.Discard), func() {}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return log.New(io.Discard), func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return log.New(io.Discard), func() {}
	}
	logger := log.NewWithOptions(file, log.Options{ReportTimestamp: true})
	return logger, func() { _ = file.Close() }
}
