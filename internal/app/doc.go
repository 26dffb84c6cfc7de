// Package app provides the orchestration layer for the dashboard.
//
// It is the composition root: Run loads configuration and preferences, builds
// the HTTP client, the shared stores (stats, settings cache, session,
// notifications), the log stream, and the file-backed diagnostic logger, then
// launches the background stats poller and hands everything to the TUI.
//
// Startup probes the first-run setup endpoint and the login session in
// parallel before the first frame so the UI opens directly on the right view.
// Probe failures are not fatal; the dashboard starts in its offline state and
// recovers when the server comes back.
//
// The poller refreshes the stats store continuously and doubles its interval
// per consecutive failure (capped at 30s) while the server is unreachable.
package app
