// Package config handles loading the dashboard's client configuration.
//
// The Load function reads ~/.config/huntarr-tui/config.toml (or an explicit
// path) and falls back to defaults when the file is missing, so the
// dashboard works out-of-the-box against a local Huntarr server. Fields:
//
//	server_url = "http://127.0.0.1:9705"
//	request_timeout_seconds = 15
//	poll_seconds = 5
//	log_file = "~/.local/state/huntarr-tui/huntarr-tui.log"
//
// All fields are optional. Tilde expansion is performed automatically. A
// missing config file is not an error; a file that exists but fails to
// parse is.
package config
