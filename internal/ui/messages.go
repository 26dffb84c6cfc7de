package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fiala06/Huntarr.io/internal/auth"
	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/settings"
	"github.com/Fiala06/Huntarr.io/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type loginDoneMsg struct {
	result huntarr.LoginResult
	err    error
}

type setupDoneMsg struct {
	username string
	err      error
}

type logoutDoneMsg struct{ err error }

type probeDoneMsg struct{ state auth.State }

type settingsLoadedMsg struct {
	bundle *huntarr.Settings
	err    error
}

type settingsSavedMsg struct {
	app    string
	bundle *huntarr.Settings
	err    error
}

type settingsResetMsg struct {
	app    string
	bundle *huntarr.Settings
	err    error
}

type connectionTestMsg struct {
	app    string
	result *huntarr.ConnectionTest
	err    error
}

type statsResetMsg struct {
	app string
	err error
}

type huntActionMsg struct {
	action string // "start" or "stop"
	err    error
}

type accountUpdatedMsg struct {
	what string // "username" or "password"
	err  error
}

type twoFASetupMsg struct {
	setup *huntarr.TwoFactorSetup
	err   error
}

type twoFAVerifiedMsg struct{ err error }

type twoFADisabledMsg struct{ err error }

type delayedLogoutMsg struct{}

type themeSavedMsg struct{ err error }

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func fetchStatsCmd(ctx context.Context, client *huntarr.Client, store *state.Store) tea.Cmd {
	return func() tea.Msg {
		stats, err := client.FetchStats(ctx)
		store.Update(stats, err)
		return snapshotMsg(store.Snapshot())
	}
}

func loginCmd(ctx context.Context, session *auth.Session, creds huntarr.Credentials) tea.Cmd {
	return func() tea.Msg {
		result, err := session.Login(ctx, creds)
		return loginDoneMsg{result: result, err: err}
	}
}

func setupCmd(ctx context.Context, client *huntarr.Client, username, password, confirm string) tea.Cmd {
	return func() tea.Msg {
		err := client.Setup(ctx, username, password, confirm)
		return setupDoneMsg{username: username, err: err}
	}
}

func logoutCmd(ctx context.Context, session *auth.Session) tea.Cmd {
	return func() tea.Msg {
		return logoutDoneMsg{err: session.Logout(ctx)}
	}
}

func probeCmd(ctx context.Context, session *auth.Session) tea.Cmd {
	return func() tea.Msg {
		return probeDoneMsg{state: session.Probe(ctx)}
	}
}

func loadSettingsCmd(ctx context.Context, store *settings.Store, force bool) tea.Cmd {
	return func() tea.Msg {
		bundle, err := store.Get(ctx, force)
		return settingsLoadedMsg{bundle: bundle, err: err}
	}
}

func saveSettingsCmd(ctx context.Context, store *settings.Store, app string, payload any) tea.Cmd {
	return func() tea.Msg {
		bundle, err := store.Save(ctx, app, payload)
		return settingsSavedMsg{app: app, bundle: bundle, err: err}
	}
}

func resetSettingsCmd(ctx context.Context, store *settings.Store, app string) tea.Cmd {
	return func() tea.Msg {
		bundle, err := store.Reset(ctx, app)
		return settingsResetMsg{app: app, bundle: bundle, err: err}
	}
}

func testConnectionCmd(ctx context.Context, client *huntarr.Client, app, apiURL, apiKey string) tea.Cmd {
	return func() tea.Msg {
		result, err := client.TestConnection(ctx, app, huntarr.NormalizeAPIURL(apiURL), apiKey)
		return connectionTestMsg{app: app, result: result, err: err}
	}
}

func resetStatsCmd(ctx context.Context, client *huntarr.Client, app string) tea.Cmd {
	return func() tea.Msg {
		return statsResetMsg{app: app, err: client.ResetStats(ctx, app)}
	}
}

func startHuntCmd(ctx context.Context, client *huntarr.Client) tea.Cmd {
	return func() tea.Msg {
		return huntActionMsg{action: "start", err: client.StartHunt(ctx)}
	}
}

func stopHuntCmd(ctx context.Context, client *huntarr.Client) tea.Cmd {
	return func() tea.Msg {
		return huntActionMsg{action: "stop", err: client.StopHunt(ctx)}
	}
}

func changeUsernameCmd(ctx context.Context, client *huntarr.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		return accountUpdatedMsg{what: "username", err: client.ChangeUsername(ctx, username, password)}
	}
}

func changePasswordCmd(ctx context.Context, client *huntarr.Client, current, next string) tea.Cmd {
	return func() tea.Msg {
		return accountUpdatedMsg{what: "password", err: client.ChangePassword(ctx, current, next)}
	}
}

func twoFASetupCmd(ctx context.Context, client *huntarr.Client) tea.Cmd {
	return func() tea.Msg {
		setup, err := client.TwoFactorSetup(ctx)
		return twoFASetupMsg{setup: setup, err: err}
	}
}

func twoFAVerifyCmd(ctx context.Context, client *huntarr.Client, code string) tea.Cmd {
	return func() tea.Msg {
		return twoFAVerifiedMsg{err: client.TwoFactorVerify(ctx, code)}
	}
}

func twoFADisableCmd(ctx context.Context, client *huntarr.Client, password, code string) tea.Cmd {
	return func() tea.Msg {
		return twoFADisabledMsg{err: client.TwoFactorDisable(ctx, password, code)}
	}
}

func delayedLogoutCmd(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return delayedLogoutMsg{}
	})
}

func saveThemeCmd(ctx context.Context, client *huntarr.Client, darkMode bool) tea.Cmd {
	return func() tea.Msg {
		return themeSavedMsg{err: client.SaveTheme(ctx, darkMode)}
	}
}
