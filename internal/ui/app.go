// Package ui provides the Bubble Tea TUI for the Huntarr dashboard.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/Fiala06/Huntarr.io/internal/auth"
	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/logstream"
	"github.com/Fiala06/Huntarr.io/internal/notify"
	"github.com/Fiala06/Huntarr.io/internal/prefs"
	"github.com/Fiala06/Huntarr.io/internal/settings"
	"github.com/Fiala06/Huntarr.io/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewStats View = iota
	ViewSettings
	ViewLogs
	ViewUser
)

// Options configures the UI.
type Options struct {
	Context    context.Context
	Client     *huntarr.Client
	Store      *state.Store
	Settings   *settings.Store
	Session    *auth.Session
	Stream     *logstream.Stream
	Notify     *notify.Center
	Logger     *log.Logger
	PollTick   time.Duration
	ThemeName  string
	DarkMode   bool
	AutoScroll bool
	PrefsPath  string
	NeedsSetup bool
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	client    *huntarr.Client
	store     *state.Store
	settings  *settings.Store
	session   *auth.Session
	stream    *logstream.Stream
	notify    *notify.Center
	logger    *log.Logger
	pollTick  time.Duration
	prefsPath string

	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool

	needsSetup bool
	snapshot   state.Snapshot

	loginForm    loginView
	setupForm    setupView
	statsView    statsView
	settingsView settingsView
	userView     userView
	logsView     logsView

	confirm  *confirmState
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Huntarr"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	m := Model{
		ctx:         ctx,
		client:      opts.Client,
		store:       opts.Store,
		settings:    opts.Settings,
		session:     opts.Session,
		stream:      opts.Stream,
		notify:      opts.Notify,
		logger:      logger,
		pollTick:    pollTick,
		prefsPath:   prefsPath,
		theme:       GetTheme(themeName),
		keys:        DefaultKeyMap(),
		currentView: ViewStats,
		needsSetup:  opts.NeedsSetup,
	}
	m.loginForm = newLoginView()
	m.setupForm = newSetupView()
	m.statsView = newStatsView()
	m.settingsView = newSettingsView()
	m.userView = newUserView()
	m.logsView = newLogsView(opts.AutoScroll)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.session.State() == auth.StateAuthenticated {
		cmds = append(cmds, loadSettingsCmd(m.ctx, m.settings, false))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.initLogsViewport()
		}
		m.ready = true
		m.resizeLogsViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case setupDoneMsg:
		return m.handleSetupDone(msg)

	case logoutDoneMsg:
		if msg.err != nil {
			m.toastError("Sign out failed: " + msg.err.Error())
			return m, nil
		}
		m.toastInfo("Signed out")
		m.loginForm = newLoginView()
		m.userView = newUserView()
		return m, nil

	case probeDoneMsg:
		return m, nil

	case settingsLoadedMsg:
		return m.handleSettingsLoaded(msg)

	case settingsSavedMsg:
		return m.handleSettingsSaved(msg)

	case settingsResetMsg:
		return m.handleSettingsReset(msg)

	case connectionTestMsg:
		return m.handleConnectionTest(msg)

	case statsResetMsg:
		if msg.err != nil {
			m.toastError("Reset failed: " + msg.err.Error())
			return m, nil
		}
		m.toastSuccess("Statistics reset")
		return m, fetchStatsCmd(m.ctx, m.client, m.store)

	case huntActionMsg:
		return m.handleHuntAction(msg)

	case accountUpdatedMsg:
		return m.handleAccountUpdated(msg)

	case twoFASetupMsg:
		return m.handleTwoFASetup(msg)

	case twoFAVerifiedMsg:
		return m.handleTwoFAVerified(msg)

	case twoFADisabledMsg:
		return m.handleTwoFADisabled(msg)

	case delayedLogoutMsg:
		return m, logoutCmd(m.ctx, m.session)

	case themeSavedMsg:
		if msg.err != nil {
			m.logger.Warn("theme push failed", "err", msg.err)
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}
	if m.confirm != nil {
		return m.renderConfirm()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderToasts())
	b.WriteString(m.renderContent())
	return b.String()
}

// renderContent picks the active screen. Protected views are gated on the
// session: loading until the first probe resolves, setup on first run, then
// login until authenticated.
func (m Model) renderContent() string {
	if m.needsSetup {
		return m.renderSetup()
	}
	switch m.session.State() {
	case auth.StateUnknown:
		return m.theme.Styles().MutedText.Render("\n  Checking session...")
	case auth.StateUnauthenticated:
		return m.renderLogin()
	}

	switch m.currentView {
	case ViewStats:
		return m.renderStats()
	case ViewSettings:
		return m.renderSettings()
	case ViewLogs:
		return m.renderLogs()
	case ViewUser:
		return m.renderUser()
	default:
		return ""
	}
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	// Unauthenticated screens own the keyboard; text inputs need every key.
	if m.needsSetup {
		return m.handleSetupKey(msg)
	}
	switch m.session.State() {
	case auth.StateUnknown:
		return m, nil
	case auth.StateUnauthenticated:
		return m.handleLoginKey(msg)
	}

	// Views with focused text inputs get keys before global bindings.
	if m.currentView == ViewSettings && m.settingsView.editing {
		return m.handleSettingsKey(msg)
	}
	if m.currentView == ViewUser && m.userView.mode != userMenu {
		return m.handleUserKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()

	case key.Matches(msg, m.keys.ViewStats):
		m.currentView = ViewStats
		return m, nil

	case key.Matches(msg, m.keys.ViewSettings):
		m.currentView = ViewSettings
		return m, m.enterSettings()

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		m.stream.Open()
		m.resizeLogsViewport()
		return m, nil

	case key.Matches(msg, m.keys.ViewUser):
		m.currentView = ViewUser
		return m, nil
	}

	switch m.currentView {
	case ViewStats:
		return m.handleStatsKey(msg)
	case ViewSettings:
		return m.handleSettingsKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	case ViewUser:
		return m.handleUserKey(msg)
	}

	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	if m.currentView == ViewLogs {
		m.refreshLogsViewport()
	}

	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

// cycleTheme advances the theme, persists the preference, and pushes the
// dark/light choice to the server so the web UI follows.
func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	m.theme = GetTheme(NextTheme(m.theme.Name))
	m.savePrefs()
	m.toastInfo("Theme: " + m.theme.Name)
	if m.session.State() == auth.StateAuthenticated {
		return m, saveThemeCmd(m.ctx, m.client, m.theme.Dark)
	}
	return m, nil
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	err := prefs.Save(m.prefsPath, prefs.Prefs{
		Theme:      m.theme.Name,
		DarkMode:   m.theme.Dark,
		AutoScroll: m.logsView.follow,
	})
	if err != nil {
		m.logger.Warn("failed to save preferences", "path", m.prefsPath, "err", err)
	}
}

func (m Model) handleHuntAction(msg huntActionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.toastError("Hunt " + msg.action + " failed: " + msg.err.Error())
		return m, nil
	}
	if msg.action == "start" {
		m.toastSuccess("Hunt started")
	} else {
		m.toastSuccess("Hunt stopped")
	}
	return m, nil
}

func (m *Model) toastInfo(message string)    { m.notify.Show(message, notify.KindInfo) }
func (m *Model) toastSuccess(message string) { m.notify.Show(message, notify.KindSuccess) }
func (m *Model) toastError(message string)   { m.notify.Show(message, notify.KindError) }

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(opts.Context))
	_, err := p.Run()
	if err == tea.ErrProgramKilled && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
