package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fiala06/Huntarr.io/internal/huntarr"
	"github.com/Fiala06/Huntarr.io/internal/settings"
)

// settingsView is the tabbed settings editor. One tab per app plus general;
// edits stay in the draft until saved, and each tab tracks dirt independently.
type settingsView struct {
	editor  *settings.Editor
	loading bool
	loadErr string

	tab      int // 0..len(Apps)-1 apps, len(Apps) is general
	focus    int
	editing  bool
	input    textinput.Model
	fieldErr string

	testing  bool
	lastTest string
}

func newSettingsView() settingsView {
	input := textinput.New()
	input.CharLimit = 256
	return settingsView{input: input}
}

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldCount
	fieldToggle
)

// appField describes one editable row on an app tab.
type appField struct {
	label string
	kind  fieldKind
	get   func(*huntarr.AppSettings) string
	set   func(*huntarr.AppSettings, string) error
	getB  func(*huntarr.AppSettings) bool
	setB  func(*huntarr.AppSettings, bool)
}

var appFields = []appField{
	{
		label: "API URL",
		kind:  fieldText,
		get:   func(s *huntarr.AppSettings) string { return s.APIURL },
		set: func(s *huntarr.AppSettings, raw string) error {
			s.APIURL = huntarr.NormalizeAPIURL(raw)
			return nil
		},
	},
	{
		label: "API Key",
		kind:  fieldText,
		get:   func(s *huntarr.AppSettings) string { return s.APIKey },
		set: func(s *huntarr.AppSettings, raw string) error {
			s.APIKey = strings.TrimSpace(raw)
			return nil
		},
	},
	{
		label: "Hunt missing",
		kind:  fieldCount,
		get:   func(s *huntarr.AppSettings) string { return strconv.Itoa(s.HuntMissing) },
		set: func(s *huntarr.AppSettings, raw string) error {
			n, err := settings.ParseCount(raw)
			if err != nil {
				return err
			}
			s.HuntMissing = n
			return nil
		},
	},
	{
		label: "Hunt upgrades",
		kind:  fieldCount,
		get:   func(s *huntarr.AppSettings) string { return strconv.Itoa(s.HuntUpgrades) },
		set: func(s *huntarr.AppSettings, raw string) error {
			n, err := settings.ParseCount(raw)
			if err != nil {
				return err
			}
			s.HuntUpgrades = n
			return nil
		},
	},
	{
		label: "Interval (min)",
		kind:  fieldCount,
		get:   func(s *huntarr.AppSettings) string { return strconv.Itoa(s.IntervalMinutes) },
		set: func(s *huntarr.AppSettings, raw string) error {
			n, err := settings.ParseCount(raw)
			if err != nil {
				return err
			}
			s.IntervalMinutes = n
			return nil
		},
	},
	{
		label: "Monitored only",
		kind:  fieldToggle,
		getB:  func(s *huntarr.AppSettings) bool { return s.MonitoredOnly },
		setB:  func(s *huntarr.AppSettings, v bool) { s.MonitoredOnly = v },
	},
	{
		label: "Skip future releases",
		kind:  fieldToggle,
		getB:  func(s *huntarr.AppSettings) bool { return s.SkipFutureReleases },
		setB:  func(s *huntarr.AppSettings, v bool) { s.SkipFutureReleases = v },
	},
	{
		label: "Random missing",
		kind:  fieldToggle,
		getB:  func(s *huntarr.AppSettings) bool { return s.RandomMissing },
		setB:  func(s *huntarr.AppSettings, v bool) { s.RandomMissing = v },
	},
	{
		label: "Random upgrades",
		kind:  fieldToggle,
		getB:  func(s *huntarr.AppSettings) bool { return s.RandomUpgrades },
		setB:  func(s *huntarr.AppSettings, v bool) { s.RandomUpgrades = v },
	},
	{
		label: "Debug mode",
		kind:  fieldToggle,
		getB:  func(s *huntarr.AppSettings) bool { return s.DebugMode },
		setB:  func(s *huntarr.AppSettings, v bool) { s.DebugMode = v },
	},
	{
		label: "API timeout (s)",
		kind:  fieldCount,
		get:   func(s *huntarr.AppSettings) string { return strconv.Itoa(s.APITimeout) },
		set: func(s *huntarr.AppSettings, raw string) error {
			n, err := settings.ParseCount(raw)
			if err != nil {
				return err
			}
			s.APITimeout = n
			return nil
		},
	},
	{
		label: "Min queue size",
		kind:  fieldCount,
		get:   func(s *huntarr.AppSettings) string { return strconv.Itoa(s.MinimumDownloadQueueSize) },
		set: func(s *huntarr.AppSettings, raw string) error {
			n, err := settings.ParseCount(raw)
			if err != nil {
				return err
			}
			s.MinimumDownloadQueueSize = n
			return nil
		},
	},
}

// generalField describes one editable row on the general tab.
type generalField struct {
	label string
	kind  fieldKind
	get   func(*huntarr.GeneralSettings) string
	set   func(*huntarr.GeneralSettings, string) error
	getB  func(*huntarr.GeneralSettings) bool
	setB  func(*huntarr.GeneralSettings, bool)
}

var generalFields = []generalField{
	{
		label: "Timezone",
		kind:  fieldText,
		get:   func(s *huntarr.GeneralSettings) string { return s.Timezone },
		set: func(s *huntarr.GeneralSettings, raw string) error {
			s.Timezone = strings.TrimSpace(raw)
			return nil
		},
	},
	{
		label: "Dark mode",
		kind:  fieldToggle,
		getB:  func(s *huntarr.GeneralSettings) bool { return s.DarkMode },
		setB:  func(s *huntarr.GeneralSettings, v bool) { s.DarkMode = v },
	},
	{
		label: "Auto update",
		kind:  fieldToggle,
		getB:  func(s *huntarr.GeneralSettings) bool { return s.AutoUpdate },
		setB:  func(s *huntarr.GeneralSettings, v bool) { s.AutoUpdate = v },
	},
}

func settingsTabs() []string {
	return append(append([]string{}, huntarr.Apps...), settings.GeneralTab)
}

func (v *settingsView) currentTab() string {
	tabs := settingsTabs()
	if v.tab < 0 || v.tab >= len(tabs) {
		return tabs[0]
	}
	return tabs[v.tab]
}

func (v *settingsView) isGeneral() bool {
	return v.currentTab() == settings.GeneralTab
}

func (v *settingsView) fieldCount() int {
	if v.isGeneral() {
		return len(generalFields)
	}
	return len(appFields)
}

// enterSettings loads the bundle on first visit; the store's cache makes
// repeat visits free within the TTL.
func (m *Model) enterSettings() tea.Cmd {
	v := &m.settingsView
	if v.loading {
		return nil
	}
	v.loading = true
	v.loadErr = ""
	return loadSettingsCmd(m.ctx, m.settings, false)
}

func (m Model) handleSettingsLoaded(msg settingsLoadedMsg) (tea.Model, tea.Cmd) {
	v := &m.settingsView
	v.loading = false

	if msg.err != nil {
		if v.editor == nil {
			v.loadErr = msg.err.Error()
		} else {
			m.toastError("Settings refresh failed: " + msg.err.Error())
		}
		return m, nil
	}

	v.loadErr = ""
	if v.editor == nil {
		v.editor = settings.NewEditor(msg.bundle)
		return m, nil
	}
	// Never clobber unsaved edits with a background refresh.
	if !v.editor.DirtyAny() {
		v.editor.Adopt(msg.bundle)
	}
	return m, nil
}

func (m Model) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.settingsView
	if v.editor == nil {
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.enterSettings()
		}
		return m, nil
	}

	if v.editing {
		return m.handleSettingsEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Down):
		if v.focus < v.fieldCount()-1 {
			v.focus++
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if v.focus > 0 {
			v.focus--
		}
		return m, nil
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.ShiftTab):
		v.tab = (v.tab - 1 + len(settingsTabs())) % len(settingsTabs())
		v.focus = 0
		v.lastTest = ""
		return m, nil
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Tab):
		v.tab = (v.tab + 1) % len(settingsTabs())
		v.focus = 0
		v.lastTest = ""
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.beginFieldEdit()
	case key.Matches(msg, m.keys.Save):
		return m.saveSettingsTab()
	case key.Matches(msg, m.keys.Revert):
		v.editor.Revert(v.currentTab())
		m.toastInfo("Reverted " + v.currentTab())
		return m, nil
	case key.Matches(msg, m.keys.Reset):
		tab := v.currentTab()
		m.askConfirm(
			fmt.Sprintf("Reset %s settings to defaults?", tab),
			resetSettingsCmd(m.ctx, m.settings, tab),
		)
		return m, nil
	case key.Matches(msg, m.keys.Test):
		return m.testConnection()
	}
	return m, nil
}

// beginFieldEdit toggles booleans in place and opens the inline input for
// text and numeric fields.
func (m Model) beginFieldEdit() (tea.Model, tea.Cmd) {
	v := &m.settingsView

	if v.isGeneral() {
		field := generalFields[v.focus]
		draft := v.editor.DraftGeneral()
		if field.kind == fieldToggle {
			field.setB(draft, !field.getB(draft))
			return m, nil
		}
		v.editing = true
		v.fieldErr = ""
		v.input.SetValue(field.get(draft))
		v.input.CursorEnd()
		v.input.Focus()
		return m, nil
	}

	field := appFields[v.focus]
	draft := v.editor.Draft(v.currentTab())
	if field.kind == fieldToggle {
		field.setB(draft, !field.getB(draft))
		return m, nil
	}
	v.editing = true
	v.fieldErr = ""
	v.input.SetValue(field.get(draft))
	v.input.CursorEnd()
	v.input.Focus()
	return m, nil
}

func (m Model) handleSettingsEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.settingsView

	switch {
	case key.Matches(msg, m.keys.Confirm):
		if err := m.commitFieldEdit(); err != nil {
			v.fieldErr = err.Error()
			return m, nil
		}
		v.editing = false
		v.fieldErr = ""
		v.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Escape):
		v.editing = false
		v.fieldErr = ""
		v.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return m, cmd
}

// commitFieldEdit parses the inline input and writes it to the draft.
// Invalid numeric input is rejected with an explicit error, never coerced.
func (m *Model) commitFieldEdit() error {
	v := &m.settingsView
	raw := v.input.Value()

	if v.isGeneral() {
		return generalFields[v.focus].set(v.editor.DraftGeneral(), raw)
	}
	return appFields[v.focus].set(v.editor.Draft(v.currentTab()), raw)
}

func (m Model) saveSettingsTab() (tea.Model, tea.Cmd) {
	v := &m.settingsView
	tab := v.currentTab()

	if !v.editor.Dirty(tab) {
		m.toastInfo("No changes on " + tab)
		return m, nil
	}

	var payload any
	if v.isGeneral() {
		payload = v.editor.DraftGeneral()
	} else {
		payload = v.editor.Draft(tab)
	}
	m.toastInfo("Saving " + tab + "...")
	return m, saveSettingsCmd(m.ctx, m.settings, tab, payload)
}

func (m Model) handleSettingsSaved(msg settingsSavedMsg) (tea.Model, tea.Cmd) {
	v := &m.settingsView
	if msg.err != nil {
		m.toastError("Save failed: " + msg.err.Error())
		return m, nil
	}
	// Adopt the server's bundle so any normalization shows up immediately.
	v.editor.Adopt(msg.bundle)
	m.toastSuccess("Saved " + msg.app)
	return m, nil
}

func (m Model) handleSettingsReset(msg settingsResetMsg) (tea.Model, tea.Cmd) {
	v := &m.settingsView
	if msg.err != nil {
		m.toastError("Reset failed: " + msg.err.Error())
		return m, nil
	}
	v.editor.Adopt(msg.bundle)
	m.toastSuccess("Reset " + msg.app + " to defaults")
	return m, nil
}

// testConnection probes the draft's URL and key, so an operator can verify
// credentials before saving them.
func (m Model) testConnection() (tea.Model, tea.Cmd) {
	v := &m.settingsView
	if v.isGeneral() {
		return m, nil
	}
	draft := v.editor.Draft(v.currentTab())
	if strings.TrimSpace(draft.APIURL) == "" || strings.TrimSpace(draft.APIKey) == "" {
		v.lastTest = "API URL and key are required for a connection test"
		return m, nil
	}
	v.testing = true
	v.lastTest = ""
	return m, testConnectionCmd(m.ctx, m.client, v.currentTab(), draft.APIURL, draft.APIKey)
}

func (m Model) handleConnectionTest(msg connectionTestMsg) (tea.Model, tea.Cmd) {
	v := &m.settingsView
	v.testing = false

	if msg.err != nil {
		v.lastTest = "Connection test failed: " + msg.err.Error()
		m.toastError("Connection test failed")
		return m, nil
	}
	if msg.result.Success {
		v.lastTest = fmt.Sprintf("Connected to %s %s", msg.app, msg.result.Version)
		m.toastSuccess("Connection OK")
	} else {
		v.lastTest = firstNonEmpty(msg.result.Message, "Connection refused")
		m.toastError("Connection failed")
	}
	return m, nil
}

func (m Model) renderSettings() string {
	styles := m.theme.Styles()
	v := m.settingsView

	var b strings.Builder
	b.WriteString("\n")

	if v.editor == nil {
		switch {
		case v.loading:
			b.WriteString(styles.MutedText.Render("  Loading settings..."))
		case v.loadErr != "":
			b.WriteString(styles.DangerText.Render("  Failed to load settings: " + v.loadErr))
			b.WriteString("\n")
			b.WriteString(styles.FaintText.Render("  r retry"))
		default:
			b.WriteString(styles.MutedText.Render("  Loading settings..."))
		}
		return b.String()
	}

	// Tab bar
	var tabParts []string
	for i, tab := range settingsTabs() {
		label := tab
		if v.editor.Dirty(tab) {
			label += "*"
		}
		if i == v.tab {
			tabParts = append(tabParts, styles.Selected.Render(" "+label+" "))
			continue
		}
		tabParts = append(tabParts, styles.MutedText.Render(" "+label+" "))
	}
	b.WriteString("  " + strings.Join(tabParts, ""))
	b.WriteString("\n\n")

	// Field rows
	if v.isGeneral() {
		draft := v.editor.DraftGeneral()
		for i, field := range generalFields {
			b.WriteString(m.renderSettingsRow(field.label, generalValue(field, draft), field.kind, i))
		}
	} else {
		draft := v.editor.Draft(v.currentTab())
		for i, field := range appFields {
			b.WriteString(m.renderSettingsRow(field.label, appValue(field, draft), field.kind, i))
		}
	}

	if v.fieldErr != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("  " + v.fieldErr))
		b.WriteString("\n")
	}
	if v.testing {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("  Testing connection..."))
		b.WriteString("\n")
	} else if v.lastTest != "" {
		b.WriteString("\n")
		b.WriteString(styles.InfoText.Render("  " + v.lastTest))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	hints := "  enter edit/toggle · h/l tab · ctrl+s save · ctrl+r revert · ctrl+x defaults"
	if !v.isGeneral() {
		hints += " · ctrl+t test"
	}
	b.WriteString(styles.FaintText.Render(hints))
	return b.String()
}

func (m Model) renderSettingsRow(label, value string, kind fieldKind, idx int) string {
	styles := m.theme.Styles()
	v := m.settingsView
	focused := v.focus == idx

	if focused && v.editing && kind != fieldToggle {
		return renderField(styles, label, v.input.View(), true)
	}
	if kind == fieldToggle {
		return renderField(styles, label, value, focused)
	}
	if value == "" {
		value = styles.FaintText.Render("(not set)")
	}
	return renderField(styles, label, styles.Text.Render(value), focused)
}

func appValue(field appField, draft *huntarr.AppSettings) string {
	if field.kind == fieldToggle {
		return renderToggle(field.getB(draft))
	}
	return field.get(draft)
}

func generalValue(field generalField, draft *huntarr.GeneralSettings) string {
	if field.kind == fieldToggle {
		return renderToggle(field.getB(draft))
	}
	return field.get(draft)
}

func renderToggle(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
