package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fiala06/Huntarr.io/internal/auth"
)

// setupView is the first-run account creation form.
type setupView struct {
	username textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focus    int
	errMsg   string
	busy     bool
}

func newSetupView() setupView {
	username := textinput.New()
	username.Placeholder = "choose a username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "at least 10 characters"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	confirm := textinput.New()
	confirm.Placeholder = "repeat password"
	confirm.EchoMode = textinput.EchoPassword
	confirm.CharLimit = 128

	return setupView{username: username, password: password, confirm: confirm}
}

func (v *setupView) setFocus(idx int) {
	v.focus = (idx + 3) % 3
	inputs := []*textinput.Model{&v.username, &v.password, &v.confirm}
	for i, input := range inputs {
		if i == v.focus {
			input.Focus()
			continue
		}
		input.Blur()
	}
}

func (m Model) handleSetupKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.setupForm
	if v.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Tab), msg.String() == "down":
		v.setFocus(v.focus + 1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab), msg.String() == "up":
		v.setFocus(v.focus - 1)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		username := strings.TrimSpace(v.username.Value())
		if err := auth.ValidateSetup(username, v.password.Value(), v.confirm.Value()); err != nil {
			v.errMsg = err.Error()
			return m, nil
		}
		v.busy = true
		v.errMsg = ""
		return m, setupCmd(m.ctx, m.client, username, v.password.Value(), v.confirm.Value())
	}

	var cmd tea.Cmd
	switch v.focus {
	case 0:
		v.username, cmd = v.username.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	case 2:
		v.confirm, cmd = v.confirm.Update(msg)
	}
	return m, cmd
}

func (m Model) handleSetupDone(msg setupDoneMsg) (tea.Model, tea.Cmd) {
	v := &m.setupForm
	v.busy = false

	if msg.err != nil {
		v.errMsg = "Setup failed: " + msg.err.Error()
		return m, nil
	}

	// Account created; hand over to the login form with the name prefilled.
	m.needsSetup = false
	m.toastSuccess("Account created, sign in to continue")
	m.loginForm = newLoginView()
	m.loginForm.username.SetValue(msg.username)
	m.loginForm.setFocus(1)
	return m, nil
}

func (m Model) renderSetup() string {
	styles := m.theme.Styles()
	v := m.setupForm

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(styles.Text.Bold(true).Render("  Welcome to Huntarr"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  Create the administrator account to get started."))
	b.WriteString("\n\n")
	b.WriteString(renderField(styles, "Username", v.username.View(), v.focus == 0))
	b.WriteString(renderField(styles, "Password", v.password.View(), v.focus == 1))
	b.WriteString(renderField(styles, "Confirm", v.confirm.View(), v.focus == 2))
	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("  " + v.errMsg))
		b.WriteString("\n")
	}
	if v.busy {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("  Creating account..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("  enter create · tab next field"))
	return b.String()
}
