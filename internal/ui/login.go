package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fiala06/Huntarr.io/internal/auth"
	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

// loginView is the credential form, including the second-factor branch.
type loginView struct {
	username  textinput.Model
	password  textinput.Model
	otp       textinput.Model
	focus     int
	challenge bool
	errMsg    string
	busy      bool
}

func newLoginView() loginView {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128

	otp := textinput.New()
	otp.Placeholder = "6-digit code"
	otp.CharLimit = 6

	return loginView{username: username, password: password, otp: otp}
}

func (v *loginView) fieldCount() int {
	if v.challenge {
		return 3
	}
	return 2
}

func (v *loginView) setFocus(idx int) {
	v.focus = (idx + v.fieldCount()) % v.fieldCount()
	inputs := []*textinput.Model{&v.username, &v.password, &v.otp}
	for i, input := range inputs {
		if i == v.focus {
			input.Focus()
			continue
		}
		input.Blur()
	}
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.loginForm
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
		return m.submitLogin()
	case key.Matches(msg, m.keys.Escape):
		if v.challenge {
			// Back out of the second-factor prompt to plain credentials.
			v.challenge = false
			v.otp.SetValue("")
			v.errMsg = ""
			v.setFocus(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch v.focus {
	case 0:
		v.username, cmd = v.username.Update(msg)
	case 1:
		v.password, cmd = v.password.Update(msg)
	case 2:
		v.otp, cmd = v.otp.Update(msg)
	}
	return m, cmd
}

func (m Model) submitLogin() (tea.Model, tea.Cmd) {
	v := &m.loginForm
	username := strings.TrimSpace(v.username.Value())
	password := v.password.Value()
	if username == "" || password == "" {
		v.errMsg = "Username and password are required"
		return m, nil
	}

	creds := huntarr.Credentials{Username: username, Password: password}
	if v.challenge {
		code := strings.TrimSpace(v.otp.Value())
		if err := auth.ValidateOTP(code); err != nil {
			v.errMsg = err.Error()
			return m, nil
		}
		creds.OTPCode = code
	}

	v.busy = true
	v.errMsg = ""
	return m, loginCmd(m.ctx, m.session, creds)
}

func (m Model) handleLoginDone(msg loginDoneMsg) (tea.Model, tea.Cmd) {
	v := &m.loginForm
	v.busy = false

	if msg.err != nil {
		v.errMsg = "Login failed: " + msg.err.Error()
		return m, nil
	}

	switch msg.result.Outcome {
	case huntarr.LoginSucceeded:
		m.toastSuccess("Welcome back")
		m.loginForm = newLoginView()
		return m, tea.Batch(
			probeCmd(m.ctx, m.session),
			loadSettingsCmd(m.ctx, m.settings, true),
		)

	case huntarr.LoginChallenge:
		wasChallenge := v.challenge
		v.challenge = true
		v.otp.SetValue("")
		v.setFocus(2)
		if wasChallenge {
			v.errMsg = firstNonEmpty(msg.result.Message, "Invalid two-factor code")
		} else {
			v.errMsg = ""
		}
		return m, nil

	default:
		v.errMsg = firstNonEmpty(msg.result.Message, "Invalid username or password")
		v.password.SetValue("")
		v.setFocus(1)
		return m, nil
	}
}

func (m Model) renderLogin() string {
	styles := m.theme.Styles()
	v := m.loginForm

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(styles.Text.Bold(true).Render("  Sign in"))
	b.WriteString("\n\n")
	b.WriteString(renderField(styles, "Username", v.username.View(), v.focus == 0))
	b.WriteString(renderField(styles, "Password", v.password.View(), v.focus == 1))
	if v.challenge {
		b.WriteString(renderField(styles, "2FA Code", v.otp.View(), v.focus == 2))
	}
	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("  " + v.errMsg))
		b.WriteString("\n")
	}
	if v.busy {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("  Signing in..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render("  enter submit · tab next field"))
	if v.challenge {
		b.WriteString(styles.FaintText.Render(" · esc back"))
	}
	return b.String()
}

// renderField renders one labelled form row.
func renderField(styles Styles, label, input string, focused bool) string {
	marker := "  "
	labelStyle := styles.MutedText
	if focused {
		marker = styles.AccentText.Render("> ")
		labelStyle = styles.AccentText
	}
	return marker + labelStyle.Width(12).Render(label) + input + "\n"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
