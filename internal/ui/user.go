package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Fiala06/Huntarr.io/internal/auth"
	"github.com/Fiala06/Huntarr.io/internal/huntarr"
)

type userMode int

const (
	userMenu userMode = iota
	userUsername
	userPassword
	userTwoFASetup
	userTwoFADisable
)

// userView is the account screen: credential changes and two-factor control.
type userView struct {
	mode    userMode
	menuIdx int

	inputs []textinput.Model
	focus  int
	errMsg string
	busy   bool

	twofa *huntarr.TwoFactorSetup
}

func newUserView() userView {
	return userView{}
}

type userMenuItem struct {
	label string
	mode  userMode
}

func (m Model) userMenuItems() []userMenuItem {
	items := []userMenuItem{
		{"Change username", userUsername},
		{"Change password", userPassword},
	}
	if user := m.session.User(); user != nil && user.Is2FAEnabled {
		items = append(items, userMenuItem{"Disable two-factor auth", userTwoFADisable})
	} else {
		items = append(items, userMenuItem{"Enable two-factor auth", userTwoFASetup})
	}
	items = append(items, userMenuItem{"Sign out", userMenu})
	return items
}

func newUserInputs(specs ...textinput.Model) []textinput.Model {
	if len(specs) > 0 {
		specs[0].Focus()
	}
	return specs
}

func passwordInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.EchoMode = textinput.EchoPassword
	input.CharLimit = 128
	return input
}

func textInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = 64
	return input
}

func (v *userView) setFocus(idx int) {
	if len(v.inputs) == 0 {
		return
	}
	v.focus = (idx + len(v.inputs)) % len(v.inputs)
	for i := range v.inputs {
		if i == v.focus {
			v.inputs[i].Focus()
			continue
		}
		v.inputs[i].Blur()
	}
}

func (m Model) handleUserKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v := &m.userView
	if v.busy {
		return m, nil
	}

	if v.mode == userMenu {
		switch {
		case key.Matches(msg, m.keys.Down):
			if v.menuIdx < len(m.userMenuItems())-1 {
				v.menuIdx++
			}
		case key.Matches(msg, m.keys.Up):
			if v.menuIdx > 0 {
				v.menuIdx--
			}
		case key.Matches(msg, m.keys.Confirm):
			return m.enterUserAction()
		}
		return m, nil
	}

	// Inside a form j/k must type, so only the arrow variants move focus.
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.userView = newUserView()
		return m, nil
	case key.Matches(msg, m.keys.Tab), msg.String() == "down":
		v.setFocus(v.focus + 1)
		return m, nil
	case key.Matches(msg, m.keys.ShiftTab), msg.String() == "up":
		v.setFocus(v.focus - 1)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.submitUserForm()
	}

	var cmd tea.Cmd
	if v.focus < len(v.inputs) {
		v.inputs[v.focus], cmd = v.inputs[v.focus].Update(msg)
	}
	return m, cmd
}

func (m Model) enterUserAction() (tea.Model, tea.Cmd) {
	v := &m.userView
	items := m.userMenuItems()
	item := items[v.menuIdx]

	if item.label == "Sign out" {
		m.askConfirm("Sign out?", logoutCmd(m.ctx, m.session))
		return m, nil
	}

	v.mode = item.mode
	v.focus = 0
	v.errMsg = ""

	switch item.mode {
	case userUsername:
		v.inputs = newUserInputs(textInput("new username"), passwordInput("current password"))
	case userPassword:
		v.inputs = newUserInputs(passwordInput("current password"), passwordInput("new password"), passwordInput("repeat new password"))
	case userTwoFASetup:
		v.inputs = newUserInputs(textInput("6-digit code from your app"))
		v.busy = true
		return m, twoFASetupCmd(m.ctx, m.client)
	case userTwoFADisable:
		v.inputs = newUserInputs(passwordInput("current password"), textInput("6-digit code"))
	}
	return m, nil
}

func (m Model) submitUserForm() (tea.Model, tea.Cmd) {
	v := &m.userView

	switch v.mode {
	case userUsername:
		username := strings.TrimSpace(v.inputs[0].Value())
		password := v.inputs[1].Value()
		if len(username) < 3 {
			v.errMsg = "Username must be at least 3 characters"
			return m, nil
		}
		if password == "" {
			v.errMsg = "Current password is required"
			return m, nil
		}
		v.busy = true
		v.errMsg = ""
		return m, changeUsernameCmd(m.ctx, m.client, username, password)

	case userPassword:
		current := v.inputs[0].Value()
		next := v.inputs[1].Value()
		confirm := v.inputs[2].Value()
		if current == "" {
			v.errMsg = "Current password is required"
			return m, nil
		}
		if len(next) < 10 {
			v.errMsg = "Password must be at least 10 characters"
			return m, nil
		}
		if next != confirm {
			v.errMsg = "Passwords do not match"
			return m, nil
		}
		v.busy = true
		v.errMsg = ""
		return m, changePasswordCmd(m.ctx, m.client, current, next)

	case userTwoFASetup:
		code := strings.TrimSpace(v.inputs[0].Value())
		if err := auth.ValidateOTP(code); err != nil {
			v.errMsg = err.Error()
			return m, nil
		}
		v.busy = true
		v.errMsg = ""
		return m, twoFAVerifyCmd(m.ctx, m.client, code)

	case userTwoFADisable:
		password := v.inputs[0].Value()
		code := strings.TrimSpace(v.inputs[1].Value())
		if password == "" {
			v.errMsg = "Current password is required"
			return m, nil
		}
		if err := auth.ValidateOTP(code); err != nil {
			v.errMsg = err.Error()
			return m, nil
		}
		v.busy = true
		v.errMsg = ""
		return m, twoFADisableCmd(m.ctx, m.client, password, code)
	}
	return m, nil
}

func (m Model) handleAccountUpdated(msg accountUpdatedMsg) (tea.Model, tea.Cmd) {
	v := &m.userView
	v.busy = false

	if msg.err != nil {
		v.errMsg = msg.err.Error()
		return m, nil
	}

	// The server invalidates the session after either credential change.
	if msg.what == "password" {
		m.toastSuccess("Password changed, signing out...")
	} else {
		m.toastSuccess("Username changed, signing out...")
	}
	m.userView = newUserView()
	return m, delayedLogoutCmd(2 * time.Second)
}

func (m Model) handleTwoFASetup(msg twoFASetupMsg) (tea.Model, tea.Cmd) {
	v := &m.userView
	v.busy = false

	if msg.err != nil {
		v.errMsg = "Could not start enrolment: " + msg.err.Error()
		v.mode = userMenu
		return m, nil
	}
	v.twofa = msg.setup
	return m, nil
}

func (m Model) handleTwoFAVerified(msg twoFAVerifiedMsg) (tea.Model, tea.Cmd) {
	v := &m.userView
	v.busy = false

	if msg.err != nil {
		v.errMsg = msg.err.Error()
		return m, nil
	}
	m.toastSuccess("Two-factor authentication enabled")
	m.userView = newUserView()
	m.session.InvalidateUser()
	return m, probeCmd(m.ctx, m.session)
}

func (m Model) handleTwoFADisabled(msg twoFADisabledMsg) (tea.Model, tea.Cmd) {
	v := &m.userView
	v.busy = false

	if msg.err != nil {
		v.errMsg = msg.err.Error()
		return m, nil
	}
	m.toastSuccess("Two-factor authentication disabled")
	m.userView = newUserView()
	m.session.InvalidateUser()
	return m, probeCmd(m.ctx, m.session)
}

func (m Model) renderUser() string {
	styles := m.theme.Styles()
	v := m.userView

	var b strings.Builder
	b.WriteString("\n")

	user := m.session.User()
	if user != nil {
		line := "  Signed in as " + user.Username
		if user.Is2FAEnabled {
			line += " · two-factor enabled"
		}
		b.WriteString(styles.MutedText.Render(line))
		b.WriteString("\n\n")
	}

	switch v.mode {
	case userMenu:
		for i, item := range m.userMenuItems() {
			if i == v.menuIdx {
				b.WriteString(styles.Selected.Render(" " + item.label + " "))
			} else {
				b.WriteString(styles.Text.Render("  " + item.label))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("  j/k select · enter confirm"))

	case userUsername:
		b.WriteString(styles.Text.Bold(true).Render("  Change username"))
		b.WriteString("\n\n")
		b.WriteString(renderField(styles, "Username", v.inputs[0].View(), v.focus == 0))
		b.WriteString(renderField(styles, "Password", v.inputs[1].View(), v.focus == 1))
		b.WriteString(m.renderUserFooter())

	case userPassword:
		b.WriteString(styles.Text.Bold(true).Render("  Change password"))
		b.WriteString("\n\n")
		b.WriteString(renderField(styles, "Current", v.inputs[0].View(), v.focus == 0))
		b.WriteString(renderField(styles, "New", v.inputs[1].View(), v.focus == 1))
		b.WriteString(renderField(styles, "Confirm", v.inputs[2].View(), v.focus == 2))
		b.WriteString(styles.WarningText.Render("  Changing the password signs you out."))
		b.WriteString("\n")
		b.WriteString(m.renderUserFooter())

	case userTwoFASetup:
		b.WriteString(styles.Text.Bold(true).Render("  Enable two-factor authentication"))
		b.WriteString("\n\n")
		if v.twofa == nil {
			b.WriteString(styles.MutedText.Render("  Requesting enrolment secret..."))
			break
		}
		b.WriteString(styles.MutedText.Render("  Scan the QR code or enter the secret in your authenticator app:"))
		b.WriteString("\n\n")
		b.WriteString(styles.InfoText.Render("  " + v.twofa.QRCodeURL))
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Render("  Secret: " + v.twofa.Secret))
		b.WriteString("\n\n")
		b.WriteString(renderField(styles, "Code", v.inputs[0].View(), true))
		b.WriteString(m.renderUserFooter())

	case userTwoFADisable:
		b.WriteString(styles.Text.Bold(true).Render("  Disable two-factor authentication"))
		b.WriteString("\n\n")
		b.WriteString(renderField(styles, "Password", v.inputs[0].View(), v.focus == 0))
		b.WriteString(renderField(styles, "Code", v.inputs[1].View(), v.focus == 1))
		b.WriteString(m.renderUserFooter())
	}

	if v.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render("  " + v.errMsg))
	}
	if v.busy {
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("  Working..."))
	}
	return b.String()
}

func (m Model) renderUserFooter() string {
	return m.theme.Styles().FaintText.Render("  enter submit · esc back")
}
