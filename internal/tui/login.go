package tui

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hackspark/hackspark/internal/session"
	"github.com/hackspark/hackspark/pkg/client"
	"github.com/hackspark/hackspark/pkg/domain"
	"github.com/hackspark/hackspark/pkg/schema"
)

// minPasswordLen matches the web sign-in form.
const minPasswordLen = 8

const (
	focusEmail = iota
	focusPassword
	focusRemember
	loginFieldCount
)

type loginModel struct {
	sessions   Sessions
	email      string
	password   string
	remember   bool
	focus      int
	fieldErrs  map[string]string
	formErr    string
	submitting bool
	width      int
	height     int
}

func newLoginModel(s Sessions) loginModel {
	return loginModel{sessions: s}
}

func (m loginModel) request() domain.LoginRequest {
	return domain.LoginRequest{
		Email:    strings.TrimSpace(m.email),
		Password: m.password,
		Remember: m.remember,
	}
}

// validateLogin returns per-field messages for the sign-in form, keyed by
// JSON field name. An empty map means the form can be submitted.
func validateLogin(req domain.LoginRequest) map[string]string {
	errs := map[string]string{}
	var verr *schema.ValidationError
	if err := req.Validate(); errors.As(err, &verr) {
		for _, f := range verr.Fields {
			switch f.Path {
			case "email":
				errs["email"] = "Please enter a valid email address"
			case "password":
				errs["password"] = "Password is required"
			}
		}
	}
	if _, ok := errs["password"]; !ok && utf8.RuneCountInString(req.Password) < minPasswordLen {
		errs["password"] = "Password must be at least 8 characters"
	}
	return errs
}

// loginFailure turns a sign-in error into a message safe to show the user.
func loginFailure(err error) string {
	if client.IsKind(err, client.KindTransport) {
		return "Cannot reach HackSpark right now. Try again in a moment."
	}
	if errors.Is(err, session.ErrPinned) {
		return "Signed in by HACKSPARK_SESSION. Unset it to switch accounts."
	}
	return "Invalid email or password"
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	req := m.request()
	m.fieldErrs = validateLogin(req)
	m.formErr = ""
	if len(m.fieldErrs) > 0 {
		return m, nil
	}
	m.submitting = true
	s := m.sessions
	return m, func() tea.Msg {
		user, err := s.Login(context.Background(), req)
		return loggedInMsg{user: user, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case loggedInMsg:
		m.submitting = false
		if msg.err != nil {
			m.password = ""
			m.formErr = loginFailure(msg.err)
			return m, nil
		}
		m.formErr = ""

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, navigateCmd(pathHome)
		case "tab", "down":
			m.focus = (m.focus + 1) % loginFieldCount
			return m, nil
		case "shift+tab", "up":
			m.focus = (m.focus + loginFieldCount - 1) % loginFieldCount
			return m, nil
		case "enter":
			if m.focus < focusRemember {
				m.focus++
				return m, nil
			}
			return m.submit()
		case "ctrl+s":
			return m.submit()
		}

		switch m.focus {
		case focusEmail:
			m.email = editRune(m.email, msg.String())
			delete(m.fieldErrs, "email")
		case focusPassword:
			m.password = editRune(m.password, msg.String())
			delete(m.fieldErrs, "password")
		case focusRemember:
			if msg.String() == "space" || msg.String() == " " {
				m.remember = !m.remember
			}
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Sign in") + "\n")
	b.WriteString("  " + dimStyle.Render("Welcome back. Pick up where you left off.") + "\n\n")

	b.WriteString(renderField("Email", m.email, "you@example.com", m.focus == focusEmail, m.fieldErrs["email"]))
	b.WriteString(renderField("Password", mask(m.password), "at least 8 characters", m.focus == focusPassword, m.fieldErrs["password"]))

	box := "[ ]"
	if m.remember {
		box = accentStyle.Render("[x]")
	}
	label := dimStyle.Render("Remember me for 30 days")
	if m.focus == focusRemember {
		label = selectedStyle.Render("Remember me for 30 days")
		b.WriteString("  " + inputPromptStyle.Render("> ") + box + " " + label + "\n")
	} else {
		b.WriteString("    " + box + " " + label + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("Signing in...") + "\n")
	case m.formErr != "":
		b.WriteString("  " + errorStyle.Render(m.formErr) + "\n")
	}
	return b.String()
}
