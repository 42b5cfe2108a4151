package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/easyloft/easyloft-client/internal/domain"
	"github.com/easyloft/easyloft-client/internal/validate"
)

// authMode selects which sign-in form is shown.
type authMode int

const (
	authLogin authMode = iota
	authRegister
	authForgot
	authReset
)

func (a authMode) title() string {
	switch a {
	case authRegister:
		return "Create your account"
	case authForgot:
		return "Forgot password"
	case authReset:
		return "Choose a new password"
	default:
		return "Sign in to EasyLoft"
	}
}

func authForm(mode authMode) *form {
	var f *form
	switch mode {
	case authRegister:
		f = newForm(mode.title(),
			fieldSpec{key: "name", label: "Name"},
			fieldSpec{key: "email", label: "Email", placeholder: "you@example.com"},
			fieldSpec{key: "phone", label: "Phone", placeholder: "optional"},
			fieldSpec{key: "password", label: "Password", placeholder: "at least 6 characters", secret: true},
		)
	case authForgot:
		f = newForm(mode.title(),
			fieldSpec{key: "email", label: "Email", placeholder: "you@example.com"},
		)
		f.hint = "We will email you a reset token."
	case authReset:
		f = newForm(mode.title(),
			fieldSpec{key: "token", label: "Reset token"},
			fieldSpec{key: "password", label: "New password", secret: true},
			fieldSpec{key: "confirmPassword", label: "Confirm", secret: true},
		)
	default:
		f = newForm(mode.title(),
			fieldSpec{key: "email", label: "Email", placeholder: "you@example.com"},
			fieldSpec{key: "password", label: "Password", secret: true},
		)
	}
	return f
}

func (m *Model) openAuthForm(mode authMode) {
	m.authMode = mode
	m.form = authForm(mode)
	m.formKind = formAuth
	m.editingID = ""
}

func (m Model) authModeFor(msg tea.KeyMsg) (authMode, bool) {
	switch {
	case key.Matches(msg, m.keys.ModeLogin):
		return authLogin, true
	case key.Matches(msg, m.keys.ModeRegister):
		return authRegister, true
	case key.Matches(msg, m.keys.ModeForgot):
		return authForgot, true
	case key.Matches(msg, m.keys.ModeReset):
		return authReset, true
	}
	return 0, false
}

// submitAuth validates the sign-in form for the current mode.
func (m Model) submitAuth() (tea.Cmd, error) {
	f := m.form
	switch m.authMode {
	case authRegister:
		in := domain.RegisterInput{
			Name:     f.Value("name"),
			Email:    f.Value("email"),
			Phone:    f.Value("phone"),
			Password: f.Value("password"),
		}
		if err := validate.Struct(in); err != nil {
			return nil, err
		}
		return m.registerCmd(in), nil
	case authForgot:
		in := domain.ForgotPasswordInput{Email: f.Value("email")}
		if err := validate.Struct(in); err != nil {
			return nil, err
		}
		return m.forgotCmd(in.Email), nil
	case authReset:
		in := domain.ResetPasswordInput{
			Token:           f.Value("token"),
			Password:        f.Value("password"),
			ConfirmPassword: f.Value("confirmPassword"),
		}
		if err := validate.Struct(in); err != nil {
			return nil, err
		}
		return m.resetCmd(in.Token, in.Password), nil
	default:
		in := domain.LoginInput{Email: f.Value("email"), Password: f.Value("password")}
		if err := validate.Struct(in); err != nil {
			return nil, err
		}
		return m.loginCmd(in.Email, in.Password), nil
	}
}

func (m Model) renderSignIn() string {
	styles := m.theme.Styles()
	var b strings.Builder
	if m.form != nil {
		b.WriteString(m.form.view(m.theme))
	}
	b.WriteString("\n\n")

	modes := []struct {
		binding key.Binding
		mode    authMode
	}{
		{m.keys.ModeLogin, authLogin},
		{m.keys.ModeRegister, authRegister},
		{m.keys.ModeForgot, authForgot},
		{m.keys.ModeReset, authReset},
	}
	var links []string
	for _, item := range modes {
		if item.mode == m.authMode {
			continue
		}
		h := item.binding.Help()
		links = append(links, styles.AccentText.Render(h.Key)+" "+styles.MutedText.Render(h.Desc))
	}
	b.WriteString(strings.Join(links, "   "))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(64)
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center, box.Render(b.String()))
}

func (m *Model) openProfileForm() {
	if m.authSnap.User == nil {
		return
	}
	u := m.authSnap.User
	m.form = newForm("Profile",
		fieldSpec{key: "name", label: "Name", value: u.Name},
		fieldSpec{key: "phone", label: "Phone", value: u.Phone},
	)
	m.form.hint = "Signed in as " + u.Email
	m.formKind = formProfile
}

func (m Model) submitProfile() (tea.Cmd, error) {
	name := m.form.Value("name")
	if name == "" {
		return nil, validate.Errors{{Field: "name", Message: "is required"}}
	}
	phone := m.form.Value("phone")
	return m.profileCmd(domain.ProfileUpdate{Name: &name, Phone: &phone}), nil
}
