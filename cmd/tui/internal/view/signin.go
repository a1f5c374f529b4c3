package view

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/biztrack/internal/auth"
)

// Authenticator is the part of *auth.Service the sign-in screen needs.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*auth.User, error)
	SignUp(ctx context.Context, p auth.SignUpParams) (*auth.User, error)
}

// SignedInMsg carries the account that just signed in or signed up.
type SignedInMsg struct {
	User *auth.User
}

type signInFields struct {
	signUp      bool
	email       string
	password    string
	displayName string
}

type SignInModel struct {
	CommonModel
	auth Authenticator

	form    *huh.Form
	fields  *signInFields
	pending bool
	err     string
}

func NewSignInModel(a Authenticator) SignInModel {
	m := SignInModel{auth: a, fields: &signInFields{}}
	m.form = m.buildForm()

	return m
}

func (m SignInModel) Title() string { return "Sign In" }

func (m SignInModel) ShortHelp() string {
	return "Tab: next field | Enter: submit | Ctrl+C: quit"
}

func (m SignInModel) buildForm() *huh.Form {
	f := m.fields

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[bool]().
				Title("BizTrack").
				Options(
					huh.NewOption("Sign in", false),
					huh.NewOption("Create an account", true),
				).
				Value(&f.signUp),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&f.email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Your name").
				Value(&f.displayName),
		).WithHideFunc(func() bool { return !f.signUp }),
	).WithWidth(50).WithShowHelp(false)
}

func (m SignInModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m SignInModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(signInResultMsg); ok {
		m.pending = false

		if res.err != nil {
			m.err = auth.Message(res.err)
			m.fields.password = ""
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return SignedInMsg{User: res.user} }
	}

	if m.pending {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.pending = true
	m.err = ""

	return m, m.submitCmd(*m.fields)
}

type signInResultMsg struct {
	user *auth.User
	err  error
}

func (m SignInModel) submitCmd(f signInFields) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := OpCtx()
		defer cancel()

		if f.signUp {
			u, err := m.auth.SignUp(ctx, auth.SignUpParams{
				Email:       f.email,
				Password:    f.password,
				DisplayName: strings.TrimSpace(f.displayName),
			})

			return signInResultMsg{user: u, err: err}
		}

		u, err := m.auth.SignIn(ctx, f.email, f.password)

		return signInResultMsg{user: u, err: err}
	}
}

func (m SignInModel) View() string {
	if m.pending {
		return lipgloss.NewStyle().Padding(2).Render("Signing in...")
	}

	content := m.form.View()
	if m.err != "" {
		content = errorStyle.Render(m.err) + "\n\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}
