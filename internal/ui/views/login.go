// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
)

// LoginState is the per-attempt login state.
type LoginState int

const (
	LoginIdle LoginState = iota
	LoginSubmitting
	LoginAuthenticated
	LoginFailed
)

func (s LoginState) String() string {
	switch s {
	case LoginSubmitting:
		return "Submitting"
	case LoginAuthenticated:
		return "Authenticated"
	case LoginFailed:
		return "Failed"
	default:
		return "Idle"
	}
}

type loginResultMsg struct {
	result service.LoginResult
	err    error
}

// LoginView is the sign-in form.
type LoginView struct {
	env     *Env
	route   router.Route
	form    *form
	spinner spinner.Model
	help    help.Model
	state   LoginState
	status  statusLine
	target  router.Route
}

// NewLoginView builds the form for route (/ or /login).
func NewLoginView(env *Env, route router.Route) *LoginView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &LoginView{
		env:   env,
		route: route,
		form: newForm(
			fieldSpec{label: "Username", placeholder: "username"},
			fieldSpec{label: "Password", placeholder: "password", secret: true},
		),
		spinner: sp,
		help:    help.New(),
	}
}

func (l *LoginView) Route() router.Route { return l.route }

// State returns the current login state.
func (l *LoginView) State() LoginState { return l.state }

// Err returns the displayed error, if any.
func (l *LoginView) Err() string {
	if l.status.isErr {
		return l.status.text
	}
	return ""
}

func (l *LoginView) Init() tea.Cmd {
	return l.form.setFocus(0)
}

func (l *LoginView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		return l, l.finish(msg)

	case spinner.TickMsg:
		if l.state != LoginSubmitting {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case tea.KeyMsg:
		// The form is disabled while submitting and after success.
		if l.state == LoginSubmitting || l.state == LoginAuthenticated {
			return l, nil
		}
		if key.Matches(msg, formKeys.Submit) {
			if msg.Type == tea.KeyEnter && !l.form.onLast() {
				return l, l.form.setFocus(l.form.focus + 1)
			}
			return l, l.submit()
		}
		if l.state == LoginFailed {
			l.state = LoginIdle
		}
		return l, l.form.update(msg)
	}
	return l, nil
}

// submit enters Submitting and starts the request. Only one attempt is in
// flight at a time.
func (l *LoginView) submit() tea.Cmd {
	if l.state == LoginSubmitting {
		return nil
	}
	l.state = LoginSubmitting
	l.status.clear()
	creds := service.Credentials{Username: l.form.value(0), Password: l.form.rawValue(1)}
	return tea.Batch(l.spinner.Tick, l.login(creds))
}

func (l *LoginView) login(creds service.Credentials) tea.Cmd {
	return func() tea.Msg {
		res, err := l.env.Service.Login(l.env.Ctx, creds)
		return loginResultMsg{result: res, err: err}
	}
}

func (l *LoginView) finish(msg loginResultMsg) tea.Cmd {
	if msg.err != nil {
		l.state = LoginFailed
		l.status.fail(l.env.errorText(msg.err))
		return nil
	}

	switch res := msg.result.(type) {
	case service.Authenticated:
		l.state = LoginAuthenticated
		l.target = router.RouteForRole(string(res.Session.User.Role))
		l.status.ok("Login successful! Redirecting...")
		target := l.target
		return tea.Tick(l.env.RedirectDelay, func(time.Time) tea.Msg {
			return NavigateMsg{Route: target}
		})
	case service.Rejected:
		l.state = LoginFailed
		l.status.fail(res.Reason)
	default:
		l.state = LoginFailed
		l.status.fail("Login failed.")
	}
	return nil
}

func (l *LoginView) View() string {
	t := l.env.Theme
	var b strings.Builder

	b.WriteString(t.Title.Render("RBAC User Login"))
	b.WriteString("\n\n")
	b.WriteString(l.form.view(t))
	b.WriteString("\n\n")

	switch l.state {
	case LoginSubmitting:
		b.WriteString(t.Disabled.Render(l.spinner.View() + " Signing in..."))
	case LoginAuthenticated:
		b.WriteString(t.Disabled.Render("Login"))
	default:
		b.WriteString(t.ButtonActive.Render("Login"))
	}

	if s := l.status.render(l.env); s != "" {
		b.WriteString("\n\n" + s)
	}
	b.WriteString("\n\n" + l.help.View(formKeys))

	return t.Card.Render(lipgloss.NewStyle().Width(44).Render(b.String()))
}
