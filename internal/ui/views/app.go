// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/rbac-console/internal/logging"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/session"
)

// maxRedirects bounds how many navigations one message may chain.
const maxRedirects = 4

// App is the root bubbletea model. It owns the active view and is the
// gate's Navigator, so redirects raised during an update are applied once
// that update returns.
type App struct {
	env        *Env
	view       View
	route      router.Route
	pending    router.Route
	hasPending bool
	watcher    *session.Watcher
	width      int
	height     int
	initCmd    tea.Cmd
	notice     string
	log        zerolog.Logger
}

// NewApp builds the root model starting at start. watcher may be nil.
func NewApp(env *Env, start router.Route, watcher *session.Watcher) *App {
	a := &App{env: env, watcher: watcher, log: logging.Component("app")}
	env.Gate.SetNavigator(a)
	a.initCmd = tea.Batch(a.switchTo(start), a.settle())
	return a
}

// Navigate queues a route change.
func (a *App) Navigate(r router.Route) {
	a.pending = r
	a.hasPending = true
}

// Route returns the route whose view is showing.
func (a *App) Route() router.Route { return a.route }

// Current returns the active view.
func (a *App) Current() View { return a.view }

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.initCmd, a.watchSession())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.env.Theme.SetSize(msg.Width, msg.Height)

	case NavigateMsg:
		a.Navigate(msg.Route)
		return a, a.settle()

	case LogoutFailedMsg:
		a.log.Warn().Err(msg.Err).Msg("logout failed")
		a.notice = "Logout failed: " + msg.Err.Error()
		return a, nil

	case SessionChangedMsg:
		cmds := []tea.Cmd{a.watchSession()}
		if a.route.Protected() && !a.env.Service.Store().IsAuthenticated() {
			a.log.Info().Str("route", a.route.String()).Msg("session ended elsewhere")
			a.Navigate(router.RouteLogin)
		}
		cmds = append(cmds, a.settle())
		return a, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	if a.view != nil {
		a.view, cmd = a.view.Update(msg)
	}
	return a, tea.Batch(cmd, a.settle())
}

// settle applies queued navigations. Activating a route can queue another
// (a protected route without a session queues /login), hence the loop.
func (a *App) settle() tea.Cmd {
	var cmds []tea.Cmd
	for i := 0; i < maxRedirects && a.hasPending; i++ {
		r := a.pending
		a.hasPending = false
		cmds = append(cmds, a.switchTo(r))
	}
	a.hasPending = false
	return tea.Batch(cmds...)
}

func (a *App) switchTo(r router.Route) tea.Cmd {
	if !a.env.Gate.Activate(r) {
		return nil
	}
	a.route = r
	a.view = a.newView(r)
	a.notice = ""
	a.log.Debug().Str("route", r.String()).Msg("view switched")

	var cmds []tea.Cmd
	if a.width > 0 {
		var cmd tea.Cmd
		a.view, cmd = a.view.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, a.view.Init())
	return tea.Batch(cmds...)
}

func (a *App) newView(r router.Route) View {
	switch r {
	case router.RouteAdmin:
		return NewAdminView(a.env)
	case router.RouteSecurity:
		return NewSecurityView(a.env)
	case router.RouteUser:
		return NewUserView(a.env)
	default:
		return NewLoginView(a.env, r)
	}
}

// watchSession waits for the next change to the session file.
func (a *App) watchSession() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	events := a.watcher.Events()
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return SessionChangedMsg{}
	}
}

func (a *App) View() string {
	if a.view == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(a.view.View())
	b.WriteString("\n")
	if a.notice != "" {
		b.WriteString(a.env.Theme.Error.Render(a.notice) + "\n")
	}
	b.WriteString(a.env.Theme.Footer.Render(a.route.Title() + "  " + a.route.String()))
	return b.String()
}
