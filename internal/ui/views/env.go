// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"errors"
	"math/rand"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
	"github.com/jeranaias/rbac-console/internal/ui/styles"
)

// MsgSessionExpired is shown when the backend rejects the session.
const MsgSessionExpired = "Session expired. Please sign in again."

// Env is what every view needs from the outside.
type Env struct {
	Ctx           context.Context
	Service       *service.Service
	Gate          *router.Gate
	Theme         *styles.Theme
	RedirectDelay time.Duration
	ExportDir     string
	Now           func() time.Time
	Rand          *rand.Rand
}

// NewEnv fills the defaults for fields left zero.
func NewEnv(ctx context.Context, svc *service.Service, gate *router.Gate, theme *styles.Theme) *Env {
	return &Env{
		Ctx:       ctx,
		Service:   svc,
		Gate:      gate,
		Theme:     theme,
		ExportDir: ".",
		Now:       time.Now,
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// errorText turns a failed call into the inline message. A 401 is also
// handed to the gate, which clears the session and redirects once.
func (e *Env) errorText(err error) string {
	if e.Gate.HandleError(err) && e.Gate.Active().Protected() {
		return MsgSessionExpired
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

// =============================================================================
// MESSAGES
// =============================================================================

// NavigateMsg asks the App to switch routes.
type NavigateMsg struct {
	Route router.Route
}

// SessionChangedMsg reports that another process changed the session.
type SessionChangedMsg struct{}

// LogoutFailedMsg reports that the session could not be cleared. The
// current view stays up.
type LogoutFailedMsg struct {
	Err error
}

func navigate(r router.Route) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Route: r} }
}

// logout clears the session and returns to /login.
func (e *Env) logout() tea.Cmd {
	if err := e.Service.Logout(); err != nil {
		return func() tea.Msg { return LogoutFailedMsg{Err: err} }
	}
	return navigate(router.RouteLogin)
}
