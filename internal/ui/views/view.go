// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rbac-console/internal/router"
)

// View is one routed screen.
type View interface {
	Init() tea.Cmd
	Update(tea.Msg) (View, tea.Cmd)
	View() string
	Route() router.Route
}

// statusLine is the inline message area shared by every view.
type statusLine struct {
	text  string
	isErr bool
}

func (s *statusLine) ok(text string)   { s.text, s.isErr = text, false }
func (s *statusLine) fail(text string) { s.text, s.isErr = text, true }
func (s *statusLine) clear()           { s.text, s.isErr = "", false }

func (s statusLine) render(env *Env) string {
	if s.text == "" {
		return ""
	}
	if s.isErr {
		return env.Theme.Error.Render("[X] " + s.text)
	}
	return env.Theme.Success.Render("[OK] " + s.text)
}
