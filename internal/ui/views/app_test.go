// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rbac-console/internal/api"
	"github.com/jeranaias/rbac-console/internal/logging"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
	"github.com/jeranaias/rbac-console/internal/session"
	"github.com/jeranaias/rbac-console/internal/ui/styles"
)

func TestApp_ProtectedStartWithoutSessionShowsLogin(t *testing.T) {
	h := newHarness(t, nil)
	app := NewApp(h.env, router.RouteAdmin, nil)

	assert.Equal(t, router.RouteLogin, app.Route())
	assert.IsType(t, &LoginView{}, app.Current())
	assert.Equal(t, router.RouteLogin, h.env.Gate.Active())
}

func TestApp_StartsOnRequestedRouteWithSession(t *testing.T) {
	h := newHarness(t, map[string]reply{"/api/admin/users": {http.StatusOK, usersJSON}})
	h.signIn(t, admin)

	app := NewApp(h.env, router.RouteAdmin, nil)
	assert.Equal(t, router.RouteAdmin, app.Route())
	assert.IsType(t, &AdminView{}, app.Current())
}

func TestApp_NavigateMsgSwitchesView(t *testing.T) {
	h := newHarness(t, nil)
	h.signIn(t, member)
	app := NewApp(h.env, router.RouteLogin, nil)

	app.Update(NavigateMsg{Route: router.RouteUser})
	assert.Equal(t, router.RouteUser, app.Route())
	assert.IsType(t, &UserView{}, app.Current())
	assert.Contains(t, app.View(), "User Console")
}

func TestApp_SessionClearedElsewhereRedirects(t *testing.T) {
	h := newHarness(t, nil)
	h.signIn(t, member)
	app := NewApp(h.env, router.RouteUser, nil)
	require.Equal(t, router.RouteUser, app.Route())

	require.NoError(t, h.store.Clear())
	app.Update(SessionChangedMsg{})

	assert.Equal(t, router.RouteLogin, app.Route())
}

func TestApp_UnauthorizedResponseRedirectsOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.signIn(t, admin)
	app := NewApp(h.env, router.RouteAdmin, nil)

	unauthorized := &api.RequestError{Kind: api.ServerRejected, Status: http.StatusUnauthorized}
	app.Update(usersLoadedMsg{err: unauthorized})

	assert.Equal(t, router.RouteLogin, app.Route())
	assert.False(t, h.store.IsAuthenticated())
}

func TestApp_LogoutKey(t *testing.T) {
	h := newHarness(t, nil)
	h.signIn(t, admin)
	app := NewApp(h.env, router.RouteAdmin, nil)

	_, cmd := app.Update(keyRunes("l"))
	assert.False(t, h.store.IsAuthenticated())

	var nav tea.Msg
	for _, msg := range collect(cmd) {
		if m, ok := msg.(NavigateMsg); ok {
			nav = m
		}
	}
	require.NotNil(t, nav)
	app.Update(nav)
	assert.Equal(t, router.RouteLogin, app.Route())
}

type failingDelete struct {
	*session.MemoryBackend
}

func (failingDelete) Delete(...string) error { return errors.New("disk full") }

func TestApp_LogoutFailureKeepsView(t *testing.T) {
	store := session.NewStore(failingDelete{session.NewMemoryBackend()})
	require.NoError(t, store.Save("tok", admin))
	svc := service.New(api.NewClient("http://127.0.0.1:1/api", store), store)
	env := NewEnv(context.Background(), svc, router.NewGate(store, nil), styles.NewThemeFor(styles.ModeDark))
	app := NewApp(env, router.RouteAdmin, nil)

	_, cmd := app.Update(keyRunes("l"))
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	require.IsType(t, LogoutFailedMsg{}, msgs[0])

	app.Update(msgs[0])
	assert.Equal(t, router.RouteAdmin, app.Route())
	assert.True(t, store.IsAuthenticated())
	assert.Contains(t, app.View(), "Logout failed: disk full")
}

func TestApp_LogsViewSwitches(t *testing.T) {
	logging.Reset()
	t.Cleanup(logging.Reset)
	var buf bytes.Buffer
	logging.Init(logging.Options{Level: "debug", Output: &buf})

	h := newHarness(t, nil)
	NewApp(h.env, router.RouteAdmin, nil)

	out := buf.String()
	assert.Contains(t, out, `"component":"app"`)
	assert.Contains(t, out, "view switched")
	assert.Contains(t, out, `"route":"/login"`)
}

func TestApp_CtrlCQuits(t *testing.T) {
	h := newHarness(t, nil)
	app := NewApp(h.env, router.RouteLogin, nil)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
