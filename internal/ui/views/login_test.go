// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
)

// typeCredentials fills both fields and returns the submit command.
func typeCredentials(l *LoginView, user, pass string) tea.Cmd {
	l.Update(keyRunes(user))
	l.Update(keyEnter())
	l.Update(keyRunes(pass))
	_, cmd := l.Update(keyEnter())
	return cmd
}

func TestLoginView_SuccessRedirectsByRole(t *testing.T) {
	tests := []struct {
		role string
		want router.Route
	}{
		{"admin", router.RouteAdmin},
		{"security", router.RouteSecurity},
		{"user", router.RouteUser},
		{"auditor", router.RouteRoot},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			h := newHarness(t, map[string]reply{
				"/api/login": {http.StatusOK, `{"access_token":"t1","user":{"id":4,"username":"dana","role":"` + tt.role + `"}}`},
			})
			l := NewLoginView(h.env, router.RouteLogin)

			cmd := typeCredentials(l, "dana", "pw")
			require.NotNil(t, cmd)
			assert.Equal(t, LoginSubmitting, l.State())

			msgs := collect(cmd)
			require.Len(t, msgs, 1)
			_, redirect := l.Update(msgs[0])

			assert.Equal(t, LoginAuthenticated, l.State())
			assert.Contains(t, l.View(), "Login successful! Redirecting...")
			assert.Equal(t, "password=pw&username=dana", h.body("/api/login"))
			assert.True(t, h.store.IsAuthenticated())

			require.NotNil(t, redirect)
			assert.Equal(t, NavigateMsg{Route: tt.want}, redirect())
		})
	}
}

func TestLoginView_IgnoresInputWhileSubmitting(t *testing.T) {
	h := newHarness(t, nil)
	l := NewLoginView(h.env, router.RouteLogin)

	require.NotNil(t, typeCredentials(l, "dana", "pw"))
	_, cmd := l.Update(keyEnter())
	assert.Nil(t, cmd)
	_, cmd = l.Update(keyRunes("x"))
	assert.Nil(t, cmd)
	assert.Equal(t, LoginSubmitting, l.State())
}

func TestLoginView_ServerRejection(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"/api/login": {http.StatusUnauthorized, `{"detail":"Invalid credentials"}`},
	})
	h.env.Gate.Activate(router.RouteLogin)
	l := NewLoginView(h.env, router.RouteLogin)

	for _, msg := range collect(typeCredentials(l, "dana", "bad")) {
		l.Update(msg)
	}

	assert.Equal(t, LoginFailed, l.State())
	assert.Equal(t, "Invalid credentials", l.Err())
	assert.False(t, h.store.IsAuthenticated())
	assert.Empty(t, h.navs)

	l.Update(keyRunes("x"))
	assert.Equal(t, LoginIdle, l.State())
}

func TestLoginView_IncompletePayload(t *testing.T) {
	h := newHarness(t, map[string]reply{
		"/api/login": {http.StatusOK, `{"access_token":"t1"}`},
	})
	l := NewLoginView(h.env, router.RouteLogin)

	for _, msg := range collect(typeCredentials(l, "dana", "pw")) {
		l.Update(msg)
	}

	assert.Equal(t, LoginFailed, l.State())
	assert.Equal(t, service.ReasonIncomplete, l.Err())
	assert.False(t, h.store.IsAuthenticated())
}

func TestLoginView_MissingFieldsFailValidation(t *testing.T) {
	h := newHarness(t, nil)
	l := NewLoginView(h.env, router.RouteLogin)

	l.Update(keyEnter())
	_, cmd := l.Update(keyEnter())
	for _, msg := range collect(cmd) {
		l.Update(msg)
	}

	assert.Equal(t, LoginFailed, l.State())
	assert.Contains(t, l.Err(), "required")
	assert.False(t, h.requested("/api/login"))
}
