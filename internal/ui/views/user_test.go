// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
)

var member = model.User{ID: 9, Username: "dana", Email: "dana@example.com", Phone: "555-0100", Role: model.RoleUser}

func loadedUser(t *testing.T, replies map[string]reply) (*harness, *UserView) {
	t.Helper()
	if _, ok := replies["/api/logs"]; !ok {
		replies["/api/logs"] = reply{http.StatusOK, logsJSON}
	}
	h := newHarness(t, replies)
	h.signIn(t, member)
	require.True(t, h.env.Gate.Activate(router.RouteUser))

	u := NewUserView(h.env)
	feed(u, u.Init())
	return h, u
}

// submitForm types values into the open form, one field each, and submits.
func submitForm(u *UserView, values ...string) tea.Cmd {
	for i, v := range values {
		if v != "" {
			u.Update(keyRunes(v))
		}
		if i < len(values)-1 {
			u.Update(tea.KeyMsg{Type: tea.KeyTab})
		}
	}
	_, cmd := u.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	return cmd
}

func TestUserView_ShowsProfileAndActivity(t *testing.T) {
	_, u := loadedUser(t, map[string]reply{})

	assert.Equal(t, "dana", u.User().Username)
	view := u.View()
	assert.Contains(t, view, "dana@example.com")
	assert.Contains(t, view, "LOGIN_SUCCESS")
}

func TestUserView_LogFailureShowsErrorWithoutFallback(t *testing.T) {
	_, u := loadedUser(t, map[string]reply{
		"/api/logs": {http.StatusInternalServerError, `{"detail":"logs unavailable"}`},
	})

	assert.Empty(t, u.logs)
	assert.Contains(t, u.View(), "logs unavailable")
}

func TestUserView_PasswordMismatchSendsNothing(t *testing.T) {
	h, u := loadedUser(t, map[string]reply{})

	u.Update(keyRunes("p"))
	cmd := submitForm(u, "old-pass", "new-pass", "other-pass")

	assert.Nil(t, cmd)
	assert.Contains(t, u.View(), MsgPasswordMismatch)
	assert.False(t, h.requested("/api/user/update-passwrod"))
}

func TestUserView_PasswordChange(t *testing.T) {
	h, u := loadedUser(t, map[string]reply{
		"/api/user/update-passwrod": {http.StatusOK, `{"message":"ok"}`},
	})

	u.Update(keyRunes("p"))
	feed(u, submitForm(u, "old-pass", "new-pass", "new-pass"))

	assert.JSONEq(t, `{"currentPassword":"old-pass","newPassword":"new-pass"}`, h.body("/api/user/update-passwrod"))
	assert.Nil(t, u.form)
	assert.Contains(t, u.View(), MsgPasswordUpdated)
}

func TestUserView_PasswordChangeRejected(t *testing.T) {
	_, u := loadedUser(t, map[string]reply{
		"/api/user/update-passwrod": {http.StatusBadRequest, `{"detail":"wrong password"}`},
	})

	u.Update(keyRunes("p"))
	feed(u, submitForm(u, "bad", "new-pass", "new-pass"))

	assert.NotNil(t, u.form)
	assert.Contains(t, u.View(), MsgPasswordFailed)
}

func TestUserView_ProfileUpdateMergesValues(t *testing.T) {
	h, u := loadedUser(t, map[string]reply{
		"/api/user/update-profile": {http.StatusOK, `{"message":"updated"}`},
	})

	u.Update(keyRunes("e"))
	require.Equal(t, "dana@example.com", u.form.value(0))
	u.form.setValue(0, "dana@new.example.com")
	_, cmd := u.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	feed(u, cmd)

	assert.Equal(t, "dana@new.example.com", u.User().Email)
	assert.Equal(t, "555-0100", u.User().Phone)

	cur, ok := h.store.Current()
	require.True(t, ok)
	assert.Equal(t, "dana@new.example.com", cur.User.Email)
	assert.Contains(t, u.View(), MsgProfileUpdated)
}

func TestUserView_EnableMFA(t *testing.T) {
	h, u := loadedUser(t, map[string]reply{
		"/api/user/create-mfa-pin": {http.StatusOK, `{"secret":"JBSWY3DPEHPK3PXP"}`},
	})

	_, cmd := u.Update(keyRunes("m"))
	feed(u, cmd)

	assert.True(t, u.User().MFAEnabled)
	assert.JSONEq(t, `{}`, h.body("/api/user/create-mfa-pin"))

	cur, _ := h.store.Current()
	assert.True(t, cur.User.MFAEnabled)

	view := u.View()
	assert.Contains(t, view, MsgMFAEnabled)
	assert.Contains(t, view, "JBSWY3DPEHPK3PXP")
}
