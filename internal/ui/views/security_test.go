// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rbac-console/internal/auditlog"
	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
)

const logsJSON = `[
	{"id":7,"event_type":"LOGIN_SUCCESS","username":"root","ip_address":"10.0.0.1","timestamp":"2025-02-01T10:00:00Z","description":"signed in"},
	{"id":3,"event_type":"FAILED_LOGIN","username":"bob","ip_address":"10.0.0.2","timestamp":"2025-02-01T09:00:00Z"}
]`

var analyst = model.User{ID: 5, Username: "sec", Role: model.RoleSecurity}

func loadedSecurity(t *testing.T) (*harness, *SecurityView) {
	t.Helper()
	h := newHarness(t, map[string]reply{"/api/logs": {http.StatusOK, logsJSON}})
	h.signIn(t, analyst)
	require.True(t, h.env.Gate.Activate(router.RouteSecurity))

	s := NewSecurityView(h.env)
	feed(s, s.Init())
	return h, s
}

func TestSecurityView_InitWithoutSessionRedirects(t *testing.T) {
	h := newHarness(t, nil)
	s := NewSecurityView(h.env)

	msgs := collect(s.Init())
	require.Len(t, msgs, 1)
	assert.Equal(t, NavigateMsg{Route: router.RouteLogin}, msgs[0])
}

func TestSecurityView_LoadsAndSummarizes(t *testing.T) {
	_, s := loadedSecurity(t)

	require.Len(t, s.Entries(), 2)
	view := s.View()
	assert.Contains(t, view, "Security Dashboard")
	assert.Contains(t, view, "FAILED_LOGIN")
}

func TestSecurityView_SimulateAppendsEntry(t *testing.T) {
	h, s := loadedSecurity(t)

	_, cmd := s.Update(keyRunes("s"))
	assert.Nil(t, cmd)

	require.Len(t, s.Entries(), 3)
	assert.Equal(t, int64(7), s.Entries()[0].ID)
	sim := s.Entries()[2]
	assert.Equal(t, int64(8), sim.ID)
	assert.Equal(t, 2, s.table.Cursor())
	assert.Equal(t, auditlog.SimulatedUser, sim.Username)
	assert.Contains(t, auditlog.SimulatedEventTypes, sim.EventType)
	assert.Equal(t, h.env.Now().UTC().Format("2006-01-02T15:04:05Z07:00"), sim.Timestamp)
}

func TestSecurityView_ExportWritesCSV(t *testing.T) {
	h, s := loadedSecurity(t)

	_, cmd := s.Update(keyRunes("x"))
	feed(s, cmd)

	data, err := os.ReadFile(filepath.Join(h.env.ExportDir, auditlog.DefaultExportName))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Type,User,IP,Action,Timestamp", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "FAILED_LOGIN,bob,10.0.0.2,-,"))
	assert.Contains(t, s.View(), "Exported to")
}

func TestSecurityView_ChartToggle(t *testing.T) {
	_, s := loadedSecurity(t)

	assert.NotContains(t, s.View(), "Events by type")
	s.Update(keyRunes("c"))
	assert.Contains(t, s.View(), "Events by type")
}

func TestSecurityView_LoadFailureShowsError(t *testing.T) {
	h := newHarness(t, map[string]reply{"/api/logs": {http.StatusInternalServerError, `{"detail":"db down"}`}})
	h.signIn(t, analyst)
	h.env.Gate.Activate(router.RouteSecurity)

	s := NewSecurityView(h.env)
	feed(s, s.Init())

	assert.Empty(t, s.Entries())
	assert.Contains(t, s.View(), "db down")
	assert.True(t, h.store.IsAuthenticated())
}
