// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auditlog

import (
	"bytes"
	"encoding/csv"
	"math/rand"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rbac-console/internal/model"
)

func sample() []model.AuditLogEntry {
	return []model.AuditLogEntry{
		{ID: 1, EventType: model.EventLoginSuccess, Username: "a", IPAddress: "10.0.0.1", Timestamp: "2024-05-01T10:00:00Z"},
		{ID: 2, EventType: model.EventFailedLogin, Username: "b", IPAddress: "10.0.0.2", Timestamp: "2024-05-01T10:01:00Z", Description: "bad password"},
		{ID: 5, EventType: model.EventSuspiciousActivity, Username: "c", IPAddress: "10.0.0.3", Timestamp: "2024-05-01T10:02:00Z"},
		{ID: 3, EventType: model.EventLoginSuccess, Username: "a", IPAddress: "10.0.0.1", Timestamp: "2024-05-01T10:03:00Z"},
		{ID: 4, EventType: model.EventRoleChanged, Username: "admin", IPAddress: "10.0.0.9", Timestamp: "2024-05-01T10:04:00Z"},
	}
}

func TestSeverityOf(t *testing.T) {
	assert.Equal(t, SeverityCritical, SeverityOf(model.EventUnauthorizedAccess))
	assert.Equal(t, SeverityWarning, SeverityOf(model.EventFailedLoginAttempt))
	assert.Equal(t, SeverityInfo, SeverityOf(model.EventPasswordChange))
	assert.Equal(t, SeverityNormal, SeverityOf(model.EventLoginSuccess))
	assert.Equal(t, SeverityNormal, SeverityOf("SOMETHING_NEW"))
	assert.Equal(t, "Critical", SeverityCritical.String())
}

func TestEventLabel(t *testing.T) {
	assert.Equal(t, "Login Success", EventLabel("LOGIN_SUCCESS"))
	assert.Equal(t, "Mfa Enabled", EventLabel("MFA_ENABLED"))
	assert.Equal(t, "Unknown", EventLabel(""))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample())
	assert.Equal(t, Summary{Total: 5, Critical: 1, Warnings: 1, Info: 1, SuccessfulLogins: 2}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestCountByType(t *testing.T) {
	counts := CountByType(sample())
	require.Len(t, counts, 4)
	assert.Equal(t, TypeCount{model.EventLoginSuccess, 2}, counts[0])
	// Ties are ordered by name.
	assert.Equal(t, model.EventFailedLogin, counts[1].EventType)
	assert.Equal(t, model.EventRoleChanged, counts[2].EventType)
	assert.Equal(t, model.EventSuspiciousActivity, counts[3].EventType)
}

func TestBarChart(t *testing.T) {
	chart := BarChart([]TypeCount{{"LOGIN_SUCCESS", 4}, {"FAILED_LOGIN", 1}}, 8)
	lines := strings.Split(chart, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "LOGIN_SUCCESS ████████ 4", lines[0])
	assert.Equal(t, "FAILED_LOGIN  ██ 1", lines[1])

	assert.Equal(t, "No events", BarChart(nil, 10))
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	entries := sample()[:2]
	entries = append(entries, model.AuditLogEntry{EventType: "X", Username: "d,e", Timestamp: "not a time"})
	require.NoError(t, ExportCSV(&buf, entries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, CSVHeader, rows[0])
	assert.Equal(t, []string{"LOGIN_SUCCESS", "a", "10.0.0.1", "-"}, rows[1][:4])
	assert.Equal(t, "bad password", rows[2][3])
	assert.Equal(t, "d,e", rows[3][1], "commas are quoted")
	assert.Equal(t, "not a time", rows[3][4])
}

func TestSimulate(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	e := Simulate(sample(), rng, now)
	assert.Equal(t, int64(6), e.ID)
	assert.Contains(t, SimulatedEventTypes, e.EventType)
	assert.Equal(t, SimulatedUser, e.Username)
	assert.Equal(t, int64(SimulatedUserID), e.UserID)
	assert.Equal(t, SimulatedAction, e.Summary())
	assert.NotNil(t, net.ParseIP(e.IPAddress).To4())

	ts, ok := e.Time()
	require.True(t, ok)
	assert.True(t, ts.Equal(now))

	first := Simulate(nil, rng, now)
	assert.Equal(t, int64(1), first.ID)
}
