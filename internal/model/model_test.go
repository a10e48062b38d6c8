// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in     string
		want   Role
		wantOK bool
	}{
		{"admin", RoleAdmin, true},
		{"security", RoleSecurity, true},
		{"user", RoleUser, true},
		{" Security ", Role(" Security "), false},
		{"USER", Role("USER"), false},
		{"superuser", Role("superuser"), false},
		{"", Role(""), false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
	}
}

func TestRoleUnknownIsNeverAdmin(t *testing.T) {
	r := Role("root")
	assert.False(t, r.Valid())
	assert.NotEqual(t, RoleAdmin, r)
	assert.Equal(t, "Root (unrecognized)", r.Label())
}

func TestRoleNext(t *testing.T) {
	assert.Equal(t, RoleSecurity, RoleAdmin.Next())
	assert.Equal(t, RoleUser, RoleSecurity.Next())
	assert.Equal(t, RoleAdmin, RoleUser.Next())
	assert.Equal(t, RoleAdmin, Role("bogus").Next())
}

func TestUserDecodesBackendShape(t *testing.T) {
	raw := `{"id":7,"username":"alice","email":"a@x.io","phone":"555","role":"security","mfa_enabled":true}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, RoleSecurity, u.Role)
	assert.True(t, u.MFAEnabled)
	assert.True(t, u.HasIdentity())
}

func TestNextUserID(t *testing.T) {
	assert.Equal(t, int64(1), NextUserID(nil))
	assert.Equal(t, int64(3), NextUserID([]User{{}, {}}))
}

func TestAuditLogEntryTime(t *testing.T) {
	e := AuditLogEntry{Timestamp: "2024-03-01T10:20:30"}
	ts, ok := e.Time()
	require.True(t, ok)
	assert.Equal(t, 2024, ts.Year())
	assert.Equal(t, 30, ts.Second())

	e = AuditLogEntry{Timestamp: "2024-03-01T10:20:30.123456Z"}
	_, ok = e.Time()
	assert.True(t, ok)

	e = AuditLogEntry{Timestamp: "yesterday"}
	_, ok = e.Time()
	assert.False(t, ok)
	assert.Equal(t, "yesterday", e.FormattedTime())
}

func TestAuditLogEntrySummary(t *testing.T) {
	assert.Equal(t, "desc", AuditLogEntry{Description: "desc", Action: "act"}.Summary())
	assert.Equal(t, "act", AuditLogEntry{Action: "act"}.Summary())
}
