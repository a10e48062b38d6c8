// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Event types emitted by the backend.
const (
	EventLoginSuccess       = "LOGIN_SUCCESS"
	EventFailedLogin        = "FAILED_LOGIN"
	EventFailedLoginAttempt = "FAILED_LOGIN_ATTEMPT"
	EventSuspiciousActivity = "SUSPICIOUS_ACTIVITY"
	EventUnauthorizedAccess = "UNAUTHORIZED_ACCESS"
	EventRoleChanged        = "ROLE_CHANGED"
	EventUserCreated        = "USER_CREATED"
	EventMFAEnabled         = "MFA_ENABLED"
	EventMFADisabled        = "MFA_DISABLED"
	EventPasswordChange     = "PASSWORD_CHANGE"
)

// AuditLogEntry is one security event. Entries are read-only; the client
// never assigns ids or timestamps to real entries.
type AuditLogEntry struct {
	ID          int64  `json:"id"`
	EventType   string `json:"event_type"`
	Username    string `json:"username"`
	IPAddress   string `json:"ip_address"`
	Timestamp   string `json:"timestamp"`
	Description string `json:"description,omitempty"`
	UserID      int64  `json:"user_id,omitempty"`
	Action      string `json:"action,omitempty"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Time parses Timestamp. The backend is not strict about the layout, so a
// handful of ISO-like forms are accepted.
func (e AuditLogEntry) Time() (time.Time, bool) {
	ts := strings.TrimSpace(e.Timestamp)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormattedTime renders Timestamp in local time, falling back to the raw
// string when it does not parse.
func (e AuditLogEntry) FormattedTime() string {
	if t, ok := e.Time(); ok {
		return t.Local().Format("2006-01-02 15:04:05")
	}
	return e.Timestamp
}

// Summary is the action text shown in tables: the description when
// present, otherwise the action field.
func (e AuditLogEntry) Summary() string {
	if e.Description != "" {
		return e.Description
	}
	return e.Action
}
