// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auditlog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/rbac-console/internal/model"
)

// Severity buckets an event type.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityCritical
)

// String returns the badge label.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityWarning:
		return "Warning"
	case SeverityInfo:
		return "Info"
	default:
		return "Normal"
	}
}

// SeverityOf classifies an event type.
func SeverityOf(eventType string) Severity {
	switch eventType {
	case model.EventSuspiciousActivity, model.EventUnauthorizedAccess:
		return SeverityCritical
	case model.EventFailedLogin, model.EventFailedLoginAttempt:
		return SeverityWarning
	case model.EventRoleChanged, model.EventUserCreated, model.EventMFAEnabled,
		model.EventMFADisabled, model.EventPasswordChange:
		return SeverityInfo
	default:
		return SeverityNormal
	}
}

// EventLabel turns LOGIN_SUCCESS into "Login Success".
func EventLabel(eventType string) string {
	if eventType == "" {
		return "Unknown"
	}
	words := strings.ToLower(strings.ReplaceAll(eventType, "_", " "))
	return cases.Title(language.English).String(words)
}
