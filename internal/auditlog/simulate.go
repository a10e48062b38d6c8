// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auditlog

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jeranaias/rbac-console/internal/model"
)

// SimulatedEventTypes are the types a demo entry is drawn from.
var SimulatedEventTypes = []string{
	model.EventLoginSuccess,
	model.EventFailedLogin,
	model.EventRoleChanged,
	model.EventUnauthorizedAccess,
	model.EventSuspiciousActivity,
	model.EventUserCreated,
	model.EventMFAEnabled,
}

// Simulated entry fields.
const (
	SimulatedUser   = "random_user"
	SimulatedUserID = 999
	SimulatedAction = "Simulated event"
)

// Simulate returns a demo entry shaped like a real one. It is never sent to
// the backend.
func Simulate(existing []model.AuditLogEntry, rng *rand.Rand, now time.Time) model.AuditLogEntry {
	var maxID int64
	for _, e := range existing {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	return model.AuditLogEntry{
		ID:        maxID + 1,
		EventType: SimulatedEventTypes[rng.Intn(len(SimulatedEventTypes))],
		Username:  SimulatedUser,
		IPAddress: fmt.Sprintf("%d.%d.%d.%d", rng.Intn(255), rng.Intn(255), rng.Intn(255), rng.Intn(255)),
		Timestamp: now.UTC().Format(time.RFC3339),
		UserID:    SimulatedUserID,
		Action:    SimulatedAction,
	}
}
