// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the records exchanged with the RBAC backend.
//
// # Key Types
//
//   - Role: closed enumeration of account roles (admin, security, user)
//   - User: account record as returned by the admin and profile endpoints
//   - AuditLogEntry: one security event from the logs endpoint
//
// Unknown role strings are preserved on decode so they can be displayed,
// but Role.Valid reports them as unrecognized and nothing grants them
// elevated access.
package model
