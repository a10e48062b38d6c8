// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security seals session data at rest.
//
// The session file holds a live bearer token, so the file backend can wrap
// its contents with AES-256-GCM. The key is either a random 256-bit key kept
// in an owner-only key file, or derived from a passphrase with
// PBKDF2-SHA-256 when RBAC_SESSION_PASSPHRASE is set.
package security
