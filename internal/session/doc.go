// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the authenticated identity between commands.
//
// A session is two persisted entries written and removed together: the
// bearer token under TokenKey and the cached user record under UserKey.
// Store is the only writer. It is passed explicitly to the components that
// need it; there is no package-level session.
//
// # Backends
//
//   - FileBackend: one JSON document, replaced atomically, optionally sealed
//   - SQLiteBackend: a key/value table, written in one transaction
//   - MemoryBackend: process-local, used by tests and --session memory
//
// # Usage
//
//	backend, err := session.Open(cfg)
//	store := session.NewStore(backend)
//	defer store.Close()
//
//	if s, ok := store.Current(); ok {
//	    fmt.Println(s.User.Username)
//	}
//
// There is no expiry timer. A rejected token is discovered when the backend
// answers 401, and the router gate clears the store.
package session
