// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package service names the backend operations the console performs.
//
// Each method builds one call, sends it through the api client, and decodes
// the response. Errors from the client are returned unchanged, so callers
// can still inspect the *api.RequestError kind. Input checked locally fails
// with *ValidationError before anything is sent.
//
// Login is the only operation that creates a session. It returns an
// Authenticated or Rejected result; a 2xx response without both a token and
// a user is Rejected.
package service
