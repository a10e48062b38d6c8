// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the single outbound request pipeline to the RBAC backend.
//
// Every call goes through Client.Do, which attaches the bearer token when a
// session exists, encodes the body by payload shape, and turns every failure
// into a *RequestError of exactly one Kind:
//
//   - ServerRejected: the backend answered with a non-2xx status
//   - NoResponse: the request went out but no complete answer came back
//   - RequestSetupFailed: the request could not be built or sent
//
// Body encoding:
//
//	*FormData, FormData, []byte  -> multipart/form-data
//	string (already encoded)     -> application/x-www-form-urlencoded
//	anything else                -> application/json
//
// The client never retries.
package api
