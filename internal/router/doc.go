// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router maps routes to views and guards the protected ones.
//
// # Routes
//
//	/          login (entry point)
//	/login     login
//	/admin     admin console      (protected)
//	/security  security console   (protected)
//	/user      user console       (protected)
//
// After login the destination is RouteForRole: /{role} for admin, security
// and user, and / for anything else. An unrecognized role never lands on an
// elevated console.
//
// # Gate
//
// Gate is evaluated on every activation of a protected route. Without a
// session it redirects to /login and the view renders nothing. A 401 seen
// while a protected route is active clears the session and redirects once;
// further 401s from the same activation are absorbed.
//
// Role checks here are advisory. The backend authorizes every call.
package router
