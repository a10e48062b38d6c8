// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"strings"

	"github.com/jeranaias/rbac-console/internal/model"
)

// Route is a view path.
type Route string

// Known routes.
const (
	RouteRoot     Route = "/"
	RouteLogin    Route = "/login"
	RouteAdmin    Route = "/admin"
	RouteSecurity Route = "/security"
	RouteUser     Route = "/user"
)

// Routes lists every route in display order.
var Routes = []Route{RouteRoot, RouteLogin, RouteAdmin, RouteSecurity, RouteUser}

// String returns the path.
func (r Route) String() string {
	return string(r)
}

// Protected reports whether the route needs a session.
func (r Route) Protected() bool {
	switch r {
	case RouteAdmin, RouteSecurity, RouteUser:
		return true
	default:
		return false
	}
}

// Title is the heading shown for the route.
func (r Route) Title() string {
	switch r {
	case RouteRoot, RouteLogin:
		return "Sign In"
	case RouteAdmin:
		return "Admin Console"
	case RouteSecurity:
		return "Security Console"
	case RouteUser:
		return "User Console"
	default:
		return "Not Found"
	}
}

// ParseRoute accepts "/admin", "admin" or "ADMIN/".
func ParseRoute(s string) (Route, bool) {
	p := "/" + strings.Trim(strings.ToLower(strings.TrimSpace(s)), "/")
	for _, r := range Routes {
		if Route(p) == r {
			return r, true
		}
	}
	return RouteRoot, false
}

// RouteForRole returns where a freshly logged-in user goes.
func RouteForRole(role string) Route {
	r, ok := model.ParseRole(role)
	if !ok {
		return RouteRoot
	}
	switch r {
	case model.RoleAdmin:
		return RouteAdmin
	case model.RoleSecurity:
		return RouteSecurity
	case model.RoleUser:
		return RouteUser
	}
	return RouteRoot
}
