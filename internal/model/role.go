// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role is an account role. Only the constants below are recognized.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleSecurity Role = "security"
	RoleUser     Role = "user"
)

// AllRoles lists the recognized roles in display order.
var AllRoles = []Role{RoleAdmin, RoleSecurity, RoleUser}

// ParseRole reports whether s names a recognized role. Matching is exact:
// "ADMIN" and " admin" are unrecognized. An unrecognized value is returned
// as-is with ok=false.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Valid reports whether r is one of the recognized roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSecurity, RoleUser:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Label returns the display label ("Admin", "Security Team", ...).
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleSecurity:
		return "Security Team"
	case RoleUser:
		return "Normal User"
	case "":
		return "Unknown"
	}
	return cases.Title(language.English).String(string(r)) + " (unrecognized)"
}

// Next cycles through AllRoles. Unrecognized roles start at admin.
func (r Role) Next() Role {
	for i, candidate := range AllRoles {
		if candidate == r {
			return AllRoles[(i+1)%len(AllRoles)]
		}
	}
	return AllRoles[0]
}

// RoleNames returns AllRoles as strings, for validation messages and flags.
func RoleNames() []string {
	names := make([]string, len(AllRoles))
	for i, r := range AllRoles {
		names[i] = string(r)
	}
	return names
}
