// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// User is an account record. The same shape is cached in the session.
type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Role       Role   `json:"role"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

// HasIdentity reports whether the record names a user at all. A cached
// record without a username is treated as missing.
func (u User) HasIdentity() bool {
	return u.Username != ""
}

// NextUserID returns the id a locally appended row should use when the
// backend did not return one: one past the number of known users.
func NextUserID(users []User) int64 {
	return int64(len(users)) + 1
}
