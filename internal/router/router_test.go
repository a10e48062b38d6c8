// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteForRole(t *testing.T) {
	tests := []struct {
		role string
		want Route
	}{
		{"admin", RouteAdmin},
		{"security", RouteSecurity},
		{"user", RouteUser},
		{"ADMIN", RouteRoot},
		{" admin", RouteRoot},
		{"Security", RouteRoot},
		{" user ", RouteRoot},
		{"unknown", RouteRoot},
		{"", RouteRoot},
		{"superadmin", RouteRoot},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, RouteForRole(tt.role))
		})
	}
}

func TestRouteProtected(t *testing.T) {
	assert.False(t, RouteRoot.Protected())
	assert.False(t, RouteLogin.Protected())
	assert.True(t, RouteAdmin.Protected())
	assert.True(t, RouteSecurity.Protected())
	assert.True(t, RouteUser.Protected())
	assert.False(t, Route("/elsewhere").Protected())
}

func TestParseRoute(t *testing.T) {
	r, ok := ParseRoute("admin")
	assert.True(t, ok)
	assert.Equal(t, RouteAdmin, r)

	r, ok = ParseRoute("/Security/")
	assert.True(t, ok)
	assert.Equal(t, RouteSecurity, r)

	r, ok = ParseRoute("/")
	assert.True(t, ok)
	assert.Equal(t, RouteRoot, r)

	_, ok = ParseRoute("/nowhere")
	assert.False(t, ok)
}
