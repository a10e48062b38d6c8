// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jeranaias/rbac-console/internal/auditlog"
	"github.com/jeranaias/rbac-console/internal/model"
)

func TestNewTheme(t *testing.T) {
	theme := NewTheme()
	assert.NotNil(t, theme)
	assert.NotEmpty(t, theme.App.Render("test"))
	assert.Contains(t, theme.Title.Render("Admin Console"), "Admin Console")
}

func TestNewThemeFor_Overrides(t *testing.T) {
	assert.True(t, NewThemeFor(ModeDark).IsDark)
	assert.False(t, NewThemeFor(ModeLight).IsDark)
}

func TestThemeNarrow(t *testing.T) {
	theme := NewTheme()
	assert.False(t, theme.Narrow(), "unknown width is not narrow")
	theme.SetSize(60, 20)
	assert.True(t, theme.Narrow())
	theme.SetSize(120, 40)
	assert.False(t, theme.Narrow())
}

func TestBadgesCarryText(t *testing.T) {
	theme := NewTheme()

	assert.Contains(t, theme.RoleBadge(model.RoleSecurity), "Security Team")
	assert.Contains(t, theme.RoleBadge(model.Role("root")), "unrecognized")

	critical := theme.SeverityBadge(auditlog.SeverityCritical)
	assert.True(t, strings.Contains(critical, "[X]") && strings.Contains(critical, "Critical"))
	assert.Contains(t, theme.SeverityBadge(auditlog.SeverityNormal), "[OK] Normal")

	assert.Contains(t, theme.MFABadge(true), "Enabled")
	assert.Contains(t, theme.MFABadge(false), "Disabled")
}
