// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/rbac-console/internal/auditlog"
	"github.com/jeranaias/rbac-console/internal/model"
)

// Theme holds the styled components for every view.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// ==========================================================================
	// FRAME
	// ==========================================================================

	App      lipgloss.Style
	Header   lipgloss.Style
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Footer   lipgloss.Style
	Card     lipgloss.Style
	Section  lipgloss.Style

	// ==========================================================================
	// FORMS
	// ==========================================================================

	Label        lipgloss.Style
	Value        lipgloss.Style
	FocusedInput lipgloss.Style
	BlurredInput lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	Disabled     lipgloss.Style

	// ==========================================================================
	// FEEDBACK
	// ==========================================================================

	Error   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style

	// ==========================================================================
	// TABLES
	// ==========================================================================

	TableHeader   lipgloss.Style
	TableSelected lipgloss.Style
	Bar           lipgloss.Style
}

// Theme modes accepted by NewThemeFor.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// NewTheme creates a theme from the detected terminal background.
func NewTheme() *Theme {
	return NewThemeFor(ModeAuto)
}

// NewThemeFor creates a theme. "dark" and "light" override detection.
func NewThemeFor(mode string) *Theme {
	profile := termenv.ColorProfile()
	isDark := termenv.HasDarkBackground()
	switch mode {
	case ModeDark:
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case ModeLight:
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	}

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.Title = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.Subtitle = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Footer = lipgloss.NewStyle().Foreground(TextMuted)

	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.Section = lipgloss.NewStyle().Bold(true).Foreground(Purple).MarginTop(1)

	t.Label = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Value = lipgloss.NewStyle().Foreground(TextPrimary)
	t.FocusedInput = lipgloss.NewStyle().Foreground(Cyan)
	t.BlurredInput = lipgloss.NewStyle().Foreground(TextMuted)

	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 2)
	t.ButtonActive = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 2)
	t.Disabled = lipgloss.NewStyle().Foreground(TextMuted).Padding(0, 2)

	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.Success = lipgloss.NewStyle().Foreground(Emerald)
	t.Warning = lipgloss.NewStyle().Foreground(Amber)
	t.Info = lipgloss.NewStyle().Foreground(Blue)
	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.TableSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg)
	t.Bar = lipgloss.NewStyle().Foreground(Purple)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// Narrow reports whether the terminal is too narrow for side-by-side panels.
func (t *Theme) Narrow() bool {
	return t.Width > 0 && t.Width < 80
}

// RoleBadge renders a role with its color. Unrecognized roles are muted.
func (t *Theme) RoleBadge(r model.Role) string {
	var c lipgloss.TerminalColor = TextMuted
	switch r {
	case model.RoleAdmin:
		c = Purple
	case model.RoleSecurity:
		c = Amber
	case model.RoleUser:
		c = Blue
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render(r.Label())
}

// SeverityStyle returns the style for an audit severity.
func (t *Theme) SeverityStyle(s auditlog.Severity) lipgloss.Style {
	switch s {
	case auditlog.SeverityCritical:
		return t.Error
	case auditlog.SeverityWarning:
		return t.Warning
	case auditlog.SeverityInfo:
		return t.Info
	default:
		return t.Success
	}
}

// SeverityBadge pairs a severity label with its ASCII indicator.
func (t *Theme) SeverityBadge(s auditlog.Severity) string {
	indicator := StatusIndicators.Success
	switch s {
	case auditlog.SeverityCritical:
		indicator = StatusIndicators.Error
	case auditlog.SeverityWarning:
		indicator = StatusIndicators.Warning
	case auditlog.SeverityInfo:
		indicator = StatusIndicators.Info
	}
	return t.SeverityStyle(s).Render(indicator + " " + s.String())
}

// MFABadge renders the MFA state.
func (t *Theme) MFABadge(enabled bool) string {
	if enabled {
		return t.Success.Render(StatusIndicators.Success + " Enabled")
	}
	return t.Muted.Render(StatusIndicators.Pending + " Disabled")
}
