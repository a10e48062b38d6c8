// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rbac-console/internal/auditlog"
	"github.com/jeranaias/rbac-console/internal/util"
)

func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			MarginBottom(1)

	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			MarginTop(1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Width(14)

	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	InfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// severityStyle colors a severity label.
func severityStyle(s auditlog.Severity) lipgloss.Style {
	switch s {
	case auditlog.SeverityCritical:
		return ErrorStyle
	case auditlog.SeverityWarning:
		return WarningStyle
	case auditlog.SeverityInfo:
		return InfoStyle
	default:
		return SuccessStyle
	}
}

// printKV prints an aligned label/value line.
func printKV(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label))
	b.WriteString(ValueStyle.Render(util.FirstNonEmpty(value, "-")))
	b.WriteByte('\n')
}

// separator returns a rule as wide as the terminal allows.
func separator() string {
	w := GetTerminalWidth()
	if w > 72 {
		w = 72
	}
	return DimStyle.Render(strings.Repeat("-", w))
}

// =============================================================================
// MARKDOWN
// =============================================================================

// renderMarkdown renders markdown for the terminal. Without colors, or if
// rendering fails, the source is returned unchanged.
func renderMarkdown(content string) string {
	if !ColorsEnabled() {
		return content
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return out
}
