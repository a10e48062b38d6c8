// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"github.com/charmbracelet/bubbles/table"

	"github.com/jeranaias/rbac-console/internal/ui/styles"
)

// newTable builds a focused table styled from the theme.
func newTable(t *styles.Theme, columns []table.Column, height int) table.Model {
	tbl := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = t.TableHeader
	s.Selected = t.TableSelected
	tbl.SetStyles(s)
	return tbl
}

// tableHeight leaves room for the surrounding chrome.
func tableHeight(t *styles.Theme, chrome int) int {
	if t.Height <= 0 {
		return 10
	}
	if h := t.Height - chrome; h > 3 {
		return h
	}
	return 3
}
