// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auditlog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/util"
)

// Summary holds the counter cards.
type Summary struct {
	Total            int `json:"total"`
	Critical         int `json:"critical"`
	Warnings         int `json:"warnings"`
	Info             int `json:"info"`
	SuccessfulLogins int `json:"successful_logins"`
}

// Summarize counts entries per card.
func Summarize(entries []model.AuditLogEntry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		switch SeverityOf(e.EventType) {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Info++
		}
		if e.EventType == model.EventLoginSuccess {
			s.SuccessfulLogins++
		}
	}
	return s
}

// TypeCount is one bar of the chart.
type TypeCount struct {
	EventType string `json:"event_type"`
	Count     int    `json:"count"`
}

// CountByType returns counts per event type, largest first, ties by name.
func CountByType(entries []model.AuditLogEntry) []TypeCount {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.EventType]++
	}
	out := make([]TypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, TypeCount{EventType: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}

// BarChart renders counts as one text bar per line, scaled so the largest
// bar is width cells.
func BarChart(counts []TypeCount, width int) string {
	if len(counts) == 0 {
		return "No events"
	}
	if width < 1 {
		width = 1
	}

	labelWidth, maxCount := 0, 0
	for _, c := range counts {
		if w := util.StringWidth(c.EventType); w > labelWidth {
			labelWidth = w
		}
		if c.Count > maxCount {
			maxCount = c.Count
		}
	}

	var b strings.Builder
	for i, c := range counts {
		bar := c.Count * width / maxCount
		if bar == 0 && c.Count > 0 {
			bar = 1
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %d", util.PadRight(c.EventType, labelWidth), strings.Repeat("█", bar), c.Count)
	}
	return b.String()
}
