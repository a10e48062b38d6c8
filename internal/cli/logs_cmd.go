// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/rbac-console/internal/auditlog"
	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/util"
)

// HandleLogs handles "logs list|summary|export|simulate".
func HandleLogs(args Args) error {
	p := NewArgParser(args.Raw)
	sub := p.Subcommand()
	if sub == "" {
		sub = "list"
	}
	switch sub {
	case "list", "ls", "show", "summary", "stats", "export", "simulate", "sim":
	default:
		return ErrUnknownSubcommand("logs", sub)
	}

	return withRuntime(args, func(rt *Runtime) error {
		if err := rt.Require(router.RouteSecurity); err != nil {
			return err
		}

		ctx, cancel := rt.Context()
		defer cancel()
		entries, err := rt.Service.GetLogs(ctx)
		if err != nil {
			return NewCommandError("logs", "fetch", err)
		}

		switch sub {
		case "summary", "stats":
			return logsSummary(args, entries)
		case "export":
			return logsExport(args, p, entries)
		case "simulate", "sim":
			return logsSimulate(args, entries)
		default:
			return logsList(args, p, entries)
		}
	})
}

// filterLogs keeps entries of eventType (case-insensitive) and at most
// limit of them. Zero values disable each filter.
func filterLogs(entries []model.AuditLogEntry, eventType string, limit int) []model.AuditLogEntry {
	out := make([]model.AuditLogEntry, 0, len(entries))
	for _, e := range entries {
		if eventType != "" && !strings.EqualFold(e.EventType, eventType) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func logsList(args Args, p *ArgParser, entries []model.AuditLogEntry) error {
	entries = filterLogs(entries, p.Flag("type", "t"), p.FlagIntOrDefault("limit", 0))
	return OutputJSON(args.JSON, "logs list", entries, func() {
		fmt.Print(formatLogTable(entries))
	})
}

func formatLogTable(entries []model.AuditLogEntry) string {
	if len(entries) == 0 {
		return DimStyle.Render("No events") + "\n"
	}
	var b strings.Builder
	header := fmt.Sprintf("%s %s %s %s %s",
		util.PadRight("SEVERITY", 9), util.PadRight("TYPE", 20), util.PadRight("USER", 14),
		util.PadRight("IP", 15), "TIME")
	b.WriteString(SectionStyle.Render(header) + "\n")
	for _, e := range entries {
		sev := auditlog.SeverityOf(e.EventType)
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			severityStyle(sev).Render(util.PadRight(sev.String(), 9)),
			util.PadRight(util.TruncateWidth(e.EventType, 20), 20),
			util.PadRight(util.TruncateWidth(e.Username, 14), 14),
			util.PadRight(e.IPAddress, 15),
			e.FormattedTime())
		if d := e.Summary(); d != "" {
			b.WriteString("          " + DimStyle.Render(d) + "\n")
		}
	}
	return b.String()
}

// LogSummaryData is the --json payload of "logs summary".
type LogSummaryData struct {
	auditlog.Summary
	ByType []auditlog.TypeCount `json:"by_type"`
}

func logsSummary(args Args, entries []model.AuditLogEntry) error {
	data := LogSummaryData{Summary: auditlog.Summarize(entries), ByType: auditlog.CountByType(entries)}
	return OutputJSON(args.JSON, "logs summary", data, func() {
		var b strings.Builder
		b.WriteString(TitleStyle.Render("Security summary") + "\n")
		printKV(&b, "Total", fmt.Sprint(data.Total))
		printKV(&b, "Critical", severityStyle(auditlog.SeverityCritical).Render(fmt.Sprint(data.Critical)))
		printKV(&b, "Warnings", severityStyle(auditlog.SeverityWarning).Render(fmt.Sprint(data.Warnings)))
		printKV(&b, "Info", severityStyle(auditlog.SeverityInfo).Render(fmt.Sprint(data.Info)))
		printKV(&b, "Logins", fmt.Sprint(data.SuccessfulLogins))
		b.WriteString(separator() + "\n")
		b.WriteString(auditlog.BarChart(data.ByType, 30) + "\n")
		fmt.Print(b.String())
	})
}

// logsSimulate shows what the security console would display after a
// simulated event. Nothing is sent to the backend.
func logsSimulate(args Args, entries []model.AuditLogEntry) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	sim := auditlog.Simulate(entries, rng, time.Now())
	entries = append(entries, sim)
	return OutputJSON(args.JSON, "logs simulate", entries, func() {
		fmt.Printf("%s Simulated %s (local only)\n", InfoStyle.Render("[SIM]"), auditlog.EventLabel(sim.EventType))
		fmt.Print(formatLogTable(entries))
	})
}

// ExportData is the --json payload of "logs export".
type ExportData struct {
	Path    string `json:"path"`
	Entries int    `json:"entries"`
}

func logsExport(args Args, p *ArgParser, entries []model.AuditLogEntry) error {
	var buf bytes.Buffer
	if err := auditlog.ExportCSV(&buf, entries); err != nil {
		return NewCommandError("logs", "export", err)
	}

	path := p.FlagOrDefault("output", auditlog.DefaultExportName)
	if path == "-" {
		_, err := io.Copy(os.Stdout, &buf)
		return err
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0644); err != nil {
		return NewCommandError("logs", "export", err)
	}
	return OutputJSON(args.JSON, "logs export", ExportData{Path: path, Entries: len(entries)}, func() {
		fmt.Printf("%s Exported %d events to %s\n", SuccessStyle.Render("[OK]"), len(entries), path)
	})
}
