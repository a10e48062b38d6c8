// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/rbac-console/internal/auditlog"
	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/util"
)

type logsLoadedMsg struct {
	entries []model.AuditLogEntry
	err     error
}

type exportDoneMsg struct {
	path string
	err  error
}

// SecurityView is the audit dashboard.
type SecurityView struct {
	env       *Env
	operator  string
	entries   []model.AuditLogEntry
	table     table.Model
	spinner   spinner.Model
	help      help.Model
	keys      consoleKeyMap
	loading   bool
	showChart bool
	status    statusLine
}

// NewSecurityView builds the security dashboard.
func NewSecurityView(env *Env) *SecurityView {
	keys := newConsoleKeys()
	keys.only(&keys.Sim, &keys.Export, &keys.Chart)
	return &SecurityView{
		env: env,
		table: newTable(env.Theme, []table.Column{
			{Title: "Severity", Width: 10},
			{Title: "Type", Width: 18},
			{Title: "User", Width: 14},
			{Title: "IP", Width: 15},
			{Title: "Action", Width: 22},
			{Title: "Timestamp", Width: 20},
		}, tableHeight(env.Theme, 14)),
		spinner: spinner.New(),
		help:    help.New(),
		keys:    keys,
	}
}

func (s *SecurityView) Route() router.Route { return router.RouteSecurity }

// Entries returns the log entries currently shown.
func (s *SecurityView) Entries() []model.AuditLogEntry { return s.entries }

func (s *SecurityView) Init() tea.Cmd {
	cur, ok := s.env.Service.Store().Current()
	if !ok {
		return navigate(router.RouteLogin)
	}
	s.operator = cur.User.Username
	return s.reload()
}

func (s *SecurityView) reload() tea.Cmd {
	s.loading = true
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		entries, err := s.env.Service.GetLogs(s.env.Ctx)
		return logsLoadedMsg{entries: entries, err: err}
	})
}

func (s *SecurityView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.table.SetHeight(tableHeight(s.env.Theme, 14))
		return s, nil

	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case logsLoadedMsg:
		s.loading = false
		if msg.err != nil {
			s.status.fail("Failed to load security logs: " + s.env.errorText(msg.err))
			return s, nil
		}
		s.entries = msg.entries
		s.refreshRows()
		return s, nil

	case exportDoneMsg:
		if msg.err != nil {
			s.status.fail("Export failed: " + msg.err.Error())
		} else {
			s.status.ok("Exported to " + msg.path)
		}
		return s, nil

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *SecurityView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keys.Quit):
		return tea.Quit
	case key.Matches(msg, s.keys.Logout):
		return s.env.logout()
	case key.Matches(msg, s.keys.Reload):
		s.status.clear()
		return s.reload()
	case key.Matches(msg, s.keys.Chart):
		s.showChart = !s.showChart
		return nil
	case key.Matches(msg, s.keys.Sim):
		entry := auditlog.Simulate(s.entries, s.env.Rand, s.env.Now())
		s.entries = append(s.entries, entry)
		s.refreshRows()
		s.table.GotoBottom()
		s.status.ok("Simulated " + auditlog.EventLabel(entry.EventType))
		return nil
	case key.Matches(msg, s.keys.Export):
		return s.export()
	}

	var cmd tea.Cmd
	s.table, cmd = s.table.Update(msg)
	return cmd
}

// export snapshots the current entries and writes them off the UI loop.
func (s *SecurityView) export() tea.Cmd {
	var buf bytes.Buffer
	if err := auditlog.ExportCSV(&buf, s.entries); err != nil {
		s.status.fail("Export failed: " + err.Error())
		return nil
	}
	path := filepath.Join(s.env.ExportDir, auditlog.DefaultExportName)
	data := buf.Bytes()
	return func() tea.Msg {
		return exportDoneMsg{path: path, err: util.AtomicWriteFile(path, data, 0o644)}
	}
}

func (s *SecurityView) refreshRows() {
	rows := make([]table.Row, 0, len(s.entries))
	for _, e := range s.entries {
		action := e.Summary()
		if action == "" {
			action = "-"
		}
		rows = append(rows, table.Row{
			auditlog.SeverityOf(e.EventType).String(),
			e.EventType,
			e.Username,
			e.IPAddress,
			action,
			e.FormattedTime(),
		})
	}
	s.table.SetRows(rows)
}

func (s *SecurityView) View() string {
	t := s.env.Theme
	var b strings.Builder

	b.WriteString(t.Header.Render("Security Dashboard") + "  " + t.Muted.Render("signed in as "+s.operator))
	b.WriteString("\n\n")
	b.WriteString(s.summaryCards())
	b.WriteString("\n\n")

	if s.loading {
		b.WriteString(s.spinner.View() + " Loading security logs...\n")
	}
	if s.showChart {
		b.WriteString(t.Section.Render("Events by type") + "\n")
		b.WriteString(auditlog.BarChart(auditlog.CountByType(s.entries), 30))
		b.WriteString("\n\n")
	}
	b.WriteString(s.table.View())

	if e, ok := s.selected(); ok {
		sev := auditlog.SeverityOf(e.EventType)
		b.WriteString("\n" + t.SeverityBadge(sev) + " " + t.Value.Render(auditlog.EventLabel(e.EventType)))
		if d := e.Summary(); d != "" {
			b.WriteString(t.Muted.Render("  " + d))
		}
	}

	b.WriteString("\n\n" + s.help.View(s.keys))
	if st := s.status.render(s.env); st != "" {
		b.WriteString("\n" + st)
	}
	return t.App.Render(b.String())
}

func (s *SecurityView) summaryCards() string {
	t := s.env.Theme
	sum := auditlog.Summarize(s.entries)
	card := func(label string, n int, sev auditlog.Severity) string {
		return t.Card.Render(t.Label.Render(label) + "\n" + t.SeverityStyle(sev).Render(fmt.Sprint(n)))
	}
	cards := []string{
		card("Critical", sum.Critical, auditlog.SeverityCritical),
		card("Warnings", sum.Warnings, auditlog.SeverityWarning),
		card("Info", sum.Info, auditlog.SeverityInfo),
		card("Logins", sum.SuccessfulLogins, auditlog.SeverityNormal),
	}
	if t.Narrow() {
		return lipgloss.JoinVertical(lipgloss.Left, cards...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func (s *SecurityView) selected() (model.AuditLogEntry, bool) {
	i := s.table.Cursor()
	if i < 0 || i >= len(s.entries) {
		return model.AuditLogEntry{}, false
	}
	return s.entries[i], true
}
