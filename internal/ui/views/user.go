// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"errors"
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
	"github.com/jeranaias/rbac-console/internal/service"
	"github.com/jeranaias/rbac-console/internal/util"
)

type profileSavedMsg struct {
	update service.ProfileUpdate
	err    error
}

type passwordChangedMsg struct {
	err error
}

type selfMFAMsg struct {
	enrollment *service.MFAEnrollment
	err        error
}

// Inline messages.
const (
	MsgProfileUpdated   = "Profile updated successfully!"
	MsgProfileFailed    = "Failed to update profile. Please try again."
	MsgPasswordUpdated  = "Password updated successfully!"
	MsgPasswordFailed   = "Failed to update password. Please check your current password and try again."
	MsgPasswordMismatch = "New passwords do not match!"
	MsgMFAFailed        = "Failed to update MFA settings. Please try again."
	MsgMFAEnabled       = "MFA Enabled"
	MsgMFADisabled      = "MFA Disabled"
)

type userPane int

const (
	paneNone userPane = iota
	paneProfile
	panePassword
)

// UserView is the self-service dashboard.
type UserView struct {
	env     *Env
	user    model.User
	logs    []model.AuditLogEntry
	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    consoleKeyMap
	loading bool
	pane    userPane
	form    *form
	secret  string
	status  statusLine
}

// NewUserView builds the user dashboard.
func NewUserView(env *Env) *UserView {
	keys := newConsoleKeys()
	keys.only(&keys.Edit, &keys.Passwd, &keys.MFA)
	return &UserView{
		env: env,
		table: newTable(env.Theme, []table.Column{
			{Title: "Type", Width: 18},
			{Title: "Timestamp", Width: 20},
			{Title: "IP", Width: 15},
			{Title: "Description", Width: 28},
		}, tableHeight(env.Theme, 16)),
		spinner: spinner.New(),
		help:    help.New(),
		keys:    keys,
	}
}

func (u *UserView) Route() router.Route { return router.RouteUser }

// User returns the displayed user.
func (u *UserView) User() model.User { return u.user }

func (u *UserView) Init() tea.Cmd {
	cur, ok := u.env.Service.Store().Current()
	if !ok {
		return navigate(router.RouteLogin)
	}
	u.user = cur.User
	return u.reload()
}

func (u *UserView) reload() tea.Cmd {
	u.loading = true
	return tea.Batch(u.spinner.Tick, func() tea.Msg {
		entries, err := u.env.Service.GetLogs(u.env.Ctx)
		return logsLoadedMsg{entries: entries, err: err}
	})
}

func (u *UserView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		u.table.SetHeight(tableHeight(u.env.Theme, 16))
		return u, nil

	case spinner.TickMsg:
		if !u.loading {
			return u, nil
		}
		var cmd tea.Cmd
		u.spinner, cmd = u.spinner.Update(msg)
		return u, cmd

	case logsLoadedMsg:
		u.loading = false
		if msg.err != nil {
			u.status.fail("Failed to load activity: " + u.env.errorText(msg.err))
			return u, nil
		}
		u.logs = msg.entries
		u.refreshRows()
		return u, nil

	case profileSavedMsg:
		if msg.err != nil {
			u.status.fail(u.failure(msg.err, MsgProfileFailed))
			return u, nil
		}
		u.user.Email = msg.update.Email
		u.user.Phone = msg.update.Phone
		u.closePane()
		u.status.ok(MsgProfileUpdated)
		return u, nil

	case passwordChangedMsg:
		if msg.err != nil {
			u.status.fail(u.failure(msg.err, MsgPasswordFailed))
			return u, nil
		}
		u.closePane()
		u.status.ok(MsgPasswordUpdated)
		return u, nil

	case selfMFAMsg:
		if msg.err != nil {
			u.status.fail(u.failure(msg.err, MsgMFAFailed))
			return u, nil
		}
		return u, u.mfaToggled(msg.enrollment)

	case tea.KeyMsg:
		if u.form != nil {
			return u, u.updateForm(msg)
		}
		return u, u.handleKey(msg)
	}
	return u, nil
}

// failure keeps the session-expired and validation texts, and falls back to
// the fixed message for anything the server said.
func (u *UserView) failure(err error, fallback string) string {
	text := u.env.errorText(err)
	if text == MsgSessionExpired {
		return text
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return text
	}
	return fallback
}

func (u *UserView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, u.keys.Quit):
		return tea.Quit
	case key.Matches(msg, u.keys.Logout):
		return u.env.logout()
	case key.Matches(msg, u.keys.Reload):
		u.status.clear()
		return u.reload()
	case key.Matches(msg, u.keys.Edit):
		u.status.clear()
		u.pane = paneProfile
		u.form = newForm(
			fieldSpec{label: "Email", value: u.user.Email},
			fieldSpec{label: "Phone", value: u.user.Phone},
		)
		return u.form.setFocus(0)
	case key.Matches(msg, u.keys.Passwd):
		u.status.clear()
		u.pane = panePassword
		u.form = newForm(
			fieldSpec{label: "Current Password", secret: true},
			fieldSpec{label: "New Password", secret: true},
			fieldSpec{label: "Confirm New Password", secret: true},
		)
		return u.form.setFocus(0)
	case key.Matches(msg, u.keys.MFA):
		u.status.clear()
		return func() tea.Msg {
			enrollment, err := u.env.Service.EnableMFA(u.env.Ctx, "")
			return selfMFAMsg{enrollment: enrollment, err: err}
		}
	}

	var cmd tea.Cmd
	u.table, cmd = u.table.Update(msg)
	return cmd
}

func (u *UserView) updateForm(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, formKeys.Cancel):
		u.closePane()
		return nil
	case key.Matches(msg, formKeys.Submit):
		if msg.Type == tea.KeyEnter && !u.form.onLast() {
			return u.form.setFocus(u.form.focus + 1)
		}
		if u.pane == paneProfile {
			return u.saveProfile()
		}
		return u.changePassword()
	}
	return u.form.update(msg)
}

func (u *UserView) saveProfile() tea.Cmd {
	update := service.ProfileUpdate{Email: u.form.value(0), Phone: u.form.value(1)}
	return func() tea.Msg {
		_, err := u.env.Service.UpdateProfile(u.env.Ctx, update)
		return profileSavedMsg{update: update, err: err}
	}
}

func (u *UserView) changePassword() tea.Cmd {
	change := service.PasswordChange{
		Current: u.form.rawValue(0),
		New:     u.form.rawValue(1),
		Confirm: u.form.rawValue(2),
	}
	// Checked here so nothing is sent on a mismatch.
	if change.New != change.Confirm {
		u.status.fail(MsgPasswordMismatch)
		return nil
	}
	return func() tea.Msg {
		_, err := u.env.Service.ChangePassword(u.env.Ctx, change)
		return passwordChangedMsg{err: err}
	}
}

func (u *UserView) mfaToggled(enrollment *service.MFAEnrollment) tea.Cmd {
	u.user.MFAEnabled = !u.user.MFAEnabled
	u.secret = ""
	if u.user.MFAEnabled && enrollment.HasKey() {
		u.secret = enrollment.Key.Secret()
	}
	if err := u.env.Service.Store().UpdateUser(u.user); err != nil {
		u.status.fail(err.Error())
		return nil
	}
	if u.user.MFAEnabled {
		u.status.ok(MsgMFAEnabled)
	} else {
		u.status.ok(MsgMFADisabled)
	}
	return nil
}

func (u *UserView) closePane() {
	u.pane = paneNone
	u.form = nil
}

func (u *UserView) refreshRows() {
	rows := make([]table.Row, 0, len(u.logs))
	for _, e := range u.logs {
		rows = append(rows, table.Row{e.EventType, e.FormattedTime(), e.IPAddress, e.Description})
	}
	u.table.SetRows(rows)
}

func (u *UserView) View() string {
	t := u.env.Theme
	var b strings.Builder

	b.WriteString(t.Header.Render("User Dashboard"))
	b.WriteString("\n\n")

	initial := t.ButtonActive.Render(" " + util.Initial(u.user.Username, "?") + " ")
	profile := lipgloss.JoinVertical(lipgloss.Left,
		initial+" "+t.Title.Render(u.user.Username)+"  "+t.RoleBadge(u.user.Role),
		t.Label.Render("Email ")+t.Value.Render(util.FirstNonEmpty(u.user.Email, "-")),
		t.Label.Render("Phone ")+t.Value.Render(util.FirstNonEmpty(u.user.Phone, "-")),
		t.Label.Render("MFA   ")+t.MFABadge(u.user.MFAEnabled),
	)
	b.WriteString(t.Card.Render(profile))
	b.WriteString("\n")

	if u.secret != "" {
		b.WriteString(t.Info.Render("Authenticator secret: "+u.secret) + "\n")
	}

	switch u.pane {
	case paneProfile:
		b.WriteString(t.Section.Render("Edit Profile") + "\n" + u.form.view(t))
		b.WriteString("\n\n" + u.help.View(formKeys))
	case panePassword:
		b.WriteString(t.Section.Render("Change Password") + "\n" + u.form.view(t))
		b.WriteString("\n\n" + u.help.View(formKeys))
	default:
		b.WriteString(t.Section.Render("Recent Activity") + "\n")
		if u.loading {
			b.WriteString(u.spinner.View() + " Loading activity...\n")
		}
		b.WriteString(u.table.View())
		if len(u.logs) > 0 {
			b.WriteString("\n" + t.Muted.Render(auditlog.EventLabel(u.logs[0].EventType)+" is your latest event"))
		}
		b.WriteString("\n\n" + u.help.View(u.keys))
	}

	if s := u.status.render(u.env); s != "" {
		b.WriteString("\n" + s)
	}
	return t.App.Render(b.String())
}
