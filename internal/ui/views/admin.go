// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
)

type usersLoadedMsg struct {
	users []model.User
	err   error
}

type roleAssignedMsg struct {
	userID  int64
	role    model.Role
	payload []byte
	err     error
}

type mfaToggledMsg struct {
	userID     int64
	enrollment *service.MFAEnrollment
	err        error
}

type userCreatedMsg struct {
	input  service.NewUser
	result service.CreateUserResult
	err    error
}

// Create-user form fields.
const (
	newUserName = iota
	newUserEmail
	newUserPassword
	newUserPhone
	newUserRole
)

// AdminView manages accounts.
type AdminView struct {
	env      *Env
	operator string
	users    []model.User
	table    table.Model
	spinner  spinner.Model
	help     help.Model
	keys     consoleKeyMap
	loading  bool
	create   *form
	status   statusLine
}

// NewAdminView builds the admin console.
func NewAdminView(env *Env) *AdminView {
	keys := newConsoleKeys()
	keys.only(&keys.Role, &keys.MFA, &keys.New)
	return &AdminView{
		env: env,
		table: newTable(env.Theme, []table.Column{
			{Title: "ID", Width: 5},
			{Title: "Username", Width: 16},
			{Title: "Email", Width: 26},
			{Title: "Role", Width: 14},
			{Title: "MFA", Width: 9},
		}, tableHeight(env.Theme, 12)),
		spinner: spinner.New(),
		help:    help.New(),
		keys:    keys,
	}
}

func (a *AdminView) Route() router.Route { return router.RouteAdmin }

// Users returns the rows currently shown.
func (a *AdminView) Users() []model.User { return a.users }

func (a *AdminView) Init() tea.Cmd {
	cur, ok := a.env.Service.Store().Current()
	if !ok {
		return navigate(router.RouteLogin)
	}
	a.operator = cur.User.Username
	return a.reload()
}

func (a *AdminView) reload() tea.Cmd {
	a.loading = true
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		users, err := a.env.Service.ListUsers(a.env.Ctx)
		return usersLoadedMsg{users: users, err: err}
	})
}

func (a *AdminView) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.table.SetHeight(tableHeight(a.env.Theme, 12))
		return a, nil

	case spinner.TickMsg:
		if !a.loading {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case usersLoadedMsg:
		a.loading = false
		if msg.err != nil {
			a.status.fail("Failed to load users: " + a.env.errorText(msg.err))
			return a, nil
		}
		a.users = msg.users
		a.refreshRows()
		return a, nil

	case roleAssignedMsg:
		if msg.err != nil {
			a.status.fail("Failed to update user role: " + a.env.errorText(msg.err))
			return a, nil
		}
		if service.Truthy(msg.payload) {
			a.updateUser(msg.userID, func(u *model.User) { u.Role = msg.role })
			a.status.ok(fmt.Sprintf("Role changed to %s", msg.role.Label()))
		}
		return a, nil

	case mfaToggledMsg:
		if msg.err != nil {
			a.status.fail("Failed to update MFA settings: " + a.env.errorText(msg.err))
			return a, nil
		}
		if msg.enrollment != nil && (service.Truthy(msg.enrollment.Raw) || msg.enrollment.HasKey()) {
			a.updateUser(msg.userID, func(u *model.User) { u.MFAEnabled = !u.MFAEnabled })
			a.status.ok("MFA settings updated")
		} else {
			a.status.fail("Error occurred updating user")
		}
		return a, nil

	case userCreatedMsg:
		return a, a.created(msg)

	case tea.KeyMsg:
		if a.create != nil {
			return a, a.updateCreate(msg)
		}
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *AdminView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Logout):
		return a.env.logout()
	case key.Matches(msg, a.keys.Reload):
		a.status.clear()
		return a.reload()
	case key.Matches(msg, a.keys.New):
		a.status.clear()
		a.create = newForm(
			fieldSpec{label: "Username"},
			fieldSpec{label: "Email", placeholder: "name@example.com"},
			fieldSpec{label: "Password", placeholder: "at least 6 characters", secret: true},
			fieldSpec{label: "Phone", placeholder: "optional"},
			fieldSpec{label: "Role", placeholder: strings.Join(model.RoleNames(), " | ")},
		)
		return a.create.setFocus(0)
	case key.Matches(msg, a.keys.Role):
		u, ok := a.selected()
		if !ok {
			return nil
		}
		return a.assignRole(u, u.Role.Next())
	case key.Matches(msg, a.keys.MFA):
		u, ok := a.selected()
		if !ok {
			return nil
		}
		return a.toggleMFA(u)
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return cmd
}

func (a *AdminView) assignRole(u model.User, role model.Role) tea.Cmd {
	return func() tea.Msg {
		payload, err := a.env.Service.AssignRole(a.env.Ctx, u.Username, role)
		return roleAssignedMsg{userID: u.ID, role: role, payload: payload, err: err}
	}
}

func (a *AdminView) toggleMFA(u model.User) tea.Cmd {
	return func() tea.Msg {
		enrollment, err := a.env.Service.EnableMFA(a.env.Ctx, u.Username)
		return mfaToggledMsg{userID: u.ID, enrollment: enrollment, err: err}
	}
}

func (a *AdminView) updateCreate(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, formKeys.Cancel):
		a.create = nil
		return nil
	case key.Matches(msg, formKeys.Submit):
		if msg.Type == tea.KeyEnter && !a.create.onLast() {
			return a.create.setFocus(a.create.focus + 1)
		}
		input := service.NewUser{
			Username: a.create.value(newUserName),
			Email:    a.create.value(newUserEmail),
			Password: a.create.rawValue(newUserPassword),
			Phone:    a.create.value(newUserPhone),
			Role:     model.Role(strings.ToLower(a.create.value(newUserRole))),
		}
		return func() tea.Msg {
			res, err := a.env.Service.CreateUser(a.env.Ctx, input)
			return userCreatedMsg{input: input, result: res, err: err}
		}
	}
	return a.create.update(msg)
}

func (a *AdminView) created(msg userCreatedMsg) tea.Cmd {
	if msg.err != nil {
		a.status.fail(a.env.errorText(msg.err))
		return nil
	}
	if !msg.result.Succeeded() {
		text := msg.result.Message
		if text == "" {
			text = "Failed to create user"
		}
		a.status.fail(text)
		return nil
	}

	id := msg.result.ID
	if id == 0 {
		id = model.NextUserID(a.users)
	}
	a.users = append(a.users, model.User{
		ID:         id,
		Username:   msg.input.Username,
		Email:      msg.input.Email,
		Phone:      msg.input.Phone,
		Role:       msg.input.Role,
		MFAEnabled: msg.input.MFAEnabled,
	})
	a.refreshRows()
	a.create = nil
	a.status.ok(service.MsgUserCreated)
	return nil
}

func (a *AdminView) selected() (model.User, bool) {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.users) {
		return model.User{}, false
	}
	return a.users[i], true
}

func (a *AdminView) updateUser(id int64, fn func(*model.User)) {
	for i := range a.users {
		if a.users[i].ID == id {
			fn(&a.users[i])
		}
	}
	a.refreshRows()
}

func (a *AdminView) refreshRows() {
	rows := make([]table.Row, 0, len(a.users))
	for _, u := range a.users {
		mfa := "Disabled"
		if u.MFAEnabled {
			mfa = "Enabled"
		}
		rows = append(rows, table.Row{fmt.Sprint(u.ID), u.Username, u.Email, u.Role.Label(), mfa})
	}
	a.table.SetRows(rows)
}

func (a *AdminView) View() string {
	t := a.env.Theme
	var b strings.Builder

	b.WriteString(t.Header.Render("Admin Console") + "  " + t.Muted.Render("signed in as "+a.operator))
	b.WriteString("\n\n")

	mfaCount := 0
	for _, u := range a.users {
		if u.MFAEnabled {
			mfaCount++
		}
	}
	b.WriteString(t.Label.Render("Users ") + t.Value.Render(fmt.Sprint(len(a.users))))
	b.WriteString("   " + t.Label.Render("MFA Enabled ") + t.Value.Render(fmt.Sprint(mfaCount)))
	b.WriteString("\n\n")

	if a.create != nil {
		b.WriteString(t.Section.Render("Add New User") + "\n")
		b.WriteString(a.create.view(t))
		b.WriteString("\n\n" + a.help.View(formKeys))
	} else {
		if a.loading {
			b.WriteString(a.spinner.View() + " Loading users...\n")
		}
		b.WriteString(a.table.View())
		b.WriteString("\n\n" + a.help.View(a.keys))
	}

	if s := a.status.render(a.env); s != "" {
		b.WriteString("\n" + s)
	}
	return t.App.Render(b.String())
}
