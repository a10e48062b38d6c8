// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import "github.com/charmbracelet/bubbles/key"

type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Submit key.Binding
	Cancel key.Binding
}

var formKeys = formKeyMap{
	Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
	Submit: key.NewBinding(key.WithKeys("enter", "ctrl+s"), key.WithHelp("enter", "submit")),
	Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
}

func (k formKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Cancel}
}

func (k formKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// consoleKeyMap covers the table views. Bindings a view does not use are
// disabled so they drop out of its help line.
type consoleKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Role   key.Binding
	MFA    key.Binding
	New    key.Binding
	Edit   key.Binding
	Passwd key.Binding
	Sim    key.Binding
	Export key.Binding
	Chart  key.Binding
	Reload key.Binding
	Logout key.Binding
	Quit   key.Binding
}

func newConsoleKeys() consoleKeyMap {
	return consoleKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Role:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "next role")),
		MFA:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mfa")),
		New:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new user")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit profile")),
		Passwd: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "password")),
		Sim:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "simulate")),
		Export: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export csv")),
		Chart:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chart")),
		Reload: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Logout: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "logout")),
		Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	}
}

func (k consoleKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Role, k.MFA, k.New, k.Edit, k.Passwd, k.Sim, k.Export, k.Chart, k.Reload, k.Logout, k.Quit}
}

func (k consoleKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func (k *consoleKeyMap) only(enabled ...*key.Binding) {
	all := []*key.Binding{&k.Role, &k.MFA, &k.New, &k.Edit, &k.Passwd, &k.Sim, &k.Export, &k.Chart}
	for _, b := range all {
		b.SetEnabled(false)
	}
	for _, b := range enabled {
		b.SetEnabled(true)
	}
}
