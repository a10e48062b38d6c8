// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package views implements the console's Bubble Tea views.
//
// App owns the active view and performs navigation. It is the router
// gate's Navigator: every switch goes through Gate.Activate, so a protected
// view without a session is never constructed and /login is shown instead.
//
// # Views
//
//   - LoginView: Idle -> Submitting -> Authenticated | Failed
//   - AdminView: user table, create user, role assignment, MFA toggle
//   - SecurityView: audit log table, counters, chart, CSV export, demo entries
//   - UserView: profile, profile update, password change, MFA, own activity
//
// Every backend call runs as a tea.Cmd and reports back with a typed
// message. Errors are shown inline in the view that started the call; a
// 401 additionally goes through the gate, which clears the session and
// returns to /login.
package views
