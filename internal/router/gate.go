// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/rbac-console/internal/api"
	"github.com/jeranaias/rbac-console/internal/logging"
)

// ErrNotAuthenticated is returned by Require without a session.
var ErrNotAuthenticated = errors.New("not logged in")

// Sessions is the part of the session store the gate needs.
type Sessions interface {
	IsAuthenticated() bool
	Clear() error
}

// Navigator performs a redirect.
type Navigator interface {
	Navigate(Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Route)

// Navigate calls f(r).
func (f NavigatorFunc) Navigate(r Route) { f(r) }

// Gate guards protected routes.
type Gate struct {
	mu         sync.Mutex
	sessions   Sessions
	nav        Navigator
	active     Route
	redirected bool
	log        zerolog.Logger
}

// NewGate builds a gate. nav may be nil for callers that only use Require.
func NewGate(sessions Sessions, nav Navigator) *Gate {
	return &Gate{
		sessions: sessions,
		nav:      nav,
		active:   RouteRoot,
		log:      logging.Component("gate"),
	}
}

// SetNavigator replaces the redirect target.
func (g *Gate) SetNavigator(nav Navigator) {
	g.mu.Lock()
	g.nav = nav
	g.mu.Unlock()
}

// Active returns the most recently activated route.
func (g *Gate) Active() Route {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// Activate records route as active and reports whether its view may render.
// A protected route without a session redirects to /login instead.
func (g *Gate) Activate(route Route) bool {
	g.mu.Lock()
	g.active = route
	g.redirected = false
	if !route.Protected() || g.sessions.IsAuthenticated() {
		g.mu.Unlock()
		return true
	}
	g.redirected = true
	nav := g.nav
	g.mu.Unlock()

	g.log.Debug().Str("route", route.String()).Msg("no session, redirecting")
	if nav != nil {
		nav.Navigate(RouteLogin)
	}
	return false
}

// HandleError reports whether err was a 401. The first 401 seen while a
// protected route is active clears the session and redirects to /login.
func (g *Gate) HandleError(err error) bool {
	if !api.IsUnauthorized(err) {
		return false
	}

	g.mu.Lock()
	if g.redirected || !g.active.Protected() {
		g.mu.Unlock()
		return true
	}
	g.redirected = true
	nav := g.nav
	route := g.active
	g.mu.Unlock()

	if clearErr := g.sessions.Clear(); clearErr != nil {
		g.log.Warn().Err(clearErr).Msg("failed to clear rejected session")
	}
	g.log.Info().Str("route", route.String()).Msg("session rejected, redirecting")
	if nav != nil {
		nav.Navigate(RouteLogin)
	}
	return true
}

// Require is the non-interactive form of Activate used by CLI commands.
// It activates route and fails with ErrNotAuthenticated when the route is
// protected and there is no session.
func (g *Gate) Require(route Route) error {
	if !g.Activate(route) {
		return ErrNotAuthenticated
	}
	return nil
}
