// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rbac-console/internal/api"
	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
	"github.com/jeranaias/rbac-console/internal/session"
	"github.com/jeranaias/rbac-console/internal/ui/styles"
)

type reply struct {
	status int
	body   string
}

// harness wires views to an httptest backend and records redirects.
type harness struct {
	env     *Env
	store   *session.Store
	mu      sync.Mutex
	replies map[string]reply
	paths   []string
	bodies  map[string]string
	navs    []router.Route
}

func newHarness(t *testing.T, replies map[string]reply) *harness {
	t.Helper()
	h := &harness{replies: replies, bodies: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.paths = append(h.paths, r.URL.Path)
		h.bodies[r.URL.Path] = string(data)
		rep, ok := h.replies[r.URL.Path]
		h.mu.Unlock()
		if !ok {
			rep = reply{http.StatusNotFound, `{"detail":"Not Found"}`}
		}
		w.WriteHeader(rep.status)
		io.WriteString(w, rep.body)
	}))
	t.Cleanup(srv.Close)

	h.store = session.NewMemoryStore()
	svc := service.New(api.NewClient(srv.URL+"/api", h.store), h.store)
	gate := router.NewGate(h.store, router.NavigatorFunc(func(r router.Route) {
		h.navs = append(h.navs, r)
	}))

	h.env = NewEnv(context.Background(), svc, gate, styles.NewThemeFor(styles.ModeDark))
	h.env.Now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	h.env.Rand = rand.New(rand.NewSource(1))
	h.env.ExportDir = t.TempDir()
	return h
}

func (h *harness) signIn(t *testing.T, u model.User) {
	t.Helper()
	require.NoError(t, h.store.Save("tok", u))
}

func (h *harness) requested(path string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.paths {
		if p == path {
			return true
		}
	}
	return false
}

func (h *harness) body(path string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bodies[path]
}

// collect runs cmd and any batched commands, dropping spinner ticks.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch m := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, collect(c)...)
		}
		return out
	case spinner.TickMsg, nil:
		return nil
	}
	return []tea.Msg{msg}
}

// feed runs cmd and delivers its messages to v.
func feed(v View, cmd tea.Cmd) View {
	for _, msg := range collect(cmd) {
		v, _ = v.Update(msg)
	}
	return v
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyEnter() tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyEnter} }

var admin = model.User{ID: 1, Username: "root", Email: "root@example.com", Role: model.RoleAdmin}
