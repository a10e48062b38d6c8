// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_SignalsOnSessionChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))
	select {
	case <-w.Events():
		t.Fatal("unexpected event for unrelated file")
	case <-time.After(200 * time.Millisecond):
	}

	require.NoError(t, NewStore(NewFileBackend(path, nil)).Save("t1", alice))
	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("no event after session write")
	}
}
