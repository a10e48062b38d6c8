// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/jeranaias/rbac-console/internal/logging"
)

// Watcher reports changes to a session file made by other processes, such
// as `rbac-console logout` run in another terminal.
type Watcher struct {
	watcher *fsnotify.Watcher
	name    string
	events  chan struct{}
	log     zerolog.Logger
}

// NewWatcher watches the directory holding path. The atomic writer replaces
// the file by rename, so the file itself cannot be watched directly.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher: fw,
		name:    filepath.Base(path),
		events:  make(chan struct{}, 1),
		log:     logging.Component("session.watch"),
	}, nil
}

// Events delivers one value per burst of changes. Bursts coalesce while the
// previous value is unread.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Run forwards matching events until ctx is done or the watcher closes.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			w.log.Trace().Str("op", event.Op.String()).Msg("session file changed")
			select {
			case w.events <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Debug().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) matches(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	// SQLite writes land in the -wal sidecar.
	if base != w.name && !strings.HasPrefix(base, w.name+"-") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
