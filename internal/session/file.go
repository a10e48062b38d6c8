// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jeranaias/rbac-console/internal/security"
	"github.com/jeranaias/rbac-console/internal/util"
)

// FileBackend stores all entries in one JSON document. Every write replaces
// the whole file, so a reader sees either the old set or the new one.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	sealer *security.Sealer
}

// NewFileBackend returns a backend at path. A nil sealer writes plaintext.
func NewFileBackend(path string, sealer *security.Sealer) *FileBackend {
	return &FileBackend{path: path, sealer: sealer}
}

// Path returns the backing file.
func (f *FileBackend) Path() string { return f.path }

// Get re-reads the file so changes from other processes are seen.
func (f *FileBackend) Get(key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

func (f *FileBackend) SetMany(updates map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		// An unreadable file is replaced rather than blocking a new login.
		entries = make(map[string]string)
	}
	for k, v := range updates {
		entries[k] = v
	}
	return f.write(entries)
}

func (f *FileBackend) Delete(keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return util.RemoveIfExists(f.path)
	}
	for _, k := range keys {
		delete(entries, k)
	}
	if len(entries) == 0 {
		return util.RemoveIfExists(f.path)
	}
	return f.write(entries)
}

func (f *FileBackend) Close() error { return nil }

func (f *FileBackend) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	if security.IsSealed(data) {
		if f.sealer == nil {
			return nil, security.ErrSealerRequired
		}
		if data, err = f.sealer.OpenText(data); err != nil {
			return nil, fmt.Errorf("open session: %w", err)
		}
	}

	entries := make(map[string]string)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return entries, nil
}

func (f *FileBackend) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if f.sealer != nil {
		if data, err = f.sealer.SealText(data); err != nil {
			return fmt.Errorf("seal session: %w", err)
		}
	}
	return util.AtomicWriteFile(f.path, data, 0600)
}
