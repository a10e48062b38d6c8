// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"sync"

	"github.com/jeranaias/rbac-console/internal/config"
	"github.com/jeranaias/rbac-console/internal/security"
)

// Backend persists string entries. SetMany must apply all entries or none.
type Backend interface {
	Get(key string) (string, bool, error)
	SetMany(entries map[string]string) error
	Delete(keys ...string) error
	Close() error
}

// =============================================================================
// MEMORY BACKEND
// =============================================================================

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]string)}
}

func (m *MemoryBackend) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	return v, ok, nil
}

func (m *MemoryBackend) SetMany(entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}

func (m *MemoryBackend) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// =============================================================================
// FACTORY
// =============================================================================

// Open builds the backend selected by cfg.Session.
func Open(cfg *config.Config) (Backend, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return NewMemoryBackend(), nil

	case config.BackendSQLite:
		path, err := cfg.SessionPath()
		if err != nil {
			return nil, err
		}
		return OpenSQLite(path)

	case config.BackendFile, "":
		path, err := cfg.SessionPath()
		if err != nil {
			return nil, err
		}
		var sealer *security.Sealer
		if cfg.Session.Encrypt {
			keyPath, err := config.KeyPath()
			if err != nil {
				return nil, err
			}
			sealer, err = security.SealerForPath(keyPath)
			if err != nil {
				return nil, fmt.Errorf("session key: %w", err)
			}
		}
		return NewFileBackend(path, sealer), nil

	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
