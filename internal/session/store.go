// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/rbac-console/internal/logging"
	"github.com/jeranaias/rbac-console/internal/model"
)

// Persisted entry names.
const (
	TokenKey = "AuthToken"
	UserKey  = "Ruser"
)

var (
	// ErrIncompleteSession is returned when saving without a token or user.
	ErrIncompleteSession = errors.New("session requires both a token and a user")
	// ErrNoSession is returned when an update needs an existing session.
	ErrNoSession = errors.New("no active session")
)

// Session is the authenticated identity: a bearer token and the user it
// belongs to. Both are always present together.
type Session struct {
	Token string
	User  model.User
}

// Store owns the persisted session.
type Store struct {
	mu      sync.Mutex
	backend Backend
	log     zerolog.Logger
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend, log: logging.Component("session")}
}

// NewMemoryStore is a store over a fresh MemoryBackend.
func NewMemoryStore() *Store {
	return NewStore(NewMemoryBackend())
}

// Save persists token and user in one backend write, replacing any prior
// session.
func (s *Store) Save(token string, user model.User) error {
	if token == "" || !user.HasIdentity() {
		return ErrIncompleteSession
	}
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.SetMany(map[string]string{TokenKey: token, UserKey: string(blob)}); err != nil {
		return err
	}
	s.log.Debug().Str("user", user.Username).Msg("session saved")
	return nil
}

// Clear removes both entries. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(TokenKey, UserKey); err != nil {
		return err
	}
	s.log.Debug().Msg("session cleared")
	return nil
}

// Current reads the session back. A half-written or unreadable session is
// reported as absent.
func (s *Store) Current() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Store) current() (Session, bool) {
	token, hasToken, err := s.backend.Get(TokenKey)
	if err != nil {
		s.log.Debug().Err(err).Msg("session unreadable")
		return Session{}, false
	}
	blob, hasUser, err := s.backend.Get(UserKey)
	if err != nil {
		s.log.Debug().Err(err).Msg("session unreadable")
		return Session{}, false
	}
	if !hasToken || !hasUser || token == "" {
		if hasToken != hasUser {
			s.log.Debug().Bool("token", hasToken).Bool("user", hasUser).Msg("partial session ignored")
		}
		return Session{}, false
	}

	var user model.User
	if err := json.Unmarshal([]byte(blob), &user); err != nil || !user.HasIdentity() {
		s.log.Debug().Msg("cached user invalid")
		return Session{}, false
	}
	return Session{Token: token, User: user}, true
}

// IsAuthenticated reports whether Current would return a session.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// Token returns the bearer token, or "" without a complete session.
func (s *Store) Token() string {
	sess, ok := s.Current()
	if !ok {
		return ""
	}
	return sess.Token
}

// UpdateUser replaces the cached user, keeping the token.
func (s *Store) UpdateUser(user model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.current(); !ok {
		return ErrNoSession
	}
	if !user.HasIdentity() {
		return ErrIncompleteSession
	}
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.backend.SetMany(map[string]string{UserKey: string(blob)})
}

// Close releases the backend.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Close()
}
