// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/jeranaias/rbac-console/internal/api"
	"github.com/jeranaias/rbac-console/internal/logging"
	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/session"
)

// Backend paths. The password path is spelled as the backend serves it.
const (
	PathLogin          = "login"
	PathCreateUser     = "admin/create-user"
	PathListUsers      = "admin/users"
	PathAssignRole     = "admin/assign-role"
	PathEnableMFA      = "/user/create-mfa-pin"
	PathChangePassword = "/user/update-passwrod"
	PathProfile        = "user/profile"
	PathRoles          = "user/roles"
	PathUpdateProfile  = "user/update-profile"
	PathLogs           = "logs"
)

// MsgUserCreated is the backend's success message for CreateUser.
const MsgUserCreated = "User created successfully"

// Requester sends one backend call. *api.Client implements it.
type Requester interface {
	Do(ctx context.Context, method, path string, payload interface{}) (*api.Response, error)
}

// Service exposes the backend operations.
type Service struct {
	api      Requester
	store    *session.Store
	validate *validator.Validate
	log      zerolog.Logger
}

// New builds a Service over client and store.
func New(client Requester, store *session.Store) *Service {
	return &Service{
		api:      client,
		store:    store,
		validate: validator.New(),
		log:      logging.Component("service"),
	}
}

// Store returns the session store the service writes to.
func (s *Service) Store() *session.Store {
	return s.store
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Credentials are the login form fields.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

// LoginResult is either Authenticated or Rejected.
type LoginResult interface {
	loginResult()
}

// Authenticated carries the session that was saved.
type Authenticated struct {
	Session session.Session
}

// Rejected means the backend answered but did not establish a session.
type Rejected struct {
	Reason  string
	Payload []byte
}

func (Authenticated) loginResult() {}
func (Rejected) loginResult() {}

// Rejection reasons.
const (
	ReasonIncomplete = "Login response did not include a session."
	ReasonMalformed  = "Login response could not be read."
)

type loginPayload struct {
	AccessToken string      `json:"access_token"`
	User        *model.User `json:"user"`
}

// Login posts URL-encoded credentials. The session is saved only when the
// response has both an access token and a user.
func (s *Service) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	if err := s.check(creds); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)

	resp, err := s.api.Do(ctx, http.MethodPost, PathLogin, form.Encode())
	if err != nil {
		return nil, err
	}

	var payload loginPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		s.log.Debug().Err(err).Msg("login payload unreadable")
		return Rejected{Reason: ReasonMalformed, Payload: resp.Body}, nil
	}
	if payload.AccessToken == "" || payload.User == nil || !payload.User.HasIdentity() {
		return Rejected{Reason: ReasonIncomplete, Payload: resp.Body}, nil
	}

	if err := s.store.Save(payload.AccessToken, *payload.User); err != nil {
		return nil, err
	}
	s.log.Info().Str("user", payload.User.Username).Str("role", string(payload.User.Role)).Msg("logged in")
	return Authenticated{Session: session.Session{Token: payload.AccessToken, User: *payload.User}}, nil
}

// Logout clears the stored session. No backend call is made.
func (s *Service) Logout() error {
	return s.store.Clear()
}

// =============================================================================
// ADMINISTRATION
// =============================================================================

// NewUser is the create-user form.
type NewUser struct {
	Username   string     `json:"username" validate:"required"`
	Email      string     `json:"email" validate:"required,email"`
	Password   string     `json:"password" validate:"required,min=6"`
	Phone      string     `json:"phone"`
	Role       model.Role `json:"role" validate:"required,oneof=admin security user"`
	MFAEnabled bool       `json:"mfa_enabled"`
}

// CreateUserResult is the backend's answer to a create.
type CreateUserResult struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Succeeded reports whether the backend confirmed the creation.
func (r CreateUserResult) Succeeded() bool {
	return r.Message == MsgUserCreated
}

// ListUsers fetches every account.
func (s *Service) ListUsers(ctx context.Context) ([]model.User, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, PathListUsers, nil)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := resp.Decode(&users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser validates u locally, then submits it as JSON.
func (s *Service) CreateUser(ctx context.Context, u NewUser) (CreateUserResult, error) {
	if err := s.check(u); err != nil {
		return CreateUserResult{}, err
	}
	resp, err := s.api.Do(ctx, http.MethodPost, PathCreateUser, u)
	if err != nil {
		return CreateUserResult{}, err
	}
	var result CreateUserResult
	if err := resp.Decode(&result); err != nil {
		return CreateUserResult{}, err
	}
	return result, nil
}

// AssignRole gives username a new role.
func (s *Service) AssignRole(ctx context.Context, username string, role model.Role) (json.RawMessage, error) {
	if username == "" {
		return nil, &ValidationError{Messages: []string{"username is required"}}
	}
	if !role.Valid() {
		return nil, &ValidationError{Messages: []string{"role must be one of: admin security user"}}
	}
	body := struct {
		Username string     `json:"username"`
		Role     model.Role `json:"role"`
	}{username, role}

	resp, err := s.api.Do(ctx, http.MethodPost, PathAssignRole, body)
	if err != nil {
		return nil, err
	}
	return raw(resp), nil
}

// =============================================================================
// SELF SERVICE
// =============================================================================

// PasswordChange is the change-password form. Confirm is optional; when set
// it must equal New.
type PasswordChange struct {
	Current string `json:"currentPassword" validate:"required"`
	New     string `json:"newPassword" validate:"required"`
	Confirm string `json:"-" validate:"omitempty,eqfield=New"`
}

// ProfileUpdate is the editable part of a profile.
type ProfileUpdate struct {
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// ChangePassword submits current and new passwords.
func (s *Service) ChangePassword(ctx context.Context, p PasswordChange) (json.RawMessage, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	resp, err := s.api.Do(ctx, http.MethodPost, PathChangePassword, p)
	if err != nil {
		return nil, err
	}
	return raw(resp), nil
}

// GetProfile fetches the caller's user record.
func (s *Service) GetProfile(ctx context.Context) (model.User, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, PathProfile, nil)
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := resp.Decode(&u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// GetRoles fetches role information. Its shape is backend-defined.
func (s *Service) GetRoles(ctx context.Context) (json.RawMessage, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, PathRoles, nil)
	if err != nil {
		return nil, err
	}
	return raw(resp), nil
}

// UpdateProfile submits p. On success the cached user takes exactly the
// submitted email and phone, whatever the backend echoes.
func (s *Service) UpdateProfile(ctx context.Context, p ProfileUpdate) (json.RawMessage, error) {
	if err := s.check(p); err != nil {
		return nil, err
	}
	resp, err := s.api.Do(ctx, http.MethodPost, PathUpdateProfile, p)
	if err != nil {
		return nil, err
	}

	if current, ok := s.store.Current(); ok {
		user := current.User
		user.Email = p.Email
		user.Phone = p.Phone
		if err := s.store.UpdateUser(user); err != nil {
			return nil, err
		}
	}
	return raw(resp), nil
}

// GetLogs fetches audit log entries.
func (s *Service) GetLogs(ctx context.Context) ([]model.AuditLogEntry, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, PathLogs, nil)
	if err != nil {
		return nil, err
	}
	var entries []model.AuditLogEntry
	if err := resp.Decode(&entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func raw(resp *api.Response) json.RawMessage {
	if len(resp.Body) == 0 || !json.Valid(resp.Body) {
		b, _ := json.Marshal(string(resp.Body))
		return b
	}
	return json.RawMessage(resp.Body)
}

// Truthy reports whether a payload counts as a confirmation: anything but
// null, false, 0, "" or an empty body.
func Truthy(payload json.RawMessage) bool {
	var v interface{}
	if len(payload) == 0 || json.Unmarshal(payload, &v) != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
