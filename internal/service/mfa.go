// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// DefaultMFAIssuer labels authenticator entries when the backend names none.
const DefaultMFAIssuer = "RBAC Console"

// MFAEnrollment is the backend's answer to an MFA enable request. Key is set
// when the answer carried an otpauth URL or a bare secret.
type MFAEnrollment struct {
	Raw     json.RawMessage
	Message string
	Key     *otp.Key
}

// HasKey reports whether an authenticator secret was returned.
func (m *MFAEnrollment) HasKey() bool {
	return m != nil && m.Key != nil
}

// Verify checks a six-digit code against the enrolled secret.
func (m *MFAEnrollment) Verify(code string) bool {
	if !m.HasKey() {
		return false
	}
	return totp.Validate(strings.TrimSpace(code), m.Key.Secret())
}

// EnableMFA asks the backend to enable MFA. An empty username targets the
// caller's own account.
func (s *Service) EnableMFA(ctx context.Context, username string) (*MFAEnrollment, error) {
	body := struct {
		Username string `json:"username,omitempty"`
	}{username}

	resp, err := s.api.Do(ctx, http.MethodPost, PathEnableMFA, body)
	if err != nil {
		return nil, err
	}
	enrollment := &MFAEnrollment{Raw: raw(resp)}

	var fields map[string]interface{}
	if err := json.Unmarshal(resp.Body, &fields); err != nil {
		return enrollment, nil
	}
	enrollment.Message = stringField(fields, "message", "detail")

	account := username
	if account == "" {
		if cur, ok := s.store.Current(); ok {
			account = cur.User.Username
		}
	}
	key, err := mfaKey(fields, account)
	if err != nil {
		s.log.Debug().Err(err).Msg("mfa secret unreadable")
		return enrollment, nil
	}
	enrollment.Key = key
	return enrollment, nil
}

// mfaKey builds an otp.Key from an otpauth URL field or a bare secret.
func mfaKey(fields map[string]interface{}, account string) (*otp.Key, error) {
	if uri := stringField(fields, "otpauth_url", "provisioning_uri", "uri", "qr_uri"); uri != "" {
		return otp.NewKeyFromURL(uri)
	}
	secret := stringField(fields, "secret", "mfa_secret", "pin")
	if secret == "" {
		return nil, fmt.Errorf("no secret in response")
	}
	issuer := stringField(fields, "issuer")
	if issuer == "" {
		issuer = DefaultMFAIssuer
	}
	if account == "" {
		account = "user"
	}
	q := url.Values{}
	q.Set("secret", strings.ToUpper(strings.ReplaceAll(secret, " ", "")))
	q.Set("issuer", issuer)
	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: q.Encode(),
	}
	return otp.NewKeyFromURL(u.String())
}

func stringField(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
