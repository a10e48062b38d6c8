// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jeranaias/rbac-console/internal/util"
)

// Kind classifies a failed request.
type Kind int

const (
	// ServerRejected means the backend returned a non-2xx status.
	ServerRejected Kind = iota + 1
	// NoResponse means the request was sent but no complete response arrived.
	NoResponse
	// RequestSetupFailed means the request could not be constructed or sent.
	RequestSetupFailed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case ServerRejected:
		return "ServerRejected"
	case NoResponse:
		return "NoResponse"
	case RequestSetupFailed:
		return "RequestSetupFailed"
	default:
		return "Unknown"
	}
}

// Fixed messages for failures without a server payload.
const (
	MsgNoResponse   = "No response from server. Please check your connection."
	MsgSetupFailed  = "Failed to send request. Please try again."
	maxMessageWidth = 200
)

// RequestError is the normalized error for every failed call.
type RequestError struct {
	Kind    Kind
	Message string

	// Status and Payload are set for ServerRejected only.
	Status  int
	Payload []byte

	// Err is the underlying transport or setup error, if any.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Detail includes kind, status and cause for logs and verbose output.
func (e *RequestError) Detail() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// DecodePayload unmarshals the rejected response body into v.
func (e *RequestError) DecodePayload(v interface{}) error {
	if len(e.Payload) == 0 {
		return errors.New("no payload")
	}
	return json.Unmarshal(e.Payload, v)
}

func setupFailed(err error) *RequestError {
	return &RequestError{Kind: RequestSetupFailed, Message: MsgSetupFailed, Err: err}
}

func noResponse(err error) *RequestError {
	return &RequestError{Kind: NoResponse, Message: MsgNoResponse, Err: err}
}

func serverRejected(status int, body []byte) *RequestError {
	return &RequestError{
		Kind:    ServerRejected,
		Message: serverMessage(status, body),
		Status:  status,
		Payload: body,
	}
}

// serverMessage picks the message shown to the user for a rejected call:
// an error/message/detail field, else the raw body, else the status text.
func serverMessage(status int, body []byte) string {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"error", "message", "detail"} {
			if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return util.TruncateWidth(text, maxMessageWidth)
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

// =============================================================================
// HELPERS
// =============================================================================

// AsRequestError extracts a *RequestError from err.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or 0 if err is not a RequestError.
func KindOf(err error) Kind {
	if reqErr, ok := AsRequestError(err); ok {
		return reqErr.Kind
	}
	return 0
}

// IsUnauthorized reports whether the backend rejected the bearer token.
func IsUnauthorized(err error) bool {
	reqErr, ok := AsRequestError(err)
	return ok && reqErr.Kind == ServerRejected && reqErr.Status == http.StatusUnauthorized
}

// StatusOf returns the HTTP status of a rejected call, or 0.
func StatusOf(err error) int {
	if reqErr, ok := AsRequestError(err); ok {
		return reqErr.Status
	}
	return 0
}
