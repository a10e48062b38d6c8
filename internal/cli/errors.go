// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/jeranaias/rbac-console/internal/api"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitServerError   = 6
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string
	Action  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError is a bad or missing argument.
type UsageError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// ConfigError wraps a configuration failure.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "config: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewCommandError wraps err with the command and action that failed.
func NewCommandError(command, action string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: command, Action: action, Err: err}
}

// ErrMissingArgument reports a required argument that was not given.
func ErrMissingArgument(name, example string) error {
	return &UsageError{Field: name, Reason: "required argument missing", Example: example}
}

// ErrInvalidValue reports an argument with an unusable value.
func ErrInvalidValue(name, value, reason string) error {
	return &UsageError{Field: name, Value: value, Reason: reason}
}

// ErrUnknownSubcommand reports a subcommand the command does not have.
func ErrUnknownSubcommand(command, sub string) error {
	return &UsageError{Field: command + " subcommand", Value: sub, Reason: "unknown subcommand", Example: "rbac-console help"}
}

// ErrUnknownCommand reports an unrecognized command name.
func ErrUnknownCommand(name string) error {
	return &UsageError{Field: "command", Value: name, Reason: "unknown command"}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode maps an error to an exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var validationErr *service.ValidationError
	if errors.As(err, &usageErr) || errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return ExitConfigError
	}

	if errors.Is(err, router.ErrNotAuthenticated) {
		return ExitAuthError
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ExitTimeoutError
	}

	if reqErr, ok := api.AsRequestError(err); ok {
		switch reqErr.Kind {
		case api.NoResponse:
			return ExitNetworkError
		case api.RequestSetupFailed:
			return ExitGeneralError
		}
		switch {
		case reqErr.Status == http.StatusUnauthorized || reqErr.Status == http.StatusForbidden:
			return ExitAuthError
		case reqErr.Status == http.StatusNotFound:
			return ExitNotFoundError
		case reqErr.Status == http.StatusRequestTimeout || reqErr.Status == http.StatusGatewayTimeout:
			return ExitTimeoutError
		case reqErr.Status >= 500:
			return ExitServerError
		case reqErr.Status >= 400:
			return ExitUsageError
		}
	}

	return ExitGeneralError
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError prints err for a human, or as JSON in JSON mode.
func DisplayError(err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		DisplayErrorJSON(err)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
	if reqErr, ok := api.AsRequestError(err); ok && reqErr.Err != nil {
		fmt.Fprintf(os.Stderr, "        %s\n", DimStyle.Render(reqErr.Detail()))
	}
}

// DisplayErrorJSON writes a structured error object to stdout.
func DisplayErrorJSON(err error) {
	output := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"exit_code": GetExitCode(err),
	}

	var usageErr *UsageError
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		output["error_type"] = "validation_error"
		output["messages"] = validationErr.Messages
	case errors.As(err, &usageErr):
		output["error_type"] = "usage_error"
		output["field"] = usageErr.Field
	case errors.Is(err, router.ErrNotAuthenticated):
		output["error_type"] = "not_authenticated"
	default:
		if reqErr, ok := api.AsRequestError(err); ok {
			output["error_type"] = "request_error"
			output["kind"] = reqErr.Kind.String()
			if reqErr.Status != 0 {
				output["status"] = reqErr.Status
			}
			if len(reqErr.Payload) > 0 && json.Valid(reqErr.Payload) {
				output["payload"] = json.RawMessage(reqErr.Payload)
			}
		} else {
			output["error_type"] = "generic_error"
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(output)
}

// HandleErrorAndExit displays err and exits with its code.
func HandleErrorAndExit(err error, jsonMode bool) {
	if err == nil {
		return
	}
	DisplayError(err, jsonMode)
	os.Exit(GetExitCode(err))
}
