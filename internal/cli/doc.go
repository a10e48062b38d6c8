// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-interactive rbac-console commands.
//
// Parse reads os.Args into a Command and Args. Each command lives in a
// *_cmd.go file with a HandleX(args Args) error entry point; main maps the
// returned error to an exit code with GetExitCode.
package cli
