// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and saves rbac-console settings.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment overrides, and validation.
//
// # Configuration Precedence
//
// Configuration is loaded from (highest first):
//   - RBAC_* environment variables (a .env file in the working directory
//     is loaded first; real environment variables win over it)
//   - ~/.rbac-console/config.toml
//   - ~/.rbac-console/config.json
//   - Built-in defaults
//
// RBAC_CONSOLE_HOME relocates the whole ~/.rbac-console directory.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL, store)
package config
