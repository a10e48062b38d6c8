// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/rbac-console/internal/config"
)

// HandleConfig handles "config show|get|set|path|keys".
func HandleConfig(args Args) error {
	p := NewArgParser(args.Raw)
	sub := p.Subcommand()
	if sub == "" {
		sub = "show"
	}

	switch sub {
	case "show":
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		return OutputJSON(args.JSON, "config show", cfg, func() {
			fmt.Print(cfg.String())
		})

	case "get":
		key := p.Positional(1)
		if key == "" {
			return ErrMissingArgument("key", "rbac-console config get api.base_url")
		}
		cfg, err := LoadConfig(args)
		if err != nil {
			return err
		}
		v, err := cfg.Get(key)
		if err != nil {
			return ErrInvalidValue("key", key, err.Error())
		}
		return OutputJSON(args.JSON, "config get", map[string]interface{}{key: v}, func() {
			fmt.Println(v)
		})

	case "set":
		return configSet(args, p)

	case "path":
		tomlPath, _ := config.ConfigPathTOML()
		jsonPath, _ := config.ConfigPathJSON()
		keyPath, _ := config.KeyPath()
		data := map[string]string{"toml": tomlPath, "json": jsonPath, "session_key": keyPath}
		return OutputJSON(args.JSON, "config path", data, func() {
			printLine("TOML", tomlPath)
			printLine("JSON", jsonPath)
			printLine("Session key", keyPath)
		})

	case "keys":
		keys := config.Keys()
		return OutputJSON(args.JSON, "config keys", keys, func() {
			fmt.Println(strings.Join(keys, "\n"))
		})

	default:
		return ErrUnknownSubcommand("config", sub)
	}
}

// configSet edits the TOML file itself, so environment and flag overrides
// are never written back.
func configSet(args Args, p *ArgParser) error {
	key, value := p.Positional(1), p.Positional(2)
	if key == "" || p.PositionalCount() < 3 {
		return ErrMissingArgument("key and value", "rbac-console config set api.base_url https://rbac.example.com/api")
	}

	path := args.ConfigPath
	if path == "" {
		var err error
		if path, err = config.ConfigPathTOML(); err != nil {
			return &ConfigError{Err: err}
		}
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return &ConfigError{Err: err}
		}
	}
	if err := cfg.Set(key, value); err != nil {
		return &ConfigError{Err: err}
	}
	if err := config.EnsureConfigDir(); err != nil {
		return &ConfigError{Err: err}
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return &ConfigError{Err: err}
	}

	return OutputJSON(args.JSON, "config set", map[string]string{"key": key, "value": value, "path": path}, func() {
		fmt.Printf("%s %s = %s\n", SuccessStyle.Render("[OK]"), key, value)
	})
}
