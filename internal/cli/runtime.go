// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/rbac-console/internal/api"
	"github.com/jeranaias/rbac-console/internal/config"
	"github.com/jeranaias/rbac-console/internal/logging"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
	"github.com/jeranaias/rbac-console/internal/session"
)

// Runtime is everything a command needs, built once from config.
type Runtime struct {
	Config  *config.Config
	Store   *session.Store
	Client  *api.Client
	Service *service.Service
	Gate    *router.Gate

	logFile *os.File
}

// LoadConfig loads the config file named by --config, or the default
// locations, then applies command-line overrides.
func LoadConfig(args Args) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, &ConfigError{Err: err}
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, &ConfigError{Err: err}
		}
		if err != nil && !args.Quiet {
			fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n", WarningStyle.Render("[WARN]"), err)
		}
	}

	if args.APIURL != "" {
		cfg.API.BaseURL = args.APIURL
	}
	if args.Backend != "" {
		cfg.Session.Backend = args.Backend
	}
	if args.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return cfg, nil
}

// NewRuntime loads config, starts logging and opens the session store.
func NewRuntime(args Args) (*Runtime, error) {
	cfg, err := LoadConfig(args)
	if err != nil {
		return nil, err
	}
	return NewRuntimeFromConfig(cfg)
}

// NewRuntimeFromConfig wires the stack for an already loaded config.
func NewRuntimeFromConfig(cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{Config: cfg}

	opts := logging.Options{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}
	if cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("open log file: %w", err)}
		}
		rt.logFile = f
		opts.Output = f
	}
	logging.Init(opts)

	backend, err := session.Open(cfg)
	if err != nil {
		rt.Close()
		return nil, &ConfigError{Err: fmt.Errorf("session backend: %w", err)}
	}
	rt.Store = session.NewStore(backend)

	rt.Client = api.NewClient(cfg.API.BaseURL, rt.Store).
		WithTimeout(cfg.API.Timeout()).
		WithRateLimit(cfg.API.MaxRequestsPerSecond).
		WithRequestIDs(cfg.API.RequestIDs).
		WithUserAgent(cfg.API.UserAgent)
	rt.Service = service.New(rt.Client, rt.Store)
	rt.Gate = router.NewGate(rt.Store, nil)

	log := logging.Component("cli")
	log.Debug().
		Str("api", cfg.API.BaseURL).
		Str("backend", cfg.Session.Backend).
		Msg("runtime ready")
	return rt, nil
}

// Require activates route on the gate and fails with
// router.ErrNotAuthenticated without a session. A 401 returned by the
// command afterwards clears the session (see withRuntime).
func (r *Runtime) Require(route router.Route) error {
	return r.Gate.Require(route)
}

// Context returns a context cancelled by SIGINT or SIGTERM.
func (r *Runtime) Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Close releases the store and log file.
func (r *Runtime) Close() error {
	var err error
	if r.Store != nil {
		err = r.Store.Close()
	}
	if r.logFile != nil {
		if cerr := r.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// withRuntime builds a runtime for one command and closes it afterwards.
func withRuntime(args Args, fn func(*Runtime) error) error {
	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	err = fn(rt)
	rt.Gate.HandleError(err)
	return err
}
