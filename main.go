// rbac-console - terminal admin console for a role-based access control backend.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/rbac-console/internal/cli"
	"github.com/jeranaias/rbac-console/internal/config"
	"github.com/jeranaias/rbac-console/internal/logging"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/session"
	"github.com/jeranaias/rbac-console/internal/ui/styles"
	"github.com/jeranaias/rbac-console/internal/ui/views"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	var err error
	switch cmd {
	case cli.CmdTUI:
		err = runTUI(args)
	case cli.CmdLogin:
		err = cli.HandleLogin(args)
	case cli.CmdLogout:
		err = cli.HandleLogout(args)
	case cli.CmdWhoami:
		err = cli.HandleWhoami(args)
	case cli.CmdStatus:
		err = cli.HandleStatus(args)
	case cli.CmdUsers:
		err = cli.HandleUsers(args)
	case cli.CmdLogs:
		err = cli.HandleLogs(args)
	case cli.CmdProfile:
		err = cli.HandleProfile(args)
	case cli.CmdRoles:
		err = cli.HandleRoles(args)
	case cli.CmdConfig:
		err = cli.HandleConfig(args)
	case cli.CmdVersion:
		err = cli.HandleVersion(args)
	case cli.CmdHelp:
		if err = cli.HandleHelp(args); err != nil {
			os.Exit(cli.GetExitCode(err))
		}
	}

	if err != nil {
		cli.HandleErrorAndExit(err, args.JSON)
	}
}

func runTUI(args cli.Args) error {
	start := router.RouteRoot
	if args.Route != "" {
		r, ok := router.ParseRoute(args.Route)
		if !ok {
			return cli.ErrInvalidValue("route", args.Route, "unknown route")
		}
		start = r
	}

	rt, err := cli.NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := rt.Context()
	defer cancel()

	watcher := startWatcher(ctx, rt.Config)
	if watcher != nil {
		defer watcher.Close()
	}

	env := views.NewEnv(ctx, rt.Service, rt.Gate, styles.NewThemeFor(rt.Config.UI.Theme))
	env.RedirectDelay = rt.Config.UI.RedirectDelay()
	if wd, err := os.Getwd(); err == nil {
		env.ExportDir = wd
	}

	app := views.NewApp(env, start, watcher)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// startWatcher follows the session file so a login or logout from another
// terminal reaches the running console. Memory sessions have nothing to
// watch.
func startWatcher(ctx context.Context, cfg *config.Config) *session.Watcher {
	if cfg.Session.Backend == config.BackendMemory {
		return nil
	}
	path, err := cfg.SessionPath()
	if err != nil {
		return nil
	}
	w, err := session.NewWatcher(path)
	if err != nil {
		log := logging.Component("main")
		log.Warn().Err(err).Msg("session watcher unavailable")
		return nil
	}
	go w.Run(ctx)
	return w
}
