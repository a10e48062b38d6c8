// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdLogout
	CmdWhoami
	CmdStatus
	CmdUsers
	CmdLogs
	CmdProfile
	CmdRoles
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	ConfigPath string
	APIURL     string
	Backend    string
	Route      string

	Subcommand string

	// Unknown is set when the command name was not recognized.
	Unknown string

	// Raw args after the command name
	Raw []string
}

const usageText = `rbac-console - role-based access control admin console

Usage:
  rbac-console [--route /admin]     Start the TUI (default)
  rbac-console login [-u USER]      Sign in (password from --password-stdin, RBAC_PASSWORD or a prompt)
  rbac-console logout               Clear the stored session
  rbac-console whoami               Show the signed-in user
  rbac-console status               Show session, token and backend status
  rbac-console users [subcommand]   Manage users (admin)
  rbac-console logs [subcommand]    Audit log review (security)
  rbac-console profile [subcommand] Self-service profile
  rbac-console roles                Show role information
  rbac-console config [subcommand]  Configuration
  rbac-console version              Show version
  rbac-console help                 Show this help

Users:
  users list                        List all users
  users create --username U --email E --password P [--phone N] [--role R]
  users role <username> <role>      Assign a role (admin, security, user)
  users mfa <username>              Enable MFA for a user

Logs:
  logs list [--type T] [--limit N]  Show audit entries
  logs summary                      Severity counters and per-type chart
  logs export [--output FILE]       Write entries as CSV (default: security_logs.csv)
  logs simulate                     Show the entries plus one simulated event

Profile:
  profile show                      Fetch your profile
  profile update [--email E] [--phone N]
  profile password                  Change your password (prompts)
  profile mfa [--verify CODE]       Enable MFA and optionally verify a code

Config:
  config show                       Print the effective configuration
  config get <key>                  Print one value (e.g. api.base_url)
  config set <key> <value>          Update and save a value
  config path                       Print config file locations

Global flags:
  --json                            Machine-readable output
  --config FILE                     Load a specific config file
  --api-url, --api URL              Override api.base_url
  --backend file|sqlite|memory      Override session.backend
  -q, --quiet                       Less output
  -v, --verbose                     Debug logging
`

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("rbac-console %s (%s, built %s, %s)\n", Version, GitCommit, BuildDate, runtime.Version())
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses args without the program name.
func ParseArgs(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining
	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		parsedArgs.Subcommand = strings.ToLower(remaining[0])
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs
	case "login", "signin":
		return CmdLogin, parsedArgs
	case "logout", "signout":
		return CmdLogout, parsedArgs
	case "whoami":
		return CmdWhoami, parsedArgs
	case "status", "s":
		return CmdStatus, parsedArgs
	case "users", "user":
		return CmdUsers, parsedArgs
	case "logs", "log", "audit":
		return CmdLogs, parsedArgs
	case "profile", "me":
		return CmdProfile, parsedArgs
	case "roles":
		return CmdRoles, parsedArgs
	case "config":
		return CmdConfig, parsedArgs
	case "version", "--version":
		return CmdVersion, parsedArgs
	case "help", "-h", "--help":
		return CmdHelp, parsedArgs
	default:
		parsedArgs.Unknown = cmd
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	value := func(i *int) string {
		if *i+1 < len(args) {
			*i++
			return args[*i]
		}
		return ""
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "-v", "--verbose":
			parsedArgs.Verbose = true
		case "--json":
			parsedArgs.JSON = true
		case "--config":
			parsedArgs.ConfigPath = value(&i)
		case "--api-url", "--api":
			parsedArgs.APIURL = value(&i)
		case "--backend":
			parsedArgs.Backend = value(&i)
		case "--route":
			parsedArgs.Route = value(&i)
		default:
			switch {
			case strings.HasPrefix(arg, "--config="):
				parsedArgs.ConfigPath = strings.TrimPrefix(arg, "--config=")
			case strings.HasPrefix(arg, "--api-url="):
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api-url=")
			case strings.HasPrefix(arg, "--api="):
				parsedArgs.APIURL = strings.TrimPrefix(arg, "--api=")
			case strings.HasPrefix(arg, "--backend="):
				parsedArgs.Backend = strings.TrimPrefix(arg, "--backend=")
			case strings.HasPrefix(arg, "--route="):
				parsedArgs.Route = strings.TrimPrefix(arg, "--route=")
			default:
				remaining = append(remaining, arg)
			}
		}
	}
	return remaining, parsedArgs
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// VersionData is the --json payload of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print()
	}
	PrintVersion()
	return nil
}

// HandleHelp handles the "help" command. An unknown command is reported
// before the usage text.
func HandleHelp(args Args) error {
	help := renderMarkdown("# rbac-console\n\n```\n" + usageText + "```\n")
	if args.Unknown != "" {
		fmt.Fprintf(os.Stderr, "%s unknown command %q\n", ErrorStyle.Render("[ERROR]"), args.Unknown)
		fmt.Fprint(os.Stderr, help)
		return ErrUnknownCommand(args.Unknown)
	}
	fmt.Print(help)
	return nil
}
