// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/rbac-console/internal/config"
	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
)

// PasswordEnv supplies the login password non-interactively.
const PasswordEnv = "RBAC_PASSWORD"

// LoginData is the --json payload of a successful login.
type LoginData struct {
	User    model.User `json:"user"`
	Console string     `json:"console"`
}

// HandleLogin handles "login [-u USER] [--password-stdin]". The password
// comes from stdin, RBAC_PASSWORD or a prompt, in that order.
func HandleLogin(args Args) error {
	p := NewArgParser(args.Raw)

	username := p.Flag("u", "username")
	if username == "" {
		username = p.Positional(0)
	}
	if username == "" {
		// "login --password-stdin alice" binds alice to the flag.
		username = p.Flag("password-stdin")
	}
	password := os.Getenv(PasswordEnv)
	if p.HasFlag("password-stdin") {
		var err error
		if password, err = readPasswordLine(os.Stdin); err != nil {
			return err
		}
	}

	if username == "" || password == "" {
		if err := RequiresTTY("log in"); err != nil {
			return err
		}
	}
	var err error
	if username == "" {
		if username, err = PromptLine("Username: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = PromptPassword("Password: "); err != nil {
			return err
		}
	}

	return withRuntime(args, func(rt *Runtime) error {
		ctx, cancel := rt.Context()
		defer cancel()

		result, err := rt.Service.Login(ctx, service.Credentials{Username: username, Password: password})
		if err != nil {
			return NewCommandError("login", "authenticate", err)
		}

		switch res := result.(type) {
		case service.Authenticated:
			user := res.Session.User
			console := router.RouteForRole(string(user.Role))
			return OutputJSON(args.JSON, "login", LoginData{User: user, Console: console.String()}, func() {
				fmt.Println(SuccessStyle.Render("[OK]") + " Login successful!")
				fmt.Printf("Signed in as %s (%s). Console: %s\n", user.Username, user.Role.Label(), console.Title())
			})
		case service.Rejected:
			return NewCommandError("login", "authenticate", errors.New(res.Reason))
		default:
			return NewCommandError("login", "authenticate", fmt.Errorf("unexpected result %T", result))
		}
	})
}

// readPasswordLine reads the first line of r without its line ending.
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", &UsageError{Field: "password", Reason: "--password-stdin given but stdin was empty"}
	}
	return line, nil
}

// HandleLogout clears the stored session. It succeeds without one.
func HandleLogout(args Args) error {
	return withRuntime(args, func(rt *Runtime) error {
		if err := rt.Service.Logout(); err != nil {
			return NewCommandError("logout", "clear session", err)
		}
		return OutputJSON(args.JSON, "logout", map[string]bool{"logged_out": true}, func() {
			if !args.Quiet {
				fmt.Println(SuccessStyle.Render("[OK]") + " Logged out")
			}
		})
	})
}

// HandleWhoami prints the cached user.
func HandleWhoami(args Args) error {
	return withRuntime(args, func(rt *Runtime) error {
		if err := rt.Require(router.RouteUser); err != nil {
			return err
		}
		cur, _ := rt.Store.Current()
		return OutputJSON(args.JSON, "whoami", cur.User, func() {
			fmt.Print(formatUser(cur.User))
		})
	})
}

// =============================================================================
// STATUS
// =============================================================================

// StatusData is the --json payload of the status command.
type StatusData struct {
	APIBaseURL     string      `json:"api_base_url"`
	SessionBackend string      `json:"session_backend"`
	SessionPath    string      `json:"session_path,omitempty"`
	Encrypted      bool        `json:"encrypted"`
	Authenticated  bool        `json:"authenticated"`
	User           *model.User `json:"user,omitempty"`
	Console        string      `json:"console,omitempty"`
	Token          *TokenData  `json:"token,omitempty"`
}

// TokenData describes the stored bearer token.
type TokenData struct {
	Subject   string     `json:"subject,omitempty"`
	Issuer    string     `json:"issuer,omitempty"`
	IssuedAt  *time.Time `json:"issued_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Expired   bool       `json:"expired"`
	Opaque    bool       `json:"opaque"`
}

// HandleStatus reports configuration and session state.
func HandleStatus(args Args) error {
	return withRuntime(args, func(rt *Runtime) error {
		data := collectStatus(rt, time.Now())
		return OutputJSON(args.JSON, "status", data, func() {
			fmt.Print(formatStatus(data))
		})
	})
}

func collectStatus(rt *Runtime, now time.Time) StatusData {
	data := StatusData{
		APIBaseURL:     rt.Client.BaseURL(),
		SessionBackend: rt.Config.Session.Backend,
		Encrypted:      rt.Config.Session.Backend == config.BackendFile && rt.Config.Session.Encrypt,
	}
	if rt.Config.Session.Backend != config.BackendMemory {
		data.SessionPath, _ = rt.Config.SessionPath()
	}

	cur, ok := rt.Store.Current()
	if !ok {
		return data
	}
	data.Authenticated = true
	user := cur.User
	data.User = &user
	data.Console = router.RouteForRole(string(user.Role)).String()
	data.Token = inspect(cur.Token, now)
	return data
}

func inspect(token string, now time.Time) *TokenData {
	info, err := service.InspectToken(token)
	if err != nil {
		return &TokenData{Opaque: true}
	}
	td := &TokenData{Subject: info.Subject, Issuer: info.Issuer, Expired: info.Expired(now)}
	if !info.IssuedAt.IsZero() {
		td.IssuedAt = &info.IssuedAt
	}
	if !info.ExpiresAt.IsZero() {
		td.ExpiresAt = &info.ExpiresAt
	}
	return td
}

func formatStatus(d StatusData) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("rbac-console status"))
	b.WriteString("\n")
	printKV(&b, "API", d.APIBaseURL)
	backend := d.SessionBackend
	if d.Encrypted {
		backend += " (encrypted)"
	}
	printKV(&b, "Session", backend)
	printKV(&b, "Path", d.SessionPath)

	if !d.Authenticated {
		printKV(&b, "Signed in", "no")
		return b.String()
	}
	printKV(&b, "Signed in", d.User.Username+" ("+d.User.Role.Label()+")")
	printKV(&b, "Console", d.Console)
	switch {
	case d.Token == nil || d.Token.Opaque:
		printKV(&b, "Token", "opaque")
	case d.Token.ExpiresAt != nil && d.Token.Expired:
		printKV(&b, "Token", WarningStyle.Render("expired "+d.Token.ExpiresAt.Local().Format(time.RFC1123)))
	case d.Token.ExpiresAt != nil:
		printKV(&b, "Token", "expires "+d.Token.ExpiresAt.Local().Format(time.RFC1123))
	default:
		printKV(&b, "Token", "no expiry")
	}
	return b.String()
}

func formatUser(u model.User) string {
	var b strings.Builder
	printKV(&b, "ID", fmt.Sprint(u.ID))
	printKV(&b, "Username", u.Username)
	printKV(&b, "Email", u.Email)
	printKV(&b, "Phone", u.Phone)
	printKV(&b, "Role", u.Role.Label())
	mfa := "disabled"
	if u.MFAEnabled {
		mfa = "enabled"
	}
	printKV(&b, "MFA", mfa)
	return b.String()
}
