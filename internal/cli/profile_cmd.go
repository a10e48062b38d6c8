// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
)

// HandleProfile handles "profile show|update|password|mfa".
func HandleProfile(args Args) error {
	p := NewArgParser(args.Raw)
	sub := p.Subcommand()
	if sub == "" {
		sub = "show"
	}

	return withRuntime(args, func(rt *Runtime) error {
		if err := rt.Require(router.RouteUser); err != nil {
			return err
		}
		switch sub {
		case "show", "get":
			return profileShow(rt, args)
		case "update", "edit":
			return profileUpdate(rt, args, p)
		case "password", "passwd":
			return profilePassword(rt, args)
		case "mfa":
			return profileMFA(rt, args, p)
		default:
			return ErrUnknownSubcommand("profile", sub)
		}
	})
}

func profileShow(rt *Runtime, args Args) error {
	ctx, cancel := rt.Context()
	defer cancel()

	user, err := rt.Service.GetProfile(ctx)
	if err != nil {
		return NewCommandError("profile", "fetch", err)
	}
	return OutputJSON(args.JSON, "profile show", user, func() {
		fmt.Print(formatUser(user))
	})
}

// profileUpdate sends the cached email and phone with any flag overrides,
// so an omitted flag keeps its current value.
func profileUpdate(rt *Runtime, args Args, p *ArgParser) error {
	cur, _ := rt.Store.Current()
	update := service.ProfileUpdate{Email: cur.User.Email, Phone: cur.User.Phone}
	if p.HasFlag("email") {
		update.Email = p.Flag("email")
	}
	if p.HasFlag("phone") {
		update.Phone = p.Flag("phone")
	}

	ctx, cancel := rt.Context()
	defer cancel()

	if _, err := rt.Service.UpdateProfile(ctx, update); err != nil {
		return NewCommandError("profile", "update", err)
	}
	return OutputJSON(args.JSON, "profile update", update, func() {
		fmt.Println(SuccessStyle.Render("[OK]") + " Profile updated successfully!")
	})
}

func profilePassword(rt *Runtime, args Args) error {
	if err := RequiresTTY("change password"); err != nil {
		return err
	}
	current, err := PromptPassword("Current password: ")
	if err != nil {
		return err
	}
	next, err := PromptPassword("New password: ")
	if err != nil {
		return err
	}
	confirm, err := PromptPassword("Confirm new password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		return ErrInvalidValue("password", "", "New passwords do not match!")
	}

	ctx, cancel := rt.Context()
	defer cancel()

	if _, err := rt.Service.ChangePassword(ctx, service.PasswordChange{Current: current, New: next, Confirm: confirm}); err != nil {
		return NewCommandError("profile", "change password", err)
	}
	return OutputJSON(args.JSON, "profile password", map[string]bool{"changed": true}, func() {
		fmt.Println(SuccessStyle.Render("[OK]") + " Password updated successfully!")
	})
}

// MFAData is the --json payload of "profile mfa".
type MFAData struct {
	Enabled  bool   `json:"enabled"`
	Message  string `json:"message,omitempty"`
	Secret   string `json:"secret,omitempty"`
	URL      string `json:"url,omitempty"`
	Verified *bool  `json:"verified,omitempty"`
}

func profileMFA(rt *Runtime, args Args, p *ArgParser) error {
	ctx, cancel := rt.Context()
	defer cancel()

	enrollment, err := rt.Service.EnableMFA(ctx, "")
	if err != nil {
		return NewCommandError("profile", "enable mfa", err)
	}

	if cur, ok := rt.Store.Current(); ok {
		cur.User.MFAEnabled = true
		if err := rt.Store.UpdateUser(cur.User); err != nil {
			return NewCommandError("profile", "enable mfa", err)
		}
	}

	data := MFAData{Enabled: true, Message: enrollment.Message}
	if enrollment.HasKey() {
		data.Secret = enrollment.Key.Secret()
		data.URL = enrollment.Key.URL()
	}
	if code := p.Flag("verify"); code != "" {
		if !enrollment.HasKey() {
			return NewCommandError("profile", "verify mfa", errors.New("backend returned no authenticator secret"))
		}
		ok := enrollment.Verify(code)
		data.Verified = &ok
	}

	return OutputJSON(args.JSON, "profile mfa", data, func() {
		fmt.Println(SuccessStyle.Render("[OK]") + " MFA Enabled")
		if data.Secret != "" {
			fmt.Print("\n")
			printLine("Secret", data.Secret)
			printLine("URL", data.URL)
		}
		if data.Verified != nil {
			if *data.Verified {
				fmt.Println(SuccessStyle.Render("[OK]") + " Code verified")
			} else {
				fmt.Println(WarningStyle.Render("[!]") + " Code did not match")
			}
		}
	})
}

func printLine(label, value string) {
	fmt.Println(LabelStyle.Render(label) + ValueStyle.Render(value))
}
