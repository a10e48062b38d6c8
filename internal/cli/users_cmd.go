// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
	"github.com/jeranaias/rbac-console/internal/service"
	"github.com/jeranaias/rbac-console/internal/util"
)

// HandleUsers handles "users list|create|role|mfa".
func HandleUsers(args Args) error {
	p := NewArgParser(args.Raw)
	sub := p.Subcommand()
	if sub == "" {
		sub = "list"
	}

	return withRuntime(args, func(rt *Runtime) error {
		if err := rt.Require(router.RouteAdmin); err != nil {
			return err
		}
		switch sub {
		case "list", "ls":
			return usersList(rt, args)
		case "create", "add":
			return usersCreate(rt, args, p)
		case "role", "assign-role":
			return usersRole(rt, args, p)
		case "mfa":
			return usersMFA(rt, args, p)
		default:
			return ErrUnknownSubcommand("users", sub)
		}
	})
}

func usersList(rt *Runtime, args Args) error {
	ctx, cancel := rt.Context()
	defer cancel()

	users, err := rt.Service.ListUsers(ctx)
	if err != nil {
		return NewCommandError("users", "list", err)
	}
	return OutputJSON(args.JSON, "users list", users, func() {
		fmt.Print(formatUserTable(users))
	})
}

func formatUserTable(users []model.User) string {
	if len(users) == 0 {
		return DimStyle.Render("No users") + "\n"
	}
	var b strings.Builder
	header := fmt.Sprintf("%s %s %s %s %s",
		util.PadRight("ID", 5), util.PadRight("USERNAME", 16), util.PadRight("EMAIL", 28),
		util.PadRight("ROLE", 14), "MFA")
	b.WriteString(SectionStyle.Render(header) + "\n")
	for _, u := range users {
		mfa := DimStyle.Render("off")
		if u.MFAEnabled {
			mfa = SuccessStyle.Render("on")
		}
		fmt.Fprintf(&b, "%s %s %s %s %s\n",
			util.PadRight(fmt.Sprint(u.ID), 5),
			util.PadRight(util.TruncateWidth(u.Username, 16), 16),
			util.PadRight(util.TruncateWidth(u.Email, 28), 28),
			util.PadRight(u.Role.Label(), 14),
			mfa)
	}
	fmt.Fprintf(&b, "\n%d users\n", len(users))
	return b.String()
}

func usersCreate(rt *Runtime, args Args, p *ArgParser) error {
	input := service.NewUser{
		Username:   p.Flag("username", "u"),
		Email:      p.Flag("email", "e"),
		Password:   p.Flag("password"),
		Phone:      p.Flag("phone"),
		Role:       model.Role(strings.ToLower(p.FlagOrDefault("role", string(model.RoleUser)))),
		MFAEnabled: p.BoolFlag("mfa"),
	}
	if input.Password == "" {
		input.Password = os.Getenv(PasswordEnv)
	}
	if input.Password == "" && IsTTY() {
		pw, err := PromptPassword("Password for new user: ")
		if err != nil {
			return err
		}
		input.Password = pw
	}

	ctx, cancel := rt.Context()
	defer cancel()

	res, err := rt.Service.CreateUser(ctx, input)
	if err != nil {
		return NewCommandError("users", "create", err)
	}
	if !res.Succeeded() {
		return NewCommandError("users", "create", errors.New(util.FirstNonEmpty(res.Message, "Failed to create user")))
	}
	return OutputJSON(args.JSON, "users create", res, func() {
		fmt.Println(SuccessStyle.Render("[OK]") + " " + res.Message)
	})
}

func usersRole(rt *Runtime, args Args, p *ArgParser) error {
	username := p.Positional(1)
	if username == "" {
		return ErrMissingArgument("username", "rbac-console users role bob security")
	}
	role, ok := model.ParseRole(strings.ToLower(strings.TrimSpace(p.Positional(2))))
	if !ok {
		return ErrInvalidValue("role", p.Positional(2), "must be one of: "+strings.Join(model.RoleNames(), ", "))
	}

	ctx, cancel := rt.Context()
	defer cancel()

	payload, err := rt.Service.AssignRole(ctx, username, role)
	if err != nil {
		return NewCommandError("users", "assign role", err)
	}
	if !service.Truthy(payload) {
		return NewCommandError("users", "assign role", errors.New("backend did not confirm the change"))
	}
	return OutputJSON(args.JSON, "users role", payload, func() {
		fmt.Printf("%s %s is now %s\n", SuccessStyle.Render("[OK]"), username, role.Label())
	})
}

func usersMFA(rt *Runtime, args Args, p *ArgParser) error {
	username := p.Positional(1)
	if username == "" {
		return ErrMissingArgument("username", "rbac-console users mfa bob")
	}

	ctx, cancel := rt.Context()
	defer cancel()

	enrollment, err := rt.Service.EnableMFA(ctx, username)
	if err != nil {
		return NewCommandError("users", "enable mfa", err)
	}
	return OutputJSON(args.JSON, "users mfa", enrollment.Raw, func() {
		fmt.Printf("%s MFA settings updated for %s\n", SuccessStyle.Render("[OK]"), username)
		if enrollment.Message != "" {
			fmt.Println(DimStyle.Render(enrollment.Message))
		}
	})
}
