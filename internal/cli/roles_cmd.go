// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jeranaias/rbac-console/internal/model"
	"github.com/jeranaias/rbac-console/internal/router"
)

// RoleInfo describes one known role.
type RoleInfo struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Console string `json:"console"`
}

// HandleRoles prints the known roles and their consoles. With a session it
// also includes the backend's role information.
func HandleRoles(args Args) error {
	known := make([]RoleInfo, 0, len(model.RoleNames()))
	for _, name := range model.RoleNames() {
		r := model.Role(name)
		known = append(known, RoleInfo{Name: name, Label: r.Label(), Console: router.RouteForRole(name).String()})
	}

	return withRuntime(args, func(rt *Runtime) error {
		var remote json.RawMessage
		if rt.Store.IsAuthenticated() {
			ctx, cancel := rt.Context()
			defer cancel()
			payload, err := rt.Service.GetRoles(ctx)
			if err != nil {
				return NewCommandError("roles", "fetch", err)
			}
			remote = payload
		}

		data := map[string]interface{}{"roles": known}
		if len(remote) > 0 {
			data["backend"] = remote
		}
		return OutputJSON(args.JSON, "roles", data, func() {
			fmt.Println(TitleStyle.Render("Roles"))
			for _, r := range known {
				printLine(r.Label, r.Console)
			}
			if len(remote) > 0 {
				fmt.Println(SectionStyle.Render("Backend"))
				fmt.Println(string(remote))
			}
		})
	})
}
