/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dockspace/internal/capability"
	"dockspace/internal/config"
	"dockspace/internal/module"
	"dockspace/internal/workspace"
)

func newModulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Enable or disable whole module classes",
	}
	cmd.AddCommand(newModulesApplyCmd(a), newModulesSyncCmd(a))
	return cmd
}

// parseSwitches reads "chat=false,feed=true" (commas or separate args).
func parseSwitches(args []string) (map[module.ID]bool, error) {
	out := map[module.ID]bool{}
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			name, val, ok := strings.Cut(part, "=")
			if !ok {
				return nil, fmt.Errorf("expected module=bool, got %q", part)
			}
			id := module.ID(strings.TrimSpace(name))
			if !module.Known(id) {
				return nil, fmt.Errorf("unknown module %q", name)
			}
			on, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return nil, fmt.Errorf("module %s: %w", name, err)
			}
			out[id] = on
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no module switches given")
	}
	return out, nil
}

func reportApplied(cmd *cobra.Command, before, after int, enabled map[module.ID]bool) {
	ids := make([]string, 0, len(enabled))
	for id, on := range enabled {
		ids = append(ids, fmt.Sprintf("%s=%t", id, on))
	}
	sort.Strings(ids)
	fmt.Fprintf(cmd.OutOrStdout(), "applied %s: %d widget(s) closed, %d left\n", strings.Join(ids, ","), before-after, after)
}

func newModulesApplyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <module=bool>[,...]",
		Short: "Close every widget of the modules switched off",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseSwitches(args)
			if err != nil {
				return err
			}
			return a.withWorkspace(cmd.Context(), true, func(s *workspace.Store) error {
				before := len(s.State().Widgets)
				s.ApplyEnabledModules(enabled)
				reportApplied(cmd, before, len(s.State().Widgets), enabled)
				return nil
			})
		},
	}
}

func newModulesSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the module switches from the account service and apply them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := capability.FromConfig(a.cfg.Capability)
			if client.Token == "" {
				return fmt.Errorf("no capability token: set %s or store one in the keyring", config.EnvCapabilityToken)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Capability.Timeout())
			defer cancel()
			return a.withWorkspace(ctx, true, func(s *workspace.Store) error {
				before := len(s.State().Widgets)
				m, err := client.Sync(ctx, s)
				if err != nil {
					return err
				}
				reportApplied(cmd, before, len(s.State().Widgets), m.Enabled)
				return nil
			})
		},
	}
}
