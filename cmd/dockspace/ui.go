/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"github.com/spf13/cobra"

	"dockspace/internal/capability"
	"dockspace/internal/telemetry"
	"dockspace/internal/ui"
)

func newUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Launch the desktop shell (build with -tags fyne)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blob, err := a.openBlob(cmd.Context())
			if err != nil {
				return err
			}
			defer blob.Close()

			tc := telemetry.New(telemetry.FromAppConfig(a.cfg))
			defer tc.Close()
			if a.crash != nil {
				a.crash.SetTelemetry(tc)
			}

			opts := ui.Options{
				Config:     a.cfg,
				ConfigPath: a.cfgPath,
				Blob:       blob,
				Telemetry:  tc,
				Crash:      a.crash,
			}
			if c := capability.FromConfig(a.cfg.Capability); c.Token != "" {
				opts.Capability = c
			}
			return ui.Run(opts)
		},
	}
}
