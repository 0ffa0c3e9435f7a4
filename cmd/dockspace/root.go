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
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"dockspace/internal/config"
	"dockspace/internal/crash"
	applog "dockspace/internal/log"
	"dockspace/internal/storage"
	"dockspace/internal/telemetry"
	"dockspace/internal/version"
	"dockspace/internal/windowhost"
	"dockspace/internal/workspace"
)

// app is the state shared by all subcommands.
type app struct {
	storage string
	dataDir string
	key     string

	cfg     config.AppConfig
	cfgPath string
	crash   *crash.Handler
	log     *slog.Logger
}

func newRootCmd(h *crash.Handler) *cobra.Command {
	a := &app{crash: h}

	cmd := &cobra.Command{
		Use:          "dockspace",
		Short:        "Dock-tree workspace layout engine",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Print the saved layout with panel rectangles for a 1600x900 workspace
  dockspace layout show --width 1600 --height 900

  # Disable the feed module and close its widgets
  dockspace modules apply feed=false

  # Launch the desktop shell (build with -tags fyne)
  dockspace ui
`),
	}
	cmd.PersistentFlags().StringVar(&a.storage, "storage", "", "layout backend: file, sqlite or postgres (default from config)")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding layout data (default from config)")
	cmd.PersistentFlags().StringVar(&a.key, "key", "", "storage key of the layout (default from config)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return a.init()
	}

	cmd.AddCommand(
		newVersionCmd(),
		newLayoutCmd(a),
		newModulesCmd(a),
		newUICmd(a),
	)
	return cmd
}

// init loads config and applies flag overrides. Flags win over env, env
// wins over the file.
func (a *app) init() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	if a.storage != "" {
		cfg.Workspace.Storage = strings.ToLower(a.storage)
	}
	if a.dataDir != "" {
		cfg.Workspace.DataDir = a.dataDir
	}
	if a.key != "" {
		cfg.Workspace.StorageKey = a.key
	}
	if cfg.Workspace.StorageKey == "" {
		cfg.Workspace.StorageKey = config.DefaultStorageKey
	}
	a.cfg, a.cfgPath = cfg, path

	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	a.log = applog.WithComponent("cli")
	if a.crash != nil {
		a.crash.SetReportDir(filepath.Join(cfg.Workspace.DataDir, "crash"))
		a.crash.SetTelemetry(telemetry.New(telemetry.FromAppConfig(cfg)))
	}
	a.log.Debug("config loaded",
		slog.String("path", path),
		slog.String("storage", cfg.Workspace.Storage),
		slog.String("dataDir", cfg.Workspace.DataDir))
	return nil
}

func (a *app) openBlob(ctx context.Context) (storage.Store, error) {
	return storage.Open(ctx, a.cfg.Workspace)
}

// loadWorkspace restores the saved layout for an offline edit. The store
// gets an in-memory window host so widgets living in their own window stay
// external when the layout is written back.
func (a *app) loadWorkspace(ctx context.Context, blob storage.Store) (*workspace.Store, error) {
	s := workspace.New(workspace.Options{Host: windowhost.NewRecorder()})
	if err := s.Load(ctx, blob, a.cfg.Workspace.StorageKey); err != nil {
		return nil, err
	}
	return s, nil
}

// withWorkspace runs fn against the saved layout and writes it back when
// save is set.
func (a *app) withWorkspace(ctx context.Context, save bool, fn func(*workspace.Store) error) error {
	blob, err := a.openBlob(ctx)
	if err != nil {
		return err
	}
	defer blob.Close()
	s, err := a.loadWorkspace(ctx, blob)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	if !save {
		return nil
	}
	return s.Save(ctx, blob, a.cfg.Workspace.StorageKey)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}
