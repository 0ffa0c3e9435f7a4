/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user
// scope. Environment variables override it at runtime and are never written
// back. The capability token lives in the OS keyring, not in this file.
type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	General       GeneralConfig     `yaml:"general"`
	Workspace     WorkspaceConfig   `yaml:"workspace"`
	Interaction   InteractionConfig `yaml:"interaction"`
	Capability    CapabilityConfig  `yaml:"capability"`
	Logging       LoggingConfig     `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// WorkspaceConfig selects where the layout blob is stored.
type WorkspaceConfig struct {
	Storage         string `yaml:"storage"` // "file" | "sqlite" | "postgres"
	StorageKey      string `yaml:"storage_key"`
	DataDir         string `yaml:"data_dir"`
	PostgresDSN     string `yaml:"postgres_dsn"`
	AutosaveDelayMs int    `yaml:"autosave_delay_ms"`
}

// InteractionConfig holds the pointer thresholds of the snap controller, in
// pixels.
type InteractionConfig struct {
	DragThreshold      float64 `yaml:"drag_threshold"`
	PanelSnapThreshold float64 `yaml:"panel_snap_threshold"`
	DockSnapThreshold  float64 `yaml:"dock_snap_threshold"`
	UndockMargin       float64 `yaml:"undock_margin"`
	DisableSmartGuides bool    `yaml:"disable_smart_guides"`
}

type CapabilityConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// DefaultStorageKey is the key the layout blob is stored under.
const DefaultStorageKey = "master_master_layout_v1"

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system"},
		Workspace:     WorkspaceConfig{Storage: "file", StorageKey: DefaultStorageKey, AutosaveDelayMs: 500},
		Interaction: InteractionConfig{
			DragThreshold:      8,
			PanelSnapThreshold: 48,
			DockSnapThreshold:  32,
			UndockMargin:       24,
		},
		Capability: CapabilityConfig{BaseURL: "http://localhost:8080", TimeoutMs: 15000},
		Logging:    LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath      = "DSP_CONFIG"
	EnvTelemetryOptIn  = "DSP_TELEMETRY_OPT_IN"
	EnvStorage         = "DSP_STORAGE"
	EnvStorageKey      = "DSP_STORAGE_KEY"
	EnvDataDir         = "DSP_DATA_DIR"
	EnvPostgresDSN     = "DSP_PG_DSN"
	EnvDragThreshold   = "DSP_DRAG_THRESHOLD"
	EnvCapabilityURL   = "DSP_CAPABILITY_URL"
	EnvCapabilityToken = "DSP_CAPABILITY_TOKEN"
	EnvLogLevel        = "DSP_LOG_LEVEL"
	EnvLogFormat       = "DSP_LOG_FORMAT"
	EnvLogSource       = "DSP_LOG_SOURCE"
	EnvLogFile         = "DSP_LOG_FILE"
)

// envKeys maps dotted config keys to the env var overriding them.
var envKeys = map[string]string{
	"general.telemetry_opt_in":   EnvTelemetryOptIn,
	"workspace.storage":          EnvStorage,
	"workspace.storage_key":      EnvStorageKey,
	"workspace.data_dir":         EnvDataDir,
	"workspace.postgres_dsn":     EnvPostgresDSN,
	"interaction.drag_threshold": EnvDragThreshold,
	"capability.base_url":        EnvCapabilityURL,
	"logging.level":              EnvLogLevel,
	"logging.format":             EnvLogFormat,
	"logging.source":             EnvLogSource,
	"logging.file":               EnvLogFile,
}

// ConfigDir returns the per-user directory holding config.yaml.
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Dockspace")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Dockspace")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "dockspace")
		} else if home := os.Getenv("HOME"); home != "" {
			base = filepath.Join(home, ".config", "dockspace")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the config file path. DSP_CONFIG wins over the per-user
// default.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config (if present), applies defaults, merges
// environment overrides and fetches the capability token.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), "", err
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		return cfg, "", err
	}
	return cfg, Token(), nil
}

// LoadFrom reads the config file at path. A missing file yields defaults; a
// malformed one is an error.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	if cfg.Workspace.DataDir == "" {
		cfg.Workspace.DataDir = filepath.Join(filepath.Dir(path), "data")
	}
	return cfg, nil
}

// Save writes the config YAML and stores token in the keyring if non-empty.
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := SaveTo(path, cfg); err != nil {
		return err
	}
	if token != "" {
		return SetToken(token)
	}
	return nil
}

// SaveTo writes cfg to path.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// AutosaveDelay returns the debounce delay of layout autosave.
func (w WorkspaceConfig) AutosaveDelay() time.Duration {
	if w.AutosaveDelayMs <= 0 {
		return time.Duration(Defaults().Workspace.AutosaveDelayMs) * time.Millisecond
	}
	return time.Duration(w.AutosaveDelayMs) * time.Millisecond
}

// Timeout returns the capability request timeout.
func (c CapabilityConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return time.Duration(Defaults().Capability.TimeoutMs) * time.Millisecond
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn

	if v := strings.ToLower(strings.TrimSpace(src.Workspace.Storage)); v != "" {
		dst.Workspace.Storage = v
	}
	if v := strings.TrimSpace(src.Workspace.StorageKey); v != "" {
		dst.Workspace.StorageKey = v
	}
	if v := strings.TrimSpace(src.Workspace.DataDir); v != "" {
		dst.Workspace.DataDir = v
	}
	if v := strings.TrimSpace(src.Workspace.PostgresDSN); v != "" {
		dst.Workspace.PostgresDSN = v
	}
	if src.Workspace.AutosaveDelayMs > 0 {
		dst.Workspace.AutosaveDelayMs = src.Workspace.AutosaveDelayMs
	}

	// Zero thresholds in the file mean "not set".
	in := src.Interaction
	if in.DragThreshold > 0 {
		dst.Interaction.DragThreshold = in.DragThreshold
	}
	if in.PanelSnapThreshold > 0 {
		dst.Interaction.PanelSnapThreshold = in.PanelSnapThreshold
	}
	if in.DockSnapThreshold > 0 {
		dst.Interaction.DockSnapThreshold = in.DockSnapThreshold
	}
	if in.UndockMargin > 0 {
		dst.Interaction.UndockMargin = in.UndockMargin
	}
	dst.Interaction.DisableSmartGuides = in.DisableSmartGuides

	if src.Capability.BaseURL != "" {
		dst.Capability.BaseURL = src.Capability.BaseURL
	}
	if src.Capability.TimeoutMs != 0 {
		dst.Capability.TimeoutMs = src.Capability.TimeoutMs
	}

	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	dst.Logging.Source = src.Logging.Source
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	env := func(key string) string { return strings.TrimSpace(os.Getenv(key)) }
	if v := env(EnvTelemetryOptIn); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := env(EnvStorage); v != "" {
		cfg.Workspace.Storage = strings.ToLower(v)
	}
	if v := env(EnvStorageKey); v != "" {
		cfg.Workspace.StorageKey = v
	}
	if v := env(EnvDataDir); v != "" {
		cfg.Workspace.DataDir = v
	}
	if v := env(EnvPostgresDSN); v != "" {
		cfg.Workspace.PostgresDSN = v
	}
	if v := env(EnvDragThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Interaction.DragThreshold = f
		}
	}
	if v := env(EnvCapabilityURL); v != "" {
		cfg.Capability.BaseURL = v
	}
	if v := env(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := env(EnvLogFormat); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := env(EnvLogSource); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := env(EnvLogFile); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var overriding the dotted key, if it is set.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
