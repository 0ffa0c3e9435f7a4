/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists the workspace layout as an opaque JSON blob under a
// string key. Three backends share the Store interface: plain files with
// transactional writes and backups, an embedded SQLite database, and a shared
// Postgres database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"dockspace/internal/config"
)

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("storage: not found")

// Store is a key/value blob store.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open returns the store selected by the workspace config.
func Open(ctx context.Context, cfg config.WorkspaceConfig) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Storage)) {
	case "", BackendFile:
		return NewFileStore(filepath.Join(cfg.DataDir, "layouts"))
	case BackendSQLite:
		return OpenSQLite(ctx, filepath.Join(cfg.DataDir, "dockspace.sqlite"))
	case BackendPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, errors.New("storage: postgres backend needs a DSN")
		}
		return OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Storage)
	}
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("storage: empty key")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
