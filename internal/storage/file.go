/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	BackupsDirName = "backups"
	// DefaultKeepBackups is how many backups per key FileStore retains.
	DefaultKeepBackups = 5
)

// FileStore keeps one JSON file per key under Root. Writes go to a temp file
// that is renamed over the target, and the previous content is copied to a
// timestamped backup first. A corrupt or missing primary falls back to the
// newest backup on Load.
type FileStore struct {
	Root        string
	KeepBackups int
}

func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage: file store root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{Root: root, KeepBackups: DefaultKeepBackups}, nil
}

func (s *FileStore) path(key string) string { return filepath.Join(s.Root, key+".json") }

func (s *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path(key))
	if err == nil && json.Valid(b) {
		return b, nil
	}
	backup, berr := s.latestBackup(key)
	if berr == nil {
		return backup, nil
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("read %s: %w; backup attempt: %v", key, err, berr)
	default:
		return nil, fmt.Errorf("read %s: corrupt content; backup attempt: %v", key, berr)
	}
}

func (s *FileStore) Save(_ context.Context, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	target := s.path(key)
	bdir := filepath.Join(s.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if prev, err := os.ReadFile(target); err == nil && json.Valid(prev) {
		stamp := time.Now().UTC().Format("20060102-150405.000000")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.json.%s.bak", key, stamp))
		if err := writeFileSync(bpath, prev); err != nil {
			return fmt.Errorf("backup %s: %w", key, err)
		}
		s.pruneBackups(key)
	}

	temp := filepath.Join(s.Root, fmt.Sprintf(".%s.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, err)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

// Delete removes the key and its backups.
func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	for _, b := range s.backups(key) {
		_ = os.Remove(b)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// backups returns the backup files of key, oldest first.
func (s *FileStore) backups(key string) []string {
	bdir := filepath.Join(s.Root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	prefix := key + ".json."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func (s *FileStore) latestBackup(key string) ([]byte, error) {
	list := s.backups(key)
	for i := len(list) - 1; i >= 0; i-- {
		b, err := os.ReadFile(list[i])
		if err == nil && json.Valid(b) {
			return b, nil
		}
	}
	return nil, errors.New("no usable backup")
}

func (s *FileStore) pruneBackups(key string) {
	keep := s.KeepBackups
	if keep <= 0 {
		keep = DefaultKeepBackups
	}
	list := s.backups(key)
	for len(list) > keep {
		_ = os.Remove(list[0])
		list = list[1:]
	}
}

// writeFileSync writes data to path and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
