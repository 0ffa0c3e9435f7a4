/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	applog "dockspace/internal/log"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce collapses the burst of events editors emit for one save.
var watchDebounce = 150 * time.Millisecond

// Watch reloads the config at path whenever it changes on disk and hands the
// result to onChange. The parent directory is watched so atomic replace
// (write temp, rename) is seen. Files that fail to parse are logged and
// skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, onChange func(AppConfig)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config watch %s: %w", filepath.Dir(path), err)
	}
	l := applog.WithOperation(applog.WithComponent("config"), "watch")
	target := filepath.Clean(path)

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			l.Debug("config change detected", slog.String("event", ev.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.Any("err", err))
		case <-fire:
			cfg, err := LoadFrom(path)
			if err != nil {
				l.Warn("reload failed", slog.Any("err", err))
				continue
			}
			onChange(cfg)
		}
	}
}
