/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"context"
	"log/slog"
	"sync"
	"time"

	applog "dockspace/internal/log"
	"dockspace/internal/storage"
)

// DefaultAutosaveDelay is used when NewAutosaver gets a non-positive delay.
const DefaultAutosaveDelay = 500 * time.Millisecond

// Autosaver writes the layout a short while after the last change, so a burst
// of commands (a drag) costs one write.
type Autosaver struct {
	store *Store
	blob  storage.Store
	key   string
	delay time.Duration
	log   *slog.Logger

	mu          sync.Mutex
	timer       *time.Timer
	dirty       bool
	closed      bool
	unsubscribe func()
	// saveMu serializes writes from the timer with Flush.
	saveMu sync.Mutex
}

// NewAutosaver subscribes to s and saves to blob under key.
func NewAutosaver(s *Store, blob storage.Store, key string, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	a := &Autosaver{
		store: s,
		blob:  blob,
		key:   key,
		delay: delay,
		log:   applog.WithComponent("autosave").With(slog.String("key", key)),
	}
	a.unsubscribe = s.Subscribe(func(Change) { a.markDirty() })
	return a
}

func (a *Autosaver) markDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.dirty = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, func() {
		if err := a.Flush(context.Background()); err != nil {
			a.log.Warn("autosave failed", slog.Any("err", err))
		}
	})
}

// Flush saves immediately if there are unsaved changes.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	dirty := a.dirty
	a.dirty = false
	a.mu.Unlock()
	if !dirty {
		return nil
	}

	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	if err := a.store.Save(ctx, a.blob, a.key); err != nil {
		a.mu.Lock()
		a.dirty = true
		a.mu.Unlock()
		return err
	}
	a.log.Debug("layout saved")
	return nil
}

// Close stops listening and writes any pending change.
func (a *Autosaver) Close(ctx context.Context) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()
	a.unsubscribe()
	return a.Flush(ctx)
}
