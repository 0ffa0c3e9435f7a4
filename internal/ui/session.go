/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dockspace/internal/capability"
	"dockspace/internal/config"
	"dockspace/internal/crash"
	"dockspace/internal/geom"
	applog "dockspace/internal/log"
	"dockspace/internal/module"
	"dockspace/internal/snap"
	"dockspace/internal/storage"
	"dockspace/internal/telemetry"
	"dockspace/internal/undo"
	"dockspace/internal/windowhost"
	"dockspace/internal/workspace"
)

// Options configure a UI session. Blob is required; everything else may be
// left zero.
type Options struct {
	Config config.AppConfig
	// ConfigPath is watched so interaction thresholds apply without restart.
	ConfigPath string
	Blob       storage.Store
	Host       windowhost.Host
	Telemetry  *telemetry.Client
	Crash      *crash.Handler
	// Capability, when set, is asked once at startup which modules may exist.
	Capability *capability.Client
}

// eventSource is a host that reports window events back to the store.
// The handler must be in place before the layout is restored, because a
// host may answer Open with EventReady synchronously.
type eventSource interface {
	setHandler(fn func(windowhost.Event))
}

// Session ties the workspace store to its persistence, the drag controller
// and the config watcher. It is what the desktop shell drives; it has no
// fyne dependency.
type Session struct {
	Store *workspace.Store

	mu       sync.Mutex
	ctrl     *snap.Controller
	surf     *snap.LayoutSurfaces
	autosave *workspace.Autosaver
	blob     storage.Store
	key      string
	cancel   context.CancelFunc
	done     chan struct{}
	log      *slog.Logger
}

// NewSession restores the saved layout, applies the capability map and
// starts autosave. A workspace with no widgets gets the welcome module
// docked.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.Blob == nil {
		return nil, errors.New("ui: session needs a layout store")
	}
	l := applog.WithComponent("ui")
	key := opts.Config.Workspace.StorageKey
	if key == "" {
		key = config.DefaultStorageKey
	}
	store := workspace.New(workspace.Options{
		Host: opts.Host,
		History: undo.NewManager(undo.Config{
			MaxBytes:    16 * 1024 * 1024,
			MaxDepth:    200,
			MinInterval: 250 * time.Millisecond,
		}),
	})
	if src, ok := opts.Host.(eventSource); ok {
		src.setHandler(store.HandleWindowEvent)
	}
	if err := store.Load(ctx, opts.Blob, key); err != nil {
		l.Warn("saved layout ignored", slog.Any("err", err))
	}
	if opts.Capability != nil && opts.Capability.Token != "" {
		if _, err := opts.Capability.Sync(ctx, store); err != nil {
			l.Warn("capability sync failed", slog.Any("err", err))
		}
	}
	if len(store.State().Widgets) == 0 {
		store.EnsureDocked(module.Welcome)
	}

	surf := &snap.LayoutSurfaces{State: store.State}
	ctrl := snap.NewController(store, surf, snap.ConfigFrom(opts.Config.Interaction))
	if opts.Telemetry != nil {
		ctrl.SetEventSink(opts.Telemetry)
	}

	s := &Session{
		Store:    store,
		ctrl:     ctrl,
		surf:     surf,
		autosave: workspace.NewAutosaver(store, opts.Blob, key, opts.Config.Workspace.AutosaveDelay()),
		blob:     opts.Blob,
		key:      key,
		done:     make(chan struct{}),
		log:      l,
	}
	if opts.Crash != nil {
		opts.Crash.SetAutosave(s.autosave)
	}

	wctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if opts.ConfigPath != "" {
		go func() {
			defer close(s.done)
			if err := config.Watch(wctx, opts.ConfigPath, s.applyConfig); err != nil {
				l.Warn("config watch stopped", slog.Any("err", err))
			}
		}()
	} else {
		close(s.done)
	}
	return s, nil
}

func (s *Session) applyConfig(cfg config.AppConfig) {
	s.mu.Lock()
	s.ctrl.SetConfig(snap.ConfigFrom(cfg.Interaction))
	s.mu.Unlock()
	s.log.Info("interaction settings reloaded")
}

// Resize sets the workspace bounds and the region the dock tree fills.
// An empty dock region means the whole workspace.
func (s *Session) Resize(workspace, dockRegion geom.Rect) {
	s.mu.Lock()
	s.surf.Bounds = workspace
	s.surf.Dock = dockRegion
	s.mu.Unlock()
}

// Panels lists what is on screen, topmost first.
func (s *Session) Panels() []snap.Panel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.surf.Panels()
}

// TargetAt reports what a press at p would land on.
func (s *Session) TargetAt(p geom.Pt) Target {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Pick(*s.surf, p)
}

// Press starts a drag session if p lands on a header, divider or resize
// grip.
func (s *Session) Press(p geom.Pt, button snap.Button, chain []snap.Element) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := Pick(*s.surf, p)
	return Begin(s.ctrl, t, snap.PointerDown{Pos: p, Button: button, Chain: chain})
}

func (s *Session) Drag(p geom.Pt) {
	s.mu.Lock()
	s.ctrl.Move(p)
	s.mu.Unlock()
}

func (s *Session) Release(p geom.Pt) {
	s.mu.Lock()
	s.ctrl.Release(p)
	s.mu.Unlock()
}

func (s *Session) Cancel() {
	s.mu.Lock()
	s.ctrl.Cancel()
	s.mu.Unlock()
}

// Preview is the live intent and active smart guides of the current drag.
func (s *Session) Preview() (snap.Phase, snap.Intent, []geom.GuideLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Phase(), s.ctrl.Intent(), s.ctrl.Guides()
}

// Close stops the watcher and writes the layout one last time.
func (s *Session) Close(ctx context.Context) error {
	s.cancel()
	<-s.done
	err := s.autosave.Close(ctx)
	if serr := s.Store.Save(ctx, s.blob, s.key); serr != nil && err == nil {
		err = serr
	}
	return err
}
