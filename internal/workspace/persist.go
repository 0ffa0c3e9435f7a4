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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"dockspace/internal/dock"
	"dockspace/internal/module"
	"dockspace/internal/storage"
	"dockspace/internal/windowhost"
)

// persisted is the stored layout. The dock tree is not part of it; Restore
// rebuilds one from the docked widgets.
type persisted struct {
	Widgets []Widget `json:"widgets"`
}

// MarshalLayout encodes the widget list in the persisted format.
func (s *Store) MarshalLayout() ([]byte, error) {
	st := s.State()
	if st.Widgets == nil {
		st.Widgets = []Widget{}
	}
	return json.Marshal(persisted{Widgets: st.Widgets})
}

// Save writes the layout to blob under key.
func (s *Store) Save(ctx context.Context, blob storage.Store, key string) error {
	data, err := s.MarshalLayout()
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := blob.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save layout %s: %w", key, err)
	}
	return nil
}

// Load reads key from blob and restores it. A missing key leaves the store
// empty and is not an error.
func (s *Store) Load(ctx context.Context, blob storage.Store, key string) error {
	data, err := blob.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		s.log.Info("no saved layout", slog.String("key", key))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load layout %s: %w", key, err)
	}
	return s.Restore(data)
}

// Restore replaces the state with a persisted layout. Widgets of unknown
// modules are dropped, duplicate ids keep their first occurrence, windowed
// widgets fall back to embedded when there is no window host and docked
// widgets are re-docked at the right edge in list order. History is cleared.
func (s *Store) Restore(data []byte) error {
	if err := storage.ValidateLayout(data); err != nil {
		return err
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}

	seen := map[string]bool{}
	var widgets []Widget
	dropped := 0
	for _, w := range p.Widgets {
		if !module.Known(w.ModuleID) || seen[w.ID] {
			dropped++
			continue
		}
		seen[w.ID] = true
		if w.Host == "" {
			w.Host = HostEmbedded
		}
		if w.Host == HostExternal && s.host == nil {
			w.Host = HostEmbedded
		}
		if w.Host == HostExternal {
			w.Mode = ModeFloating
			w.WindowHandle = windowhost.LabelFor(w.ID)
		} else {
			w.WindowHandle = ""
		}
		widgets = append(widgets, clampToConstraints(w))
	}
	widgets = normalizeNavLinks(widgets)

	var root dock.Node
	var effects []hostCall
	for _, w := range widgets {
		switch {
		case w.Mode == ModeDock:
			root = dock.SplitRoot(root, dock.Row, dock.CreateLeaf(w.ID), dock.End)
		case w.Host == HostExternal:
			effects = append(effects, openWindow(w))
		}
	}

	s.mu.Lock()
	for _, w := range widgets {
		s.zCounter = max(s.zCounter, w.Z)
	}
	effects = append(reconcileWindows(s.state.Widgets, nil), effects...)
	s.state = State{Version: s.state.Version + 1, Widgets: widgets, Root: root}
	clear(s.runtime)
	s.history.Clear()
	s.log.Info("layout restored",
		slog.Int("widgets", len(widgets)),
		slog.Int("dropped", dropped),
		slog.Uint64("version", s.state.Version))
	s.publishLocked("restore", effects)
	return nil
}
