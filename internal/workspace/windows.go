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

	"dockspace/internal/dock"
	"dockspace/internal/windowhost"
)

// SpawnWidgetWindow moves id into its own native window. Without a window
// host it does nothing. The state is updated optimistically; a failing host
// leaves the widget marked external until it is reattached or closed.
func (s *Store) SpawnWidgetWindow(id string) {
	if s.host == nil {
		return
	}
	s.apply("spawnWidgetWindow", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil || w.Host == HostExternal {
			return false
		}
		t.st.Root = dock.RemoveLeafByWidgetID(t.st.Root, id)
		w.Mode = ModeFloating
		w.Host = HostExternal
		w.WindowHandle = windowhost.LabelFor(id)
		t.effects = append(t.effects, openWindow(*w))
		return true
	})
}

// CloseWidgetWindow closes id's window and returns the widget to the dock.
func (s *Store) CloseWidgetWindow(id string) {
	s.returnToDock("closeWidgetWindow", id, true)
}

// ReattachWidgetToDock brings a detached widget, windowed or floating, back
// into the dock at the right edge.
func (s *Store) ReattachWidgetToDock(id string) {
	s.returnToDock("reattachWidgetToDock", id, true)
}

func (s *Store) returnToDock(op, id string, closeHostWindow bool) {
	s.apply(op, id, func(t *tx) bool {
		w := t.find(id)
		if w == nil || (w.Mode == ModeDock && w.Host == HostEmbedded && t.docked(id)) {
			return false
		}
		if !closeHostWindow {
			w.Host = HostEmbedded
		}
		t.dockAtEdge(w, dock.Right)
		return true
	})
}

// HandleWindowEvent translates a notification from the window host into the
// matching command.
func (s *Store) HandleWindowEvent(ev windowhost.Event) {
	id := ev.ResolveWidgetID()
	if id == "" {
		return
	}
	switch ev.Kind {
	case windowhost.EventClosed:
		// the window is already gone, nothing to close
		s.returnToDock("windowClosed", id, false)
	case windowhost.EventReattach:
		s.ReattachWidgetToDock(id)
	case windowhost.EventReady:
		s.hydrate(id)
	default:
		s.log.Debug("ignoring window event", slog.String("kind", string(ev.Kind)), slog.String("widget", id))
	}
}

// hydrate sends the widget's module and runtime state to its window.
func (s *Store) hydrate(id string) {
	if s.host == nil {
		return
	}
	s.mu.Lock()
	w, ok := s.state.Widget(id)
	blob := s.runtime[id]
	s.mu.Unlock()
	if !ok || w.Host != HostExternal {
		return
	}
	label := windowhost.LabelFor(id)
	payload := windowhost.HydratePayload{
		WidgetID: id,
		ModuleID: string(w.ModuleID),
		State:    blob,
		Version:  windowhost.HydrateVersion,
	}
	s.runEffects([]hostCall{{op: "hydrate", label: label, run: func(ctx context.Context, h windowhost.Host) error {
		return h.Hydrate(ctx, label, payload)
	}}})
}
