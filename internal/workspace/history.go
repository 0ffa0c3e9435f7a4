/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"log/slog"

	"dockspace/internal/undo"
	"dockspace/internal/windowhost"
)

// Undo restores the layout from before the last command. Windows are opened
// or closed to match the restored state.
func (s *Store) Undo() bool {
	return s.travel("undo", s.history.Undo)
}

// Redo reapplies the last undone command.
func (s *Store) Redo() bool {
	return s.travel("redo", s.history.Redo)
}

func (s *Store) CanUndo() bool { return s.history.CanUndo() }
func (s *Store) CanRedo() bool { return s.history.CanRedo() }

func (s *Store) travel(op string, step func(current []byte) (undo.Snapshot, bool)) bool {
	s.mu.Lock()
	cur, err := encodeSnapshot(s.state)
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("snapshot encode failed", slog.String("op", op), slog.Any("err", err))
		return false
	}
	snap, ok := step(cur)
	if !ok {
		s.mu.Unlock()
		return false
	}
	next, err := decodeSnapshot(snap.Blob)
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("history entry unreadable", slog.String("op", op), slog.Any("err", err))
		return false
	}
	effects := reconcileWindows(s.state.Widgets, next.Widgets)
	live := map[string]bool{}
	for _, w := range next.Widgets {
		live[w.ID] = true
		s.zCounter = max(s.zCounter, w.Z)
	}
	for id := range s.runtime {
		if !live[id] {
			delete(s.runtime, id)
		}
	}
	next.Version = s.state.Version + 1
	s.state = next
	s.log.Debug("history step", slog.String("op", op), slog.String("of", snap.Op), slog.Uint64("version", next.Version))
	s.publishLocked(op, effects)
	return true
}

// reconcileWindows returns the host calls that turn the windows of from into
// those of to.
func reconcileWindows(from, to []Widget) []hostCall {
	had := map[string]bool{}
	for _, w := range from {
		if w.Host == HostExternal {
			had[w.ID] = true
		}
	}
	var out []hostCall
	for _, w := range to {
		if w.Host != HostExternal {
			continue
		}
		if had[w.ID] {
			delete(had, w.ID)
			continue
		}
		out = append(out, openWindow(w))
	}
	for _, w := range from {
		if had[w.ID] {
			out = append(out, closeWindow(windowhost.LabelFor(w.ID)))
		}
	}
	return out
}
