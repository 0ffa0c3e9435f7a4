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
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dockspace/internal/dock"
	applog "dockspace/internal/log"
	"dockspace/internal/module"
	"dockspace/internal/undo"
	"dockspace/internal/windowhost"
)

// DefaultHostTimeout bounds each call into the window host.
const DefaultHostTimeout = 5 * time.Second

// Options configures a Store. The zero value is usable: no window host, a
// default undo history and uuid widget ids.
type Options struct {
	// Host opens native windows for detached widgets. Nil disables
	// SpawnWidgetWindow.
	Host windowhost.Host
	// History receives a snapshot before every command. Nil creates one with
	// a 250ms coalescing window.
	History     *undo.Manager
	NewID       func() string
	HostTimeout time.Duration
	Now         func() time.Time
}

// Change is published to subscribers after every command that changed state.
type Change struct {
	Op    string
	State State
}

type subscriber struct{ fn func(Change) }

// Store is the single source of truth for widgets and the dock tree. Every
// command is total: unknown ids and impossible requests leave the state
// untouched and publish nothing.
type Store struct {
	mu          sync.Mutex
	state       State
	host        windowhost.Host
	history     *undo.Manager
	newID       func() string
	now         func() time.Time
	hostTimeout time.Duration
	log         *slog.Logger

	// zCounter never decreases within a session so z values are not reused.
	zCounter   int64
	runtime    map[string]json.RawMessage
	background map[module.ID]bool
	subs       []*subscriber
}

func New(opts Options) *Store {
	s := &Store{
		host:        opts.Host,
		history:     opts.History,
		newID:       opts.NewID,
		now:         opts.Now,
		hostTimeout: opts.HostTimeout,
		log:         applog.WithComponent("workspace"),
		runtime:     map[string]json.RawMessage{},
		background:  map[module.ID]bool{},
	}
	if s.history == nil {
		s.history = undo.NewManager(undo.Config{MaxDepth: 200, MinInterval: 250 * time.Millisecond})
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.hostTimeout <= 0 {
		s.hostTimeout = DefaultHostTimeout
	}
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// HasWindowHost reports whether detached widgets can get native windows.
func (s *Store) HasWindowHost() bool { return s.host != nil }

// Subscribe registers fn for every published change and returns a function
// that removes it. Callbacks run without the store lock held, so they may
// call back into the store.
func (s *Store) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := &subscriber{fn: fn}
	s.subs = append(s.subs, sub)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, x := range s.subs {
			if x == sub {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// hostCall is a window host side effect, run after the lock is released.
type hostCall struct {
	op    string
	label string
	run   func(ctx context.Context, h windowhost.Host) error
}

func openWindow(w Widget) hostCall {
	label := windowhost.LabelFor(w.ID)
	id, mod := w.ID, string(w.ModuleID)
	return hostCall{op: "open", label: label, run: func(ctx context.Context, h windowhost.Host) error {
		return h.Open(ctx, label, id, mod)
	}}
}

func closeWindow(label string) hostCall {
	return hostCall{op: "close", label: label, run: func(ctx context.Context, h windowhost.Host) error {
		return h.Close(ctx, label)
	}}
}

// tx is the working copy a command mutates.
type tx struct {
	s       *Store
	st      State
	effects []hostCall
}

func (t *tx) find(id string) *Widget {
	for i := range t.st.Widgets {
		if t.st.Widgets[i].ID == id {
			return &t.st.Widgets[i]
		}
	}
	return nil
}

func (t *tx) remove(id string) {
	out := t.st.Widgets[:0]
	for _, w := range t.st.Widgets {
		if w.ID != id {
			out = append(out, w)
		}
	}
	t.st.Widgets = out
}

func (t *tx) nextZ() int64 {
	z := t.s.zCounter
	for _, w := range t.st.Widgets {
		z = max(z, w.Z)
	}
	z++
	t.s.zCounter = z
	return z
}

func (t *tx) docked(id string) bool { return dock.FindLeafByWidget(t.st.Root, id) != nil }

// toDock switches w to (dock, embedded), closing its window if it had one.
func (t *tx) toDock(w *Widget) {
	if w.Host == HostExternal {
		t.effects = append(t.effects, closeWindow(windowhost.LabelFor(w.ID)))
	}
	w.Mode = ModeDock
	w.Host = HostEmbedded
	w.WindowHandle = ""
}

// toFloating takes w out of the tree and floats it embedded at (x, y).
func (t *tx) toFloating(w *Widget, x, y float64) {
	if w.Host == HostExternal {
		t.effects = append(t.effects, closeWindow(windowhost.LabelFor(w.ID)))
	}
	t.st.Root = dock.RemoveLeafByWidgetID(t.st.Root, w.ID)
	w.Mode = ModeFloating
	w.Host = HostEmbedded
	w.WindowHandle = ""
	w.X = max(0, x)
	w.Y = max(0, y)
	w.Z = t.nextZ()
}

// dockAtEdge docks id against one edge of the whole workspace.
func (t *tx) dockAtEdge(w *Widget, side dock.Side) {
	dir, pos := side.Placement()
	root := dock.RemoveLeafByWidgetID(t.st.Root, w.ID)
	t.st.Root = dock.SplitRoot(root, dir, dock.CreateLeaf(w.ID), pos)
	t.toDock(w)
}

// closeWidget removes id everywhere. Nav links are repaired by normalization.
func (t *tx) closeWidget(id string) bool {
	w := t.find(id)
	if w == nil {
		return false
	}
	if w.Host == HostExternal {
		t.effects = append(t.effects, closeWindow(windowhost.LabelFor(id)))
	}
	t.st.Root = dock.RemoveLeafByWidgetID(t.st.Root, id)
	t.remove(id)
	delete(t.s.runtime, id)
	return true
}

// apply runs mutate on a copy of the state. When it reports a change the
// copy is normalized, recorded in history and published.
func (s *Store) apply(op, widgetID string, mutate func(t *tx) bool) bool {
	s.mu.Lock()
	before := s.state
	t := &tx{s: s, st: before.clone()}
	if !mutate(t) {
		s.mu.Unlock()
		return false
	}
	t.st.Widgets = normalizeNavLinks(t.st.Widgets)
	if blob, err := encodeSnapshot(before); err == nil {
		s.history.Push(undo.Snapshot{Op: op, Target: widgetID, Blob: blob, TS: s.now()})
	} else {
		s.log.Warn("snapshot encode failed", slog.String("op", op), slog.Any("err", err))
	}
	t.st.Version = before.Version + 1
	s.state = t.st
	s.log.Debug("command applied",
		slog.String("op", op),
		slog.String("widget", widgetID),
		slog.Uint64("version", t.st.Version))
	s.publishLocked(op, t.effects)
	return true
}

// publishLocked must be called with s.mu held. It releases the lock, runs
// the host side effects and notifies subscribers.
func (s *Store) publishLocked(op string, effects []hostCall) {
	change := Change{Op: op, State: s.state.clone()}
	subs := make([]*subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	s.runEffects(effects)
	for _, sub := range subs {
		sub.fn(change)
	}
}

// runEffects is fire-and-forget: failures are logged and the state stays as
// the command left it.
func (s *Store) runEffects(effects []hostCall) {
	if s.host == nil {
		return
	}
	for _, e := range effects {
		ctx, cancel := context.WithTimeout(context.Background(), s.hostTimeout)
		err := e.run(ctx, s.host)
		cancel()
		if err != nil {
			s.log.Warn("window host call failed",
				slog.String("call", e.op),
				slog.String("label", e.label),
				slog.Any("err", err))
		}
	}
}

// AddWidget appends a floating widget for moduleID at the next staggered
// position and returns its id, or "" for an unknown module.
func (s *Store) AddWidget(moduleID module.ID) string {
	var id string
	s.apply("addWidget", "", func(t *tx) bool {
		if !module.Known(moduleID) {
			return false
		}
		id = t.s.newID()
		t.st.Widgets = append(t.st.Widgets, t.newWidget(moduleID, id))
		return true
	})
	return id
}

func (t *tx) newWidget(moduleID module.ID, id string) Widget {
	r := defaultGeometry(len(t.st.Widgets), moduleID)
	return Widget{
		ID:       id,
		ModuleID: moduleID,
		Mode:     ModeFloating,
		Host:     HostEmbedded,
		X:        r.X,
		Y:        r.Y,
		W:        r.W,
		H:        r.H,
		Z:        t.nextZ(),
	}
}

// EnsureDocked makes sure a widget for moduleID exists. When none does, one
// is created and docked at the right edge. Returns the widget id.
func (s *Store) EnsureDocked(moduleID module.ID) string {
	var id string
	s.apply("ensureDocked", "", func(t *tx) bool {
		if !module.Known(moduleID) {
			return false
		}
		for _, w := range t.st.Widgets {
			if w.ModuleID == moduleID {
				id = w.ID
				return false
			}
		}
		id = t.s.newID()
		t.st.Widgets = append(t.st.Widgets, t.newWidget(moduleID, id))
		t.dockAtEdge(t.find(id), dock.Right)
		return true
	})
	return id
}

// DuplicateWidget creates a floating copy of id, offset by DuplicateOffset,
// carrying over its runtime state. Returns the new id or "".
func (s *Store) DuplicateWidget(id string) string {
	var dup string
	s.apply("duplicateWidget", id, func(t *tx) bool {
		src := t.find(id)
		if src == nil {
			return false
		}
		dup = t.s.newID()
		w := Widget{
			ID:       dup,
			ModuleID: src.ModuleID,
			Mode:     ModeFloating,
			Host:     HostEmbedded,
			X:        src.X + DuplicateOffset,
			Y:        src.Y + DuplicateOffset,
			W:        src.W,
			H:        src.H,
		}
		w.Z = t.nextZ()
		t.st.Widgets = append(t.st.Widgets, clampToConstraints(w))
		if blob, ok := t.s.runtime[id]; ok {
			t.s.runtime[dup] = append(json.RawMessage(nil), blob...)
		}
		return true
	})
	return dup
}

func (s *Store) SetPinned(id string, pinned bool) {
	s.apply("setPinned", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil || w.Pinned == pinned {
			return false
		}
		w.Pinned = pinned
		return true
	})
}

func (s *Store) TogglePin(id string) {
	s.apply("togglePin", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil {
			return false
		}
		w.Pinned = !w.Pinned
		return true
	})
}

// UpdateWidget merges patch into id and re-applies the module's minimum size.
func (s *Store) UpdateWidget(id string, patch Patch) {
	s.apply("updateWidget", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil {
			return false
		}
		next := patch.applyTo(*w)
		if next.X == w.X && next.Y == w.Y && next.W == w.W && next.H == w.H && next.Pinned == w.Pinned {
			return false
		}
		*w = next
		return true
	})
}

// BringToFront raises id above every other widget.
func (s *Store) BringToFront(id string) {
	s.apply("bringToFront", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil {
			return false
		}
		top := true
		for _, o := range t.st.Widgets {
			if o.ID != id && o.Z >= w.Z {
				top = false
				break
			}
		}
		if top {
			return false
		}
		w.Z = t.nextZ()
		return true
	})
}

// CloseWidget removes id from the widget list, the dock tree and any nav
// aggregator, closes its window and discards its runtime state.
func (s *Store) CloseWidget(id string) {
	s.apply("closeWidget", id, func(t *tx) bool { return t.closeWidget(id) })
}

// ApplyEnabledModules closes every widget whose module maps to false.
// Modules missing from enabled are left alone.
func (s *Store) ApplyEnabledModules(enabled map[module.ID]bool) {
	s.apply("applyEnabledModules", "", func(t *tx) bool {
		var doomed []string
		for _, w := range t.st.Widgets {
			if on, ok := enabled[w.ModuleID]; ok && !on {
				doomed = append(doomed, w.ID)
			}
		}
		for _, id := range doomed {
			t.closeWidget(id)
		}
		for id, on := range enabled {
			if !on {
				delete(t.s.background, id)
			}
		}
		return len(doomed) > 0
	})
}

// ResetLayout clears widgets, the dock tree, runtime state and background
// modes. Open windows are closed.
func (s *Store) ResetLayout() {
	s.apply("resetLayout", "", func(t *tx) bool {
		if len(t.st.Widgets) == 0 && t.st.Root == nil && len(t.s.runtime) == 0 && len(t.s.background) == 0 {
			return false
		}
		for _, w := range t.st.Widgets {
			if w.Host == HostExternal {
				t.effects = append(t.effects, closeWindow(windowhost.LabelFor(w.ID)))
			}
		}
		t.st.Widgets = nil
		t.st.Root = nil
		clear(t.s.runtime)
		clear(t.s.background)
		return true
	})
}

// SetRuntimeState stores an opaque per-widget blob, handed to the widget's
// window when it opens. It is not part of the layout history.
func (s *Store) SetRuntimeState(id string, blob json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Widget(id); !ok {
		return
	}
	if blob == nil {
		delete(s.runtime, id)
		return
	}
	s.runtime[id] = append(json.RawMessage(nil), blob...)
}

func (s *Store) RuntimeState(id string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.runtime[id]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), b...), true
}

// SetBackgroundMode marks a module as running in the background.
func (s *Store) SetBackgroundMode(id module.ID, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.background[id] = true
		return
	}
	delete(s.background, id)
}

func (s *Store) BackgroundMode(id module.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.background[id]
}
