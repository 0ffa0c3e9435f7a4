/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package workspace owns the canonical widget list and dock tree and exposes
// every command that changes them.
package workspace

import (
	"encoding/json"
	"fmt"
	"math"

	"dockspace/internal/dock"
	"dockspace/internal/geom"
	"dockspace/internal/module"
)

// Mode says whether a widget lives in the dock tree or floats.
type Mode string

const (
	ModeDock     Mode = "dock"
	ModeFloating Mode = "floating"
)

// Host says which surface renders a widget.
type Host string

const (
	HostEmbedded Host = "embedded"
	HostExternal Host = "external-window"
)

// Default placement of new widgets.
const (
	defaultOrigin   = 80
	staggerStep     = 24
	defaultWidth    = 520
	defaultHeight   = 620
	DuplicateOffset = 24
)

// Widget is one placeable panel. Geometry and Z only matter while floating.
type Widget struct {
	ID            string    `json:"id"`
	ModuleID      module.ID `json:"moduleId"`
	Mode          Mode      `json:"mode"`
	Host          Host      `json:"host"`
	WindowHandle  string    `json:"windowHandle,omitempty"`
	Pinned        bool      `json:"pinned"`
	ParentGroupID string    `json:"parentGroupId,omitempty"`
	ChildIDs      []string  `json:"childIds,omitempty"`
	X             float64   `json:"x"`
	Y             float64   `json:"y"`
	W             float64   `json:"w"`
	H             float64   `json:"h"`
	Z             int64     `json:"z"`
}

func (w Widget) Rect() geom.Rect { return geom.R(w.X, w.Y, w.W, w.H) }

func (w Widget) clone() Widget {
	if w.ChildIDs != nil {
		w.ChildIDs = append([]string(nil), w.ChildIDs...)
	}
	return w
}

func (w Widget) String() string {
	return fmt.Sprintf("%s(%s %s/%s)", w.ID, w.ModuleID, w.Mode, w.Host)
}

// Patch is a partial widget update. Nil fields are left alone.
type Patch struct {
	X, Y, W, H *float64
	Pinned     *bool
}

func (p Patch) applyTo(w Widget) Widget {
	if p.X != nil {
		w.X = *p.X
	}
	if p.Y != nil {
		w.Y = *p.Y
	}
	if p.W != nil {
		w.W = *p.W
	}
	if p.H != nil {
		w.H = *p.H
	}
	if p.Pinned != nil {
		w.Pinned = *p.Pinned
	}
	return clampToConstraints(w)
}

// clampToConstraints grows w to its module's minimum size and drops
// non-finite coordinates.
func clampToConstraints(w Widget) Widget {
	c := module.ConstraintsFor(w.ModuleID)
	finite := func(v, fallback float64) float64 {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fallback
		}
		return v
	}
	w.X = finite(w.X, defaultOrigin)
	w.Y = finite(w.Y, defaultOrigin)
	w.W = math.Max(finite(w.W, 0), c.MinWidth)
	w.H = math.Max(finite(w.H, 0), c.MinHeight)
	return w
}

// defaultGeometry staggers the n-th widget so new widgets never land exactly
// on top of each other.
func defaultGeometry(n int, id module.ID) geom.Rect {
	c := module.ConstraintsFor(id)
	off := float64(defaultOrigin + n*staggerStep)
	return geom.R(off, off, math.Max(defaultWidth, c.MinWidth), math.Max(defaultHeight, c.MinHeight))
}

// State is a published snapshot. Callers must treat it as read-only; the
// dock tree is shared between versions.
type State struct {
	Version uint64
	Widgets []Widget
	Root    dock.Node
}

// Widget returns the widget with the given id.
func (s State) Widget(id string) (Widget, bool) {
	for _, w := range s.Widgets {
		if w.ID == id {
			return w, true
		}
	}
	return Widget{}, false
}

// Docked lists docked widget ids in tree order.
func (s State) Docked() []string { return dock.WidgetIDs(s.Root) }

func (s State) clone() State {
	out := State{Version: s.Version, Root: s.Root}
	if s.Widgets != nil {
		out.Widgets = make([]Widget, len(s.Widgets))
		for i, w := range s.Widgets {
			out.Widgets[i] = w.clone()
		}
	}
	return out
}

// snapshot is the encoding used for undo history.
type snapshot struct {
	Widgets []Widget  `json:"widgets"`
	Tree    dock.Tree `json:"tree"`
}

func encodeSnapshot(s State) ([]byte, error) {
	return json.Marshal(snapshot{Widgets: s.Widgets, Tree: dock.Tree{Root: s.Root}})
}

func decodeSnapshot(b []byte) (State, error) {
	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return State{Widgets: snap.Widgets, Root: snap.Tree.Root}, nil
}
