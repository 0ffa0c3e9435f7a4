/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"sort"

	"dockspace/internal/dock"
	"dockspace/internal/geom"
	"dockspace/internal/workspace"
)

// LayoutSurfaces derives panel rectangles straight from workspace state:
// the dock tree fills Dock (or all of Bounds when Dock is empty) and floating
// widgets sit at their own geometry. It serves renderers that draw exactly
// that layout.
type LayoutSurfaces struct {
	State  func() workspace.State
	Bounds geom.Rect
	Dock   geom.Rect
}

func (l LayoutSurfaces) Workspace() geom.Rect { return l.Bounds }

func (l LayoutSurfaces) DockRegion() geom.Rect {
	if l.Dock.Empty() {
		return l.Bounds
	}
	return l.Dock
}

// Panels returns embedded floating widgets by descending z, then the active
// tab of every leaf.
func (l LayoutSurfaces) Panels() []Panel {
	st := l.State()
	var floating []workspace.Widget
	for _, w := range st.Widgets {
		if w.Mode == workspace.ModeFloating && w.Host == workspace.HostEmbedded {
			floating = append(floating, w)
		}
	}
	sort.SliceStable(floating, func(i, j int) bool { return floating[i].Z > floating[j].Z })

	out := make([]Panel, 0, len(floating)+4)
	for _, w := range floating {
		out = append(out, Panel{WidgetID: w.ID, Rect: w.Rect(), Pinned: w.Pinned})
	}
	rects := dock.Layout(st.Root, l.DockRegion())
	for _, leaf := range dock.Leaves(st.Root) {
		w, _ := st.Widget(leaf.ActiveWidgetID)
		out = append(out, Panel{
			WidgetID: leaf.ActiveWidgetID,
			LeafID:   leaf.ID,
			Rect:     rects[leaf.ID],
			Docked:   true,
			Pinned:   w.Pinned,
		})
	}
	return out
}
