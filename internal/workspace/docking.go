/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"dockspace/internal/dock"
	"dockspace/internal/geom"
)

// Split ratios set interactively stay within this band.
const (
	MinSplitRatio = 0.15
	MaxSplitRatio = 0.85
)

// DockWidget docks id against an edge of the whole workspace. A widget that
// is already docked is moved there.
func (s *Store) DockWidget(id string, side dock.Side) {
	s.apply("dockWidget", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil || !side.Valid() {
			return false
		}
		t.dockAtEdge(w, side)
		return true
	})
}

// DockIntoLeaf splits the leaf holding targetID and places id on the given
// side of it.
func (s *Store) DockIntoLeaf(id, targetID string, side dock.Side) {
	s.apply("dockIntoLeaf", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil || id == targetID || !side.Valid() || !t.docked(targetID) {
			return false
		}
		t.st.Root = dock.MoveLeafToSplit(t.st.Root, id, targetID, side)
		t.toDock(w)
		return true
	})
}

// DockAsTab adds id as the active tab of the leaf holding targetID.
func (s *Store) DockAsTab(id, targetID string) {
	s.apply("dockAsTab", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil || id == targetID || !t.docked(targetID) {
			return false
		}
		cleaned := dock.RemoveLeafByWidgetID(t.st.Root, id)
		next := dock.InsertAsTabAtLeaf(cleaned, targetID, id)
		if next == t.st.Root && w.Mode == ModeDock && w.Host == HostEmbedded {
			return false
		}
		t.st.Root = next
		t.toDock(w)
		return true
	})
}

// MoveDockedWidget re-splits an already docked widget next to another one.
func (s *Store) MoveDockedWidget(id, targetID string, side dock.Side) {
	s.apply("moveDockedWidget", id, func(t *tx) bool {
		if id == targetID || !side.Valid() || !t.docked(id) || !t.docked(targetID) {
			return false
		}
		next := dock.MoveLeafToSplit(t.st.Root, id, targetID, side)
		if next == t.st.Root {
			return false
		}
		t.st.Root = next
		return true
	})
}

func (s *Store) SetActiveDockTab(leafID dock.NodeID, widgetID string) {
	s.apply("setActiveDockTab", widgetID, func(t *tx) bool {
		next := dock.UpdateLeafActive(t.st.Root, leafID, widgetID)
		if next == t.st.Root {
			return false
		}
		t.st.Root = next
		return true
	})
}

// CloseDockTab closes the widget shown in a tab of leafID.
func (s *Store) CloseDockTab(leafID dock.NodeID, widgetID string) {
	s.apply("closeDockTab", widgetID, func(t *tx) bool {
		l := dock.FindLeaf(t.st.Root, leafID)
		if l == nil || !l.Has(widgetID) {
			return false
		}
		return t.closeWidget(widgetID)
	})
}

func (s *Store) ReorderDockTab(leafID dock.NodeID, widgetID string, toIndex int) {
	s.apply("reorderDockTab", widgetID, func(t *tx) bool {
		next := dock.MoveTabWithinLeaf(t.st.Root, leafID, widgetID, toIndex)
		if next == t.st.Root {
			return false
		}
		t.st.Root = next
		return true
	})
}

// DetachDockTab pulls a tab out of leafID and floats it at the default
// origin.
func (s *Store) DetachDockTab(leafID dock.NodeID, widgetID string) {
	s.apply("detachDockTab", widgetID, func(t *tx) bool {
		l := dock.FindLeaf(t.st.Root, leafID)
		w := t.find(widgetID)
		if l == nil || w == nil || !l.Has(widgetID) {
			return false
		}
		t.toFloating(w, defaultOrigin, defaultOrigin)
		return true
	})
}

// AttachDockTabToLeaf inserts widgetID among the tabs of leafID at index,
// taking it out of wherever it was. A negative index appends.
func (s *Store) AttachDockTabToLeaf(leafID dock.NodeID, widgetID string, index int) {
	s.apply("attachDockTabToLeaf", widgetID, func(t *tx) bool {
		w := t.find(widgetID)
		l := dock.FindLeaf(t.st.Root, leafID)
		if w == nil || l == nil {
			return false
		}
		root := t.st.Root
		if !l.Has(widgetID) {
			root = dock.RemoveLeafByWidgetID(root, widgetID)
			if dock.FindLeaf(root, leafID) == nil {
				return false
			}
		}
		next := dock.InsertTabIntoLeafByID(root, leafID, widgetID, index)
		if next == t.st.Root && w.Mode == ModeDock && w.Host == HostEmbedded {
			return false
		}
		t.st.Root = next
		t.toDock(w)
		return true
	})
}

// SetDockSplitRatio resizes a split. The ratio is kept within
// [MinSplitRatio, MaxSplitRatio].
func (s *Store) SetDockSplitRatio(splitID dock.NodeID, ratio float64) {
	s.apply("setDockSplitRatio", "", func(t *tx) bool {
		next := dock.UpdateSplitRatio(t.st.Root, splitID, geom.Clamp(ratio, MinSplitRatio, MaxSplitRatio))
		if next == t.st.Root {
			return false
		}
		t.st.Root = next
		return true
	})
}

// UndockWidget floats id at the default origin.
func (s *Store) UndockWidget(id string) {
	s.UndockWidgetAt(id, defaultOrigin, defaultOrigin)
}

// UndockWidgetAt removes id from the dock tree and floats it embedded with
// its top-left corner at (x, y), clamped to the workspace origin.
func (s *Store) UndockWidgetAt(id string, x, y float64) {
	s.apply("undockWidgetAt", id, func(t *tx) bool {
		w := t.find(id)
		if w == nil {
			return false
		}
		t.toFloating(w, x, y)
		return true
	})
}
