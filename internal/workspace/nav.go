/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"slices"

	"dockspace/internal/module"
)

// normalizeNavLinks repairs parent/child links between widgets and nav
// aggregators. ParentGroupID is authoritative; ChildIDs only contributes
// ordering. A link survives only when the parent exists, is nav capable and
// is not the child itself, and nav widgets never nest. Non-nav widgets carry
// no ChildIDs.
func normalizeNavLinks(widgets []Widget) []Widget {
	byID := make(map[string]int, len(widgets))
	for i, w := range widgets {
		byID[w.ID] = i
	}
	isNav := func(id string) bool {
		i, ok := byID[id]
		return ok && module.IsNavCapable(widgets[i].ModuleID)
	}
	children := map[string][]string{}
	for i := range widgets {
		w := &widgets[i]
		p := w.ParentGroupID
		if p == "" {
			continue
		}
		if p == w.ID || !isNav(p) || module.IsNavCapable(w.ModuleID) {
			w.ParentGroupID = ""
			continue
		}
		children[p] = append(children[p], w.ID)
	}
	for i := range widgets {
		w := &widgets[i]
		if !module.IsNavCapable(w.ModuleID) {
			w.ChildIDs = nil
			continue
		}
		actual := children[w.ID]
		ordered := make([]string, 0, len(actual))
		for _, c := range w.ChildIDs {
			if slices.Contains(actual, c) && !slices.Contains(ordered, c) {
				ordered = append(ordered, c)
			}
		}
		for _, c := range actual {
			if !slices.Contains(ordered, c) {
				ordered = append(ordered, c)
			}
		}
		if len(ordered) == 0 {
			ordered = nil
		}
		w.ChildIDs = ordered
	}
	return widgets
}

// AttachToNav makes childID a child of the nav aggregator navID at index.
// A negative or out of range index appends.
func (s *Store) AttachToNav(childID, navID string, index int) {
	s.apply("attachToNav", childID, func(t *tx) bool {
		c, n := t.find(childID), t.find(navID)
		if c == nil || n == nil || childID == navID ||
			!module.IsNavCapable(n.ModuleID) || module.IsNavCapable(c.ModuleID) {
			return false
		}
		if c.ParentGroupID == navID {
			cur := slices.Index(n.ChildIDs, childID)
			if cur == index || ((index < 0 || index >= len(n.ChildIDs)) && cur == len(n.ChildIDs)-1) {
				return false
			}
		}
		if old := t.find(c.ParentGroupID); old != nil && old.ID != navID {
			old.ChildIDs = slices.DeleteFunc(old.ChildIDs, func(id string) bool { return id == childID })
		}
		c.ParentGroupID = navID
		kids := slices.DeleteFunc(n.ChildIDs, func(id string) bool { return id == childID })
		if index < 0 || index > len(kids) {
			index = len(kids)
		}
		n.ChildIDs = slices.Insert(kids, index, childID)
		return true
	})
}

// DetachFromNav removes childID from its aggregator.
func (s *Store) DetachFromNav(childID string) {
	s.apply("detachFromNav", childID, func(t *tx) bool {
		c := t.find(childID)
		if c == nil || c.ParentGroupID == "" {
			return false
		}
		c.ParentGroupID = ""
		return true
	})
}

// AddToNav creates a floating widget for moduleID inside the aggregator
// navID and returns its id, or "" when navID is not an aggregator.
func (s *Store) AddToNav(moduleID module.ID, navID string) string {
	var id string
	s.apply("addToNav", navID, func(t *tx) bool {
		n := t.find(navID)
		if n == nil || !module.Known(moduleID) || module.IsNavCapable(moduleID) || !module.IsNavCapable(n.ModuleID) {
			return false
		}
		id = t.s.newID()
		w := t.newWidget(moduleID, id)
		w.ParentGroupID = navID
		t.st.Widgets = append(t.st.Widgets, w)
		n = t.find(navID)
		n.ChildIDs = append(n.ChildIDs, id)
		return true
	})
	return id
}
