/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dock

import "math"

// Ratios never reach 0 or 1 so no child collapses to nothing.
const (
	minRatio = 0.01
	maxRatio = 0.99
)

// ClampRatio limits r to [0.01, 0.99]. NaN maps to an even split.
func ClampRatio(r float64) float64 {
	if math.IsNaN(r) {
		return 0.5
	}
	return math.Min(maxRatio, math.Max(minRatio, r))
}

// CreateLeaf returns a fresh single-tab leaf.
func CreateLeaf(widgetID string) *Leaf {
	return &Leaf{ID: newNodeID(), WidgetIDs: []string{widgetID}, ActiveWidgetID: widgetID}
}

func newSplit(dir Direction, a, b Node) *Split {
	return &Split{ID: newNodeID(), Direction: dir, Ratio: 0.5, Children: [2]Node{a, b}}
}

func pair(existing, inserted Node, pos Position) (Node, Node) {
	if pos == Start {
		return inserted, existing
	}
	return existing, inserted
}

// SplitRoot docks newLeaf against the edge of the whole tree. An empty tree
// simply becomes newLeaf.
func SplitRoot(root Node, dir Direction, newLeaf *Leaf, pos Position) Node {
	if newLeaf == nil {
		return root
	}
	if root == nil {
		return newLeaf
	}
	a, b := pair(root, newLeaf, pos)
	return newSplit(dir, a, b)
}

// withSplitChildren rebuilds s around new children, collapsing to the
// survivor when one of them disappeared.
func withSplitChildren(s *Split, a, b Node) Node {
	if a == s.Children[0] && b == s.Children[1] {
		return s
	}
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &Split{ID: s.ID, Direction: s.Direction, Ratio: s.Ratio, Children: [2]Node{a, b}}
}

// withoutTab returns l minus widgetID, or nil when it was the last tab. When
// the active tab goes away the tab that slides into its slot becomes active.
func withoutTab(l *Leaf, widgetID string) Node {
	i := l.indexOf(widgetID)
	if i < 0 {
		return l
	}
	if len(l.WidgetIDs) == 1 {
		return nil
	}
	tabs := make([]string, 0, len(l.WidgetIDs)-1)
	tabs = append(tabs, l.WidgetIDs[:i]...)
	tabs = append(tabs, l.WidgetIDs[i+1:]...)
	active := l.ActiveWidgetID
	if active == widgetID {
		active = tabs[min(i, len(tabs)-1)]
	}
	return &Leaf{ID: l.ID, WidgetIDs: tabs, ActiveWidgetID: active}
}

// RemoveLeafByWidgetID removes widgetID from the leaf holding it. Emptied
// leaves vanish and their parent split collapses to the surviving sibling.
// Returns nil only when nothing is left.
func RemoveLeafByWidgetID(n Node, widgetID string) Node {
	return updateLeaf(n, holds(widgetID), func(l *Leaf) Node {
		return withoutTab(l, widgetID)
	})
}

// updateLeaf rebuilds the path to the first leaf matching pred, replacing it
// with fn's result. Untouched subtrees are shared.
func updateLeaf(n Node, pred func(*Leaf) bool, fn func(*Leaf) Node) Node {
	out, _ := mapLeaf(n, pred, fn)
	return out
}

func mapLeaf(n Node, pred func(*Leaf) bool, fn func(*Leaf) Node) (Node, bool) {
	switch v := n.(type) {
	case *Leaf:
		if pred(v) {
			return fn(v), true
		}
		return v, false
	case *Split:
		a, found := mapLeaf(v.Children[0], pred, fn)
		if found {
			return withSplitChildren(v, a, v.Children[1]), true
		}
		b, found := mapLeaf(v.Children[1], pred, fn)
		return withSplitChildren(v, a, b), found
	}
	return n, false
}

func holds(widgetID string) func(*Leaf) bool {
	return func(l *Leaf) bool { return l.Has(widgetID) }
}

func withID(id NodeID) func(*Leaf) bool {
	return func(l *Leaf) bool { return l.ID == id }
}

// InsertSplitAtLeaf replaces the leaf holding targetWidgetID with an even
// split of that leaf and newLeaf.
func InsertSplitAtLeaf(n Node, targetWidgetID string, dir Direction, newLeaf *Leaf, pos Position) Node {
	if newLeaf == nil {
		return n
	}
	return updateLeaf(n, holds(targetWidgetID), func(old *Leaf) Node {
		a, b := pair(old, newLeaf, pos)
		return newSplit(dir, a, b)
	})
}

// MoveLeafToSplit takes movingWidgetID out of wherever it is and places it in
// a new leaf on the given side of the leaf holding targetWidgetID. If the
// target is gone once the moving widget has been removed, the widget stays
// removed.
func MoveLeafToSplit(root Node, movingWidgetID, targetWidgetID string, side Side) Node {
	if movingWidgetID == targetWidgetID {
		return root
	}
	dir, pos := side.Placement()
	without := RemoveLeafByWidgetID(root, movingWidgetID)
	return InsertSplitAtLeaf(without, targetWidgetID, dir, CreateLeaf(movingWidgetID), pos)
}

// reorderTabs returns tabs with widgetID moved or added at index. A negative
// or out of range index appends.
func reorderTabs(tabs []string, widgetID string, index int) []string {
	out := make([]string, 0, len(tabs)+1)
	for _, id := range tabs {
		if id != widgetID {
			out = append(out, id)
		}
	}
	if index < 0 || index > len(out) {
		index = len(out)
	}
	out = append(out, "")
	copy(out[index+1:], out[index:])
	out[index] = widgetID
	return out
}

// insertTab places widgetID at index in l and makes it active.
func insertTab(l *Leaf, widgetID string, index int) Node {
	tabs := reorderTabs(l.WidgetIDs, widgetID, index)
	if l.ActiveWidgetID == widgetID && equalTabs(tabs, l.WidgetIDs) {
		return l
	}
	return &Leaf{ID: l.ID, WidgetIDs: tabs, ActiveWidgetID: widgetID}
}

func equalTabs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// InsertAsTabAtLeaf appends movingID to the tabs of the leaf holding
// targetWidgetID and activates it. It does not remove movingID from any other
// leaf; callers moving a docked widget remove it first.
func InsertAsTabAtLeaf(root Node, targetWidgetID, movingID string) Node {
	return updateLeaf(root, holds(targetWidgetID), func(l *Leaf) Node {
		return insertTab(l, movingID, -1)
	})
}

// UpdateSplitRatio sets the ratio of split splitID. Shape is untouched.
func UpdateSplitRatio(n Node, splitID NodeID, ratio float64) Node {
	s, ok := n.(*Split)
	if !ok {
		return n
	}
	if s.ID == splitID {
		r := ClampRatio(ratio)
		if r == s.Ratio {
			return s
		}
		return &Split{ID: s.ID, Direction: s.Direction, Ratio: r, Children: s.Children}
	}
	a := UpdateSplitRatio(s.Children[0], splitID, ratio)
	if a != s.Children[0] {
		return withSplitChildren(s, a, s.Children[1])
	}
	return withSplitChildren(s, a, UpdateSplitRatio(s.Children[1], splitID, ratio))
}

// UpdateLeafActive activates widgetID in leaf leafID if it is one of its tabs.
func UpdateLeafActive(n Node, leafID NodeID, widgetID string) Node {
	return updateLeaf(n, withID(leafID), func(l *Leaf) Node {
		if !l.Has(widgetID) || l.ActiveWidgetID == widgetID {
			return l
		}
		return &Leaf{ID: l.ID, WidgetIDs: l.WidgetIDs, ActiveWidgetID: widgetID}
	})
}

// MoveTabWithinLeaf reorders widgetID inside leaf leafID. toIndex is clamped
// to the valid range; the active tab does not change.
func MoveTabWithinLeaf(root Node, leafID NodeID, widgetID string, toIndex int) Node {
	return updateLeaf(root, withID(leafID), func(l *Leaf) Node {
		if !l.Has(widgetID) {
			return l
		}
		toIndex = max(0, min(toIndex, len(l.WidgetIDs)-1))
		tabs := reorderTabs(l.WidgetIDs, widgetID, toIndex)
		if equalTabs(tabs, l.WidgetIDs) {
			return l
		}
		return &Leaf{ID: l.ID, WidgetIDs: tabs, ActiveWidgetID: l.ActiveWidgetID}
	})
}

// RemoveTabFromLeaf removes widgetID from leaf leafID only, collapsing the
// leaf and its parent when it empties.
func RemoveTabFromLeaf(root Node, leafID NodeID, widgetID string) Node {
	return updateLeaf(root, withID(leafID), func(l *Leaf) Node {
		return withoutTab(l, widgetID)
	})
}

// InsertTabIntoLeafByID places widgetID at index among the tabs of leaf
// leafID and activates it. A negative index appends.
func InsertTabIntoLeafByID(root Node, leafID NodeID, widgetID string, index int) Node {
	return updateLeaf(root, withID(leafID), func(l *Leaf) Node {
		return insertTab(l, widgetID, index)
	})
}
