/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dock

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seqIDs(t *testing.T) {
	t.Helper()
	prev := newNodeID
	n := 0
	newNodeID = func() NodeID {
		n++
		return NodeID(fmt.Sprintf("n%d", n))
	}
	t.Cleanup(func() { newNodeID = prev })
}

func leafOf(ids ...string) *Leaf {
	return &Leaf{ID: NodeID("leaf-" + ids[0]), WidgetIDs: ids, ActiveWidgetID: ids[0]}
}

func TestSplitRoot_EmptyTreeBecomesLeaf(t *testing.T) {
	seqIDs(t)
	l := CreateLeaf("W1")
	root := SplitRoot(nil, Row, l, Start)
	require.Same(t, l, root)
}

func TestSplitRoot_WrapsExistingRoot(t *testing.T) {
	seqIDs(t)
	w1 := CreateLeaf("W1")
	w2 := CreateLeaf("W2")
	root := SplitRoot(w1, Column, w2, Start)
	s, ok := root.(*Split)
	require.True(t, ok)
	assert.Equal(t, Column, s.Direction)
	assert.Equal(t, 0.5, s.Ratio)
	assert.Same(t, w2, s.Children[0])
	assert.Same(t, w1, s.Children[1])
}

func TestInsertSplitAtLeaf_ColumnEnd(t *testing.T) {
	seqIDs(t)
	w1 := CreateLeaf("W1")
	w2 := CreateLeaf("W2")
	root := InsertSplitAtLeaf(w1, "W1", Column, w2, End)
	s, ok := root.(*Split)
	require.True(t, ok)
	assert.Equal(t, Column, s.Direction)
	assert.Equal(t, 0.5, s.Ratio)
	assert.Same(t, w1, s.Children[0])
	assert.Same(t, w2, s.Children[1])
}

func TestInsertSplitAtLeaf_MissingTargetIsNoop(t *testing.T) {
	seqIDs(t)
	root := SplitRoot(CreateLeaf("A"), Row, CreateLeaf("B"), End)
	assert.Same(t, root, InsertSplitAtLeaf(root, "zzz", Row, CreateLeaf("C"), End))
}

func TestRemoveLeafByWidgetID_CollapsesSplit(t *testing.T) {
	seqIDs(t)
	w1 := CreateLeaf("W1")
	root := SplitRoot(w1, Row, CreateLeaf("W2"), End)
	assert.Same(t, w1, RemoveLeafByWidgetID(root, "W2"))
	assert.Nil(t, RemoveLeafByWidgetID(w1, "W1"))
}

func TestRemoveLeafByWidgetID_SharesUntouchedSubtrees(t *testing.T) {
	seqIDs(t)
	left := SplitRoot(CreateLeaf("A"), Column, CreateLeaf("B"), End)
	right := SplitRoot(CreateLeaf("C"), Column, CreateLeaf("D"), End)
	root := &Split{ID: "root", Direction: Row, Ratio: 0.3, Children: [2]Node{left, right}}

	assert.Same(t, root, RemoveLeafByWidgetID(root, "nope"))

	next := RemoveLeafByWidgetID(root, "D").(*Split)
	assert.NotSame(t, root, next)
	assert.Equal(t, NodeID("root"), next.ID)
	assert.Equal(t, 0.3, next.Ratio)
	assert.Same(t, left, next.Children[0])
	assert.Equal(t, []string{"C"}, next.Children[1].(*Leaf).WidgetIDs)
	// input untouched
	assert.Equal(t, []string{"A", "B", "C", "D"}, WidgetIDs(root))
}

func TestRemoveLeafByWidgetID_ActiveTabFallsToNeighbour(t *testing.T) {
	l := &Leaf{ID: "l", WidgetIDs: []string{"A", "B", "C"}, ActiveWidgetID: "C"}
	next := RemoveLeafByWidgetID(l, "C").(*Leaf)
	assert.Equal(t, []string{"A", "B"}, next.WidgetIDs)
	assert.Equal(t, "B", next.ActiveWidgetID)

	l.ActiveWidgetID = "A"
	next = RemoveLeafByWidgetID(l, "A").(*Leaf)
	assert.Equal(t, "B", next.ActiveWidgetID)

	next = RemoveLeafByWidgetID(l, "B").(*Leaf)
	assert.Equal(t, "A", next.ActiveWidgetID)
	assert.Equal(t, []string{"A", "B", "C"}, l.WidgetIDs)
}

func TestMoveTabWithinLeaf(t *testing.T) {
	l := &Leaf{ID: "L", WidgetIDs: []string{"A", "B", "C"}, ActiveWidgetID: "B"}
	next := MoveTabWithinLeaf(l, "L", "A", 2).(*Leaf)
	assert.Equal(t, []string{"B", "C", "A"}, next.WidgetIDs)
	assert.Equal(t, "B", next.ActiveWidgetID)

	clamped := MoveTabWithinLeaf(l, "L", "C", -5).(*Leaf)
	assert.Equal(t, []string{"C", "A", "B"}, clamped.WidgetIDs)

	clamped = MoveTabWithinLeaf(l, "L", "A", 99).(*Leaf)
	assert.Equal(t, []string{"B", "C", "A"}, clamped.WidgetIDs)

	assert.Same(t, l, MoveTabWithinLeaf(l, "L", "B", 1))
	assert.Same(t, l, MoveTabWithinLeaf(l, "L", "X", 0))
	assert.Same(t, l, MoveTabWithinLeaf(l, "other", "A", 2))
}

func TestMoveLeafToSplit(t *testing.T) {
	seqIDs(t)
	root := SplitRoot(CreateLeaf("A"), Row, CreateLeaf("B"), End)
	root = SplitRoot(root, Column, CreateLeaf("C"), End)

	assert.Same(t, root, MoveLeafToSplit(root, "A", "A", Left))

	next := MoveLeafToSplit(root, "C", "A", Left)
	require.NoError(t, Validate(next))
	s := next.(*Split)
	assert.Equal(t, Row, s.Direction)
	inner := s.Children[0].(*Split)
	assert.Equal(t, Row, inner.Direction)
	assert.Equal(t, []string{"C"}, inner.Children[0].(*Leaf).WidgetIDs)
	assert.Equal(t, []string{"A"}, inner.Children[1].(*Leaf).WidgetIDs)
	assert.Equal(t, []string{"C", "A", "B"}, WidgetIDs(next))
}

func TestMoveLeafToSplit_Sides(t *testing.T) {
	cases := []struct {
		side  Side
		dir   Direction
		first string
	}{
		{Left, Row, "W"},
		{Right, Row, "T"},
		{Top, Column, "W"},
		{Bottom, Column, "T"},
	}
	for _, tc := range cases {
		t.Run(string(tc.side), func(t *testing.T) {
			seqIDs(t)
			root := SplitRoot(CreateLeaf("T"), Row, CreateLeaf("W"), End)
			next := MoveLeafToSplit(root, "W", "T", tc.side)
			s, ok := next.(*Split)
			require.True(t, ok)
			assert.Equal(t, tc.dir, s.Direction)
			assert.Equal(t, 0.5, s.Ratio)
			assert.Equal(t, tc.first, s.Children[0].(*Leaf).WidgetIDs[0])
		})
	}
}

func TestInsertAsTabAtLeaf(t *testing.T) {
	seqIDs(t)
	l := &Leaf{ID: "L", WidgetIDs: []string{"A", "B"}, ActiveWidgetID: "A"}
	next := InsertAsTabAtLeaf(l, "B", "C").(*Leaf)
	assert.Equal(t, []string{"A", "B", "C"}, next.WidgetIDs)
	assert.Equal(t, "C", next.ActiveWidgetID)

	again := InsertAsTabAtLeaf(next, "A", "C")
	assert.Same(t, next, again)

	moved := InsertAsTabAtLeaf(next, "A", "A").(*Leaf)
	assert.Equal(t, []string{"B", "C", "A"}, moved.WidgetIDs)
	assert.Equal(t, "A", moved.ActiveWidgetID)

	assert.Same(t, l, InsertAsTabAtLeaf(l, "missing", "C"))
}

func TestUpdateSplitRatio(t *testing.T) {
	seqIDs(t)
	root := SplitRoot(CreateLeaf("A"), Row, CreateLeaf("B"), End).(*Split)
	next := UpdateSplitRatio(root, root.ID, 0.7).(*Split)
	assert.Equal(t, 0.7, next.Ratio)
	assert.Same(t, root.Children[0], next.Children[0])
	assert.Equal(t, 0.5, root.Ratio)

	assert.Equal(t, 0.99, UpdateSplitRatio(root, root.ID, 5).(*Split).Ratio)
	assert.Equal(t, 0.01, UpdateSplitRatio(root, root.ID, -1).(*Split).Ratio)
	assert.Same(t, root, UpdateSplitRatio(root, "missing", 0.2))
	assert.Same(t, root, UpdateSplitRatio(root, root.ID, 0.5))
}

func TestUpdateLeafActive(t *testing.T) {
	l := &Leaf{ID: "L", WidgetIDs: []string{"A", "B"}, ActiveWidgetID: "A"}
	assert.Equal(t, "B", UpdateLeafActive(l, "L", "B").(*Leaf).ActiveWidgetID)
	assert.Same(t, l, UpdateLeafActive(l, "L", "Z"))
	assert.Same(t, l, UpdateLeafActive(l, "L", "A"))
}

func TestRemoveTabFromLeafAndInsertByID(t *testing.T) {
	seqIDs(t)
	a := &Leaf{ID: "LA", WidgetIDs: []string{"A1", "A2"}, ActiveWidgetID: "A1"}
	b := &Leaf{ID: "LB", WidgetIDs: []string{"B1"}, ActiveWidgetID: "B1"}
	root := Node(&Split{ID: "S", Direction: Row, Ratio: 0.5, Children: [2]Node{a, b}})

	root = RemoveTabFromLeaf(root, "LB", "B1")
	require.IsType(t, &Leaf{}, root)
	assert.Equal(t, NodeID("LA"), root.NodeID())

	root = InsertTabIntoLeafByID(root, "LA", "B1", 0)
	l := root.(*Leaf)
	assert.Equal(t, []string{"B1", "A1", "A2"}, l.WidgetIDs)
	assert.Equal(t, "B1", l.ActiveWidgetID)

	root = InsertTabIntoLeafByID(root, "LA", "X", -1)
	assert.Equal(t, []string{"B1", "A1", "A2", "X"}, root.(*Leaf).WidgetIDs)

	assert.Same(t, root, RemoveTabFromLeaf(root, "LA", "nope"))
	assert.Same(t, root, RemoveTabFromLeaf(root, "other", "X"))
}

func TestRemoveThenInsertPlacesWidgetNextToTarget(t *testing.T) {
	seqIDs(t)
	var root Node
	for _, id := range []string{"A", "B", "C", "D"} {
		root = SplitRoot(root, Row, CreateLeaf(id), End)
	}
	for _, side := range []Side{Left, Right, Top, Bottom} {
		dir, pos := side.Placement()
		next := InsertSplitAtLeaf(RemoveLeafByWidgetID(root, "B"), "D", dir, CreateLeaf("B"), pos)
		require.NoError(t, Validate(next))
		var parent *Split
		Walk(next, func(n Node) bool {
			if s, ok := n.(*Split); ok {
				for _, c := range s.Children {
					if l, ok := c.(*Leaf); ok && l.Has("B") {
						parent = s
					}
				}
			}
			return true
		})
		require.NotNil(t, parent, side)
		assert.Equal(t, dir, parent.Direction)
		first, second := parent.Children[0].(*Leaf), parent.Children[1].(*Leaf)
		if pos == Start {
			assert.Equal(t, "B", first.WidgetIDs[0])
			assert.Equal(t, "D", second.WidgetIDs[0])
		} else {
			assert.Equal(t, "D", first.WidgetIDs[0])
			assert.Equal(t, "B", second.WidgetIDs[0])
		}
	}
}

func TestRandomOperationsStayWellFormed(t *testing.T) {
	seqIDs(t)
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "d", "e", "f"}
	sides := []Side{Left, Right, Top, Bottom}
	var root Node
	for i := 0; i < 2000; i++ {
		w := ids[rng.Intn(len(ids))]
		o := ids[rng.Intn(len(ids))]
		switch rng.Intn(7) {
		case 0:
			root = SplitRoot(RemoveLeafByWidgetID(root, w), Row, CreateLeaf(w), Position([]string{"start", "end"}[rng.Intn(2)]))
		case 1:
			root = RemoveLeafByWidgetID(root, w)
		case 2:
			root = MoveLeafToSplit(root, w, o, sides[rng.Intn(4)])
		case 3:
			if FindLeafByWidget(root, o) != nil {
				root = InsertAsTabAtLeaf(RemoveLeafByWidgetID(root, w), o, w)
			}
		case 4:
			if l := FindLeafByWidget(root, w); l != nil {
				root = MoveTabWithinLeaf(root, l.ID, w, rng.Intn(5)-1)
			}
		case 5:
			Walk(root, func(n Node) bool {
				if s, ok := n.(*Split); ok {
					root = UpdateSplitRatio(root, s.ID, rng.Float64()*1.4-0.2)
					return false
				}
				return true
			})
		case 6:
			if l := FindLeafByWidget(root, w); l != nil {
				root = RemoveTabFromLeaf(root, l.ID, w)
			}
		}
		require.NoError(t, Validate(root), "step %d", i)
	}
}

func TestTreeJSON(t *testing.T) {
	seqIDs(t)
	root := SplitRoot(leafOf("A", "B"), Column, CreateLeaf("C"), Start)
	b, err := Tree{Root: root}.MarshalJSON()
	require.NoError(t, err)

	var back Tree
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, root, back.Root)

	var empty Tree
	require.NoError(t, empty.UnmarshalJSON([]byte(`{"root":null}`)))
	assert.Nil(t, empty.Root)
	assert.Error(t, empty.UnmarshalJSON([]byte(`{"root":{"id":"x","kind":"split","children":[]}}`)))
}
