/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dock implements the dock tree: an immutable binary tree of splits
// and tabbed leaves describing how docked widgets share the workspace.
//
// Every function in this package is pure. Inputs are never mutated and a
// function that changes nothing returns the very node it was given, so callers
// can detect no-ops with ==. Searches visit the first child of a split before
// the second.
package dock

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// NodeID identifies a node for its whole lifetime.
type NodeID string

// Direction is the axis a split divides along: row places children side by
// side, column stacks them.
type Direction string

const (
	Row    Direction = "row"
	Column Direction = "column"
)

// Position selects whether an inserted node comes first or last in a split.
type Position string

const (
	Start Position = "start"
	End   Position = "end"
)

// Side is an edge of a panel or of the workspace.
type Side string

const (
	Left   Side = "left"
	Right  Side = "right"
	Top    Side = "top"
	Bottom Side = "bottom"
)

func (s Side) Valid() bool {
	switch s {
	case Left, Right, Top, Bottom:
		return true
	}
	return false
}

// Placement maps a side to the split direction and child position that put a
// new node on that side: left/right split a row, top/bottom a column, and
// left/top insert first.
func (s Side) Placement() (Direction, Position) {
	dir := Row
	if s == Top || s == Bottom {
		dir = Column
	}
	pos := End
	if s == Left || s == Top {
		pos = Start
	}
	return dir, pos
}

// Node is either a *Leaf or a *Split.
type Node interface {
	NodeID() NodeID
	isNode()
}

// Leaf holds one or more widgets as tabs. WidgetIDs is in display order and
// ActiveWidgetID is always one of them.
type Leaf struct {
	ID             NodeID
	WidgetIDs      []string
	ActiveWidgetID string
}

// Split divides its area between exactly two children. Ratio is the share of
// the first child and lies strictly between 0 and 1.
type Split struct {
	ID        NodeID
	Direction Direction
	Ratio     float64
	Children  [2]Node
}

func (l *Leaf) NodeID() NodeID  { return l.ID }
func (s *Split) NodeID() NodeID { return s.ID }
func (*Leaf) isNode()           {}
func (*Split) isNode()          {}

// Has reports whether widgetID is one of the leaf's tabs.
func (l *Leaf) Has(widgetID string) bool { return l.indexOf(widgetID) >= 0 }

func (l *Leaf) indexOf(widgetID string) int {
	for i, id := range l.WidgetIDs {
		if id == widgetID {
			return i
		}
	}
	return -1
}

var newNodeID = func() NodeID { return NodeID(uuid.NewString()) }

// Walk visits n depth-first, first child before second. Returning false from
// fn stops the walk.
func Walk(n Node, fn func(Node) bool) bool {
	switch v := n.(type) {
	case *Leaf:
		return fn(v)
	case *Split:
		if !fn(v) {
			return false
		}
		return Walk(v.Children[0], fn) && Walk(v.Children[1], fn)
	}
	return true
}

// FindLeafByWidget returns the leaf holding widgetID, or nil.
func FindLeafByWidget(n Node, widgetID string) *Leaf {
	var found *Leaf
	Walk(n, func(x Node) bool {
		if l, ok := x.(*Leaf); ok && l.Has(widgetID) {
			found = l
			return false
		}
		return true
	})
	return found
}

// FindLeaf returns the leaf with the given id, or nil.
func FindLeaf(n Node, id NodeID) *Leaf {
	var found *Leaf
	Walk(n, func(x Node) bool {
		if l, ok := x.(*Leaf); ok && l.ID == id {
			found = l
			return false
		}
		return true
	})
	return found
}

// FindSplit returns the split with the given id, or nil.
func FindSplit(n Node, id NodeID) *Split {
	var found *Split
	Walk(n, func(x Node) bool {
		if s, ok := x.(*Split); ok && s.ID == id {
			found = s
			return false
		}
		return true
	})
	return found
}

// WidgetIDs lists every docked widget in tree order.
func WidgetIDs(n Node) []string {
	var out []string
	Walk(n, func(x Node) bool {
		if l, ok := x.(*Leaf); ok {
			out = append(out, l.WidgetIDs...)
		}
		return true
	})
	return out
}

// Leaves lists every leaf in tree order.
func Leaves(n Node) []*Leaf {
	var out []*Leaf
	Walk(n, func(x Node) bool {
		if l, ok := x.(*Leaf); ok {
			out = append(out, l)
		}
		return true
	})
	return out
}

// Validate checks the structural invariants of a tree: every split has two
// children and a ratio in (0,1), every leaf has at least one tab, no widget
// appears twice and each leaf's active tab is one of its own.
func Validate(n Node) error {
	seen := map[string]NodeID{}
	var check func(Node) error
	check = func(x Node) error {
		switch v := x.(type) {
		case nil:
			return errors.New("nil child")
		case *Leaf:
			if len(v.WidgetIDs) == 0 {
				return fmt.Errorf("leaf %s has no tabs", v.ID)
			}
			for _, id := range v.WidgetIDs {
				if prev, dup := seen[id]; dup {
					return fmt.Errorf("widget %s appears in leaf %s and %s", id, prev, v.ID)
				}
				seen[id] = v.ID
			}
			if !v.Has(v.ActiveWidgetID) {
				return fmt.Errorf("leaf %s: active tab %q is not a member", v.ID, v.ActiveWidgetID)
			}
		case *Split:
			if !(v.Ratio > 0 && v.Ratio < 1) {
				return fmt.Errorf("split %s: ratio %v out of range", v.ID, v.Ratio)
			}
			if v.Direction != Row && v.Direction != Column {
				return fmt.Errorf("split %s: unknown direction %q", v.ID, v.Direction)
			}
			for _, c := range v.Children {
				if err := check(c); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("unknown node type %T", x)
		}
		return nil
	}
	if n == nil {
		return nil
	}
	return check(n)
}

// Tree wraps an optional root. A nil root means nothing is docked.
type Tree struct {
	Root Node
}

type nodeJSON struct {
	ID             NodeID            `json:"id"`
	Kind           string            `json:"kind"`
	WidgetIDs      []string          `json:"widgetIds,omitempty"`
	ActiveWidgetID string            `json:"activeWidgetId,omitempty"`
	Direction      Direction         `json:"direction,omitempty"`
	Ratio          float64           `json:"ratio,omitempty"`
	Children       []json.RawMessage `json:"children,omitempty"`
}

func (t Tree) MarshalJSON() ([]byte, error) {
	root, err := encodeNode(t.Root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Root json.RawMessage `json:"root"`
	}{root})
}

func (t *Tree) UnmarshalJSON(b []byte) error {
	var raw struct {
		Root json.RawMessage `json:"root"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	root, err := decodeNode(raw.Root)
	if err != nil {
		return err
	}
	t.Root = root
	return nil
}

func encodeNode(n Node) (json.RawMessage, error) {
	switch v := n.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case *Leaf:
		return json.Marshal(nodeJSON{ID: v.ID, Kind: "leaf", WidgetIDs: v.WidgetIDs, ActiveWidgetID: v.ActiveWidgetID})
	case *Split:
		out := nodeJSON{ID: v.ID, Kind: "split", Direction: v.Direction, Ratio: v.Ratio}
		for _, c := range v.Children {
			raw, err := encodeNode(c)
			if err != nil {
				return nil, err
			}
			out.Children = append(out.Children, raw)
		}
		return json.Marshal(out)
	}
	return nil, fmt.Errorf("dock: cannot encode %T", n)
}

func decodeNode(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var nj nodeJSON
	if err := json.Unmarshal(raw, &nj); err != nil {
		return nil, err
	}
	switch nj.Kind {
	case "leaf":
		return &Leaf{ID: nj.ID, WidgetIDs: nj.WidgetIDs, ActiveWidgetID: nj.ActiveWidgetID}, nil
	case "split":
		if len(nj.Children) != 2 {
			return nil, fmt.Errorf("dock: split %s has %d children", nj.ID, len(nj.Children))
		}
		s := &Split{ID: nj.ID, Direction: nj.Direction, Ratio: nj.Ratio}
		for i, c := range nj.Children {
			child, err := decodeNode(c)
			if err != nil {
				return nil, err
			}
			if child == nil {
				return nil, fmt.Errorf("dock: split %s has a null child", nj.ID)
			}
			s.Children[i] = child
		}
		return s, nil
	}
	return nil, fmt.Errorf("dock: unknown node kind %q", nj.Kind)
}
