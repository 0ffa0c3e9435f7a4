/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dock

import "dockspace/internal/geom"

// Layout assigns a rectangle to every node of the tree laid out in bounds.
// The first child of a split gets Ratio of the extent and the second child
// the remainder, so children always tile their parent exactly.
func Layout(root Node, bounds geom.Rect) map[NodeID]geom.Rect {
	out := map[NodeID]geom.Rect{}
	layoutNode(root, bounds, out)
	return out
}

func layoutNode(n Node, r geom.Rect, out map[NodeID]geom.Rect) {
	switch v := n.(type) {
	case *Leaf:
		out[v.ID] = r
	case *Split:
		out[v.ID] = r
		a, b := SplitRects(v, r)
		layoutNode(v.Children[0], a, out)
		layoutNode(v.Children[1], b, out)
	}
}

// SplitRects divides r between the two children of s.
func SplitRects(s *Split, r geom.Rect) (geom.Rect, geom.Rect) {
	if s.Direction == Row {
		w := r.W * s.Ratio
		return geom.R(r.X, r.Y, w, r.H), geom.R(r.X+w, r.Y, r.W-w, r.H)
	}
	h := r.H * s.Ratio
	return geom.R(r.X, r.Y, r.W, h), geom.R(r.X, r.Y+h, r.W, r.H-h)
}

// RatioAt converts a pointer position inside a split's rectangle into the
// ratio that would put the divider under the pointer.
func RatioAt(s *Split, r geom.Rect, p geom.Pt) float64 {
	if s.Direction == Row {
		if r.W <= 0 {
			return s.Ratio
		}
		return (p.X - r.X) / r.W
	}
	if r.H <= 0 {
		return s.Ratio
	}
	return (p.Y - r.Y) / r.H
}

// LeafAt returns the leaf whose rectangle contains p, or nil.
func LeafAt(root Node, bounds geom.Rect, p geom.Pt) *Leaf {
	if !bounds.Contains(p) {
		return nil
	}
	switch v := root.(type) {
	case *Leaf:
		return v
	case *Split:
		a, b := SplitRects(v, bounds)
		if a.Contains(p) {
			return LeafAt(v.Children[0], a, p)
		}
		return LeafAt(v.Children[1], b, p)
	}
	return nil
}
