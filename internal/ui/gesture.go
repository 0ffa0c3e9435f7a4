/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"dockspace/internal/dock"
	"dockspace/internal/geom"
	"dockspace/internal/snap"
)

// Chrome metrics in device independent pixels.
const (
	HeaderHeight = 28
	DividerGrip  = 4
	ResizeGrip   = 14
)

// TargetKind is the part of the workspace a press landed on.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetHeader
	TargetBody
	TargetDivider
	TargetResize
)

type Target struct {
	Kind     TargetKind
	WidgetID string
	// Split and Rect are set for TargetDivider.
	Split *dock.Split
	Rect  geom.Rect
}

// HeaderRect is the drag handle strip at the top of a panel.
func HeaderRect(r geom.Rect) geom.Rect {
	h := float64(HeaderHeight)
	if r.H < h {
		h = r.H
	}
	return geom.R(r.X, r.Y, r.W, h)
}

func resizeRect(r geom.Rect) geom.Rect {
	return geom.R(r.X+r.W-ResizeGrip, r.Y+r.H-ResizeGrip, ResizeGrip, ResizeGrip)
}

// DividerRect is the grab zone between the two children of s laid out in r.
func DividerRect(s *dock.Split, r geom.Rect) geom.Rect {
	a, _ := dock.SplitRects(s, r)
	if s.Direction == dock.Row {
		return geom.R(a.X+a.W-DividerGrip, r.Y, 2*DividerGrip, r.H)
	}
	return geom.R(r.X, a.Y+a.H-DividerGrip, r.W, 2*DividerGrip)
}

// Pick finds what p hits. Floating panels sit above the dock, and dividers
// take precedence over the leaves they separate.
func Pick(surf snap.LayoutSurfaces, p geom.Pt) Target {
	panels := surf.Panels()
	for _, pn := range panels {
		if pn.Docked || !pn.Rect.Contains(p) {
			continue
		}
		switch {
		case resizeRect(pn.Rect).Contains(p):
			return Target{Kind: TargetResize, WidgetID: pn.WidgetID}
		case HeaderRect(pn.Rect).Contains(p):
			return Target{Kind: TargetHeader, WidgetID: pn.WidgetID}
		default:
			return Target{Kind: TargetBody, WidgetID: pn.WidgetID}
		}
	}

	st := surf.State()
	rects := dock.Layout(st.Root, surf.DockRegion())
	var hit Target
	dock.Walk(st.Root, func(n dock.Node) bool {
		s, ok := n.(*dock.Split)
		if !ok {
			return true
		}
		if r := rects[s.ID]; DividerRect(s, r).Contains(p) {
			hit = Target{Kind: TargetDivider, Split: s, Rect: r}
			return false
		}
		return true
	})
	if hit.Kind != TargetNone {
		return hit
	}

	for _, pn := range panels {
		if !pn.Docked || !pn.Rect.Contains(p) {
			continue
		}
		if HeaderRect(pn.Rect).Contains(p) {
			return Target{Kind: TargetHeader, WidgetID: pn.WidgetID}
		}
		return Target{Kind: TargetBody, WidgetID: pn.WidgetID}
	}
	return Target{}
}

// Begin starts the drag session matching t. Bodies never start one.
func Begin(c *snap.Controller, t Target, ev snap.PointerDown) bool {
	switch t.Kind {
	case TargetHeader:
		return c.BeginMove(t.WidgetID, ev)
	case TargetDivider:
		return c.BeginSplitResize(t.Split, t.Rect, ev)
	case TargetResize:
		return c.BeginResize(t.WidgetID, ev)
	}
	return false
}
