/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"dockspace/internal/dock"
	"dockspace/internal/geom"
)

// Panel is the on-screen rectangle of one visible widget as reported by the
// presentation layer.
type Panel struct {
	WidgetID string
	// LeafID is set for docked panels.
	LeafID dock.NodeID
	Rect   geom.Rect
	Docked bool
	Pinned bool
}

// IntentKind is what releasing the pointer right now would do.
type IntentKind int

const (
	IntentNone IntentKind = iota
	// IntentDockEdge docks against an edge of the whole workspace.
	IntentDockEdge
	// IntentSplitPanel splits the target panel on Side.
	IntentSplitPanel
	// IntentAddTab adds the dragged widget as a tab of the target panel.
	IntentAddTab
)

func (k IntentKind) String() string {
	switch k {
	case IntentDockEdge:
		return "dock-edge"
	case IntentSplitPanel:
		return "split-panel"
	case IntentAddTab:
		return "add-tab"
	default:
		return "none"
	}
}

// Intent is a provisional drop action with the preview to draw for it.
// Preview is the area affected and Highlight the part the dragged widget
// would occupy.
type Intent struct {
	Kind      IntentKind
	Side      dock.Side
	TargetID  string
	Preview   geom.Rect
	Highlight geom.Rect
}

// edgeOrder breaks ties between equally close edges.
var edgeOrder = [4]dock.Side{dock.Left, dock.Right, dock.Top, dock.Bottom}

// nearestEdge returns the edge of r closest to p when it is within
// threshold. p may lie slightly outside r.
func nearestEdge(r geom.Rect, p geom.Pt, threshold float64) (dock.Side, bool) {
	l, rt, t, b := r.EdgeDistances(p)
	dists := [4]float64{l, rt, t, b}
	best, bestDist := -1, threshold
	for i, d := range dists {
		if d < 0 {
			d = -d
		}
		if d <= bestDist {
			if best < 0 || d < bestDist {
				best, bestDist = i, d
			}
		}
	}
	if best < 0 {
		return "", false
	}
	return edgeOrder[best], true
}

// half returns the half of r on side, which is where a new leaf lands after
// an even split.
func half(r geom.Rect, side dock.Side) geom.Rect {
	switch side {
	case dock.Left:
		return geom.R(r.X, r.Y, r.W/2, r.H)
	case dock.Right:
		return geom.R(r.X+r.W/2, r.Y, r.W/2, r.H)
	case dock.Top:
		return geom.R(r.X, r.Y, r.W, r.H/2)
	default:
		return geom.R(r.X, r.Y+r.H/2, r.W, r.H/2)
	}
}

// HitTest returns the topmost panel under p, skipping draggedID. panels must
// be ordered topmost first.
func HitTest(p geom.Pt, panels []Panel, draggedID string) (Panel, bool) {
	for _, pn := range panels {
		if pn.WidgetID == draggedID {
			continue
		}
		if pn.Rect.Contains(p) {
			return pn, true
		}
	}
	return Panel{}, false
}

// Resolve computes the intent for a pointer at p while draggedID is being
// dragged. A docked panel under the pointer wins over the workspace edges;
// a floating panel under the pointer is not a dock target and yields none.
func Resolve(p geom.Pt, panels []Panel, workspace geom.Rect, draggedID string, cfg Config) Intent {
	if pn, ok := HitTest(p, panels, draggedID); ok {
		if !pn.Docked {
			return Intent{}
		}
		if side, ok := nearestEdge(pn.Rect, p, cfg.PanelSnapThreshold); ok {
			return Intent{
				Kind:      IntentSplitPanel,
				Side:      side,
				TargetID:  pn.WidgetID,
				Preview:   pn.Rect,
				Highlight: half(pn.Rect, side),
			}
		}
		return Intent{
			Kind:      IntentAddTab,
			TargetID:  pn.WidgetID,
			Preview:   pn.Rect,
			Highlight: pn.Rect.Inset(pn.Rect.W/4, pn.Rect.H/4),
		}
	}
	if workspace.Empty() || workspace.OutsideBy(p) > cfg.DockSnapThreshold {
		return Intent{}
	}
	if side, ok := nearestEdge(workspace, p, cfg.DockSnapThreshold); ok {
		return Intent{
			Kind:      IntentDockEdge,
			Side:      side,
			Preview:   workspace,
			Highlight: half(workspace, side),
		}
	}
	return Intent{}
}
