/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"log/slog"

	"dockspace/internal/dock"
	"dockspace/internal/geom"
	applog "dockspace/internal/log"
	"dockspace/internal/workspace"
)

// Phase is the state of the drag state machine.
type Phase int

const (
	Idle Phase = iota
	// Pending: button down, pointer has not moved past DragThreshold.
	Pending
	// Dragging: an intent is recomputed on every move.
	Dragging
	// Committed: the pointer was released and the command is being issued.
	Committed
)

func (p Phase) String() string {
	return [...]string{"idle", "pending", "dragging", "committed"}[p]
}

// Kind is what a session manipulates.
type Kind int

const (
	MoveFloating Kind = iota
	MoveDocked
	SplitResize
	FloatResize
)

func (k Kind) String() string {
	return [...]string{"move-floating", "move-docked", "split-resize", "float-resize"}[k]
}

// Button identifies a pointer button. Only Primary starts a session.
type Button int

const (
	Primary Button = iota
	Middle
	Secondary
)

// PointerDown is a press on a panel header, divider or resize grip. Chain is
// the pressed element and its ancestors.
type PointerDown struct {
	Pos    geom.Pt
	Button Button
	Chain  []Element
}

// Surfaces reports what is on screen right now.
type Surfaces interface {
	// Panels lists the visible panels, topmost first.
	Panels() []Panel
	// Workspace is the bounds of the whole workspace surface.
	Workspace() geom.Rect
	// DockRegion is the area the dock tree is laid out in.
	DockRegion() geom.Rect
}

// Commander receives the commands a drag produces. *workspace.Store
// implements it.
type Commander interface {
	DockWidget(id string, side dock.Side)
	DockIntoLeaf(id, targetID string, side dock.Side)
	DockAsTab(id, targetID string)
	UndockWidgetAt(id string, x, y float64)
	UpdateWidget(id string, patch workspace.Patch)
	BringToFront(id string)
	SetDockSplitRatio(splitID dock.NodeID, ratio float64)
}

// EventSink receives anonymous usage events. *telemetry.Client implements it.
type EventSink interface {
	Event(name string, props map[string]any)
}

type session struct {
	kind     Kind
	widgetID string
	start    geom.Pt
	last     geom.Pt
	// grab is the pointer offset from the panel's top-left corner.
	grab   geom.Pt
	origin geom.Rect

	split     *dock.Split
	splitRect geom.Rect
}

// Controller runs at most one drag session at a time. It is not safe for
// concurrent use; feed it from the UI event loop.
type Controller struct {
	cfg    Config
	cmd    Commander
	surf   Surfaces
	events EventSink
	log    *slog.Logger

	phase  Phase
	sess   *session
	intent Intent
	guides []geom.GuideLine
}

func NewController(cmd Commander, surf Surfaces, cfg Config) *Controller {
	return &Controller{
		cfg:  cfg,
		cmd:  cmd,
		surf: surf,
		log:  applog.WithComponent("snap"),
	}
}

// SetEventSink enables snap.commit usage events.
func (c *Controller) SetEventSink(s EventSink) { c.events = s }

// SetConfig replaces the thresholds. It applies to the next session.
func (c *Controller) SetConfig(cfg Config) { c.cfg = cfg }

func (c *Controller) Phase() Phase { return c.phase }

// Intent is the intent computed on the last move, for drawing the preview.
func (c *Controller) Intent() Intent { return c.intent }

// Guides are the smart guides matched on the last floating move.
func (c *Controller) Guides() []geom.GuideLine { return c.guides }

// Session reports the kind and widget of the active session.
func (c *Controller) Session() (Kind, string, bool) {
	if c.sess == nil {
		return 0, "", false
	}
	return c.sess.kind, c.sess.widgetID, true
}

func (c *Controller) canStart(ev PointerDown) bool {
	return c.phase == Idle && ev.Button == Primary && !Blocked(ev.Chain)
}

func (c *Controller) panel(widgetID string) (Panel, bool) {
	for _, p := range c.surf.Panels() {
		if p.WidgetID == widgetID {
			return p, true
		}
	}
	return Panel{}, false
}

func (c *Controller) begin(s *session) {
	c.sess = s
	c.phase = Pending
	c.intent = Intent{}
	c.guides = nil
}

// BeginMove starts a move session on widgetID's header. Docked panels start
// a move-docked session, floating ones a move-floating session. Pinned
// panels never move.
func (c *Controller) BeginMove(widgetID string, ev PointerDown) bool {
	if !c.canStart(ev) {
		return false
	}
	p, ok := c.panel(widgetID)
	if !ok || p.Pinned {
		return false
	}
	kind := MoveFloating
	if p.Docked {
		kind = MoveDocked
	}
	c.begin(&session{
		kind:     kind,
		widgetID: widgetID,
		start:    ev.Pos,
		last:     ev.Pos,
		grab:     geom.Pt{X: ev.Pos.X - p.Rect.X, Y: ev.Pos.Y - p.Rect.Y},
		origin:   p.Rect,
	})
	if kind == MoveFloating {
		c.cmd.BringToFront(widgetID)
	}
	return true
}

// BeginSplitResize starts dragging the divider of split, laid out in rect.
func (c *Controller) BeginSplitResize(split *dock.Split, rect geom.Rect, ev PointerDown) bool {
	if split == nil || !c.canStart(ev) {
		return false
	}
	c.begin(&session{kind: SplitResize, start: ev.Pos, last: ev.Pos, split: split, splitRect: rect})
	return true
}

// BeginResize starts resizing a floating widget from its bottom-right grip.
func (c *Controller) BeginResize(widgetID string, ev PointerDown) bool {
	if !c.canStart(ev) {
		return false
	}
	p, ok := c.panel(widgetID)
	if !ok || p.Pinned || p.Docked {
		return false
	}
	c.begin(&session{kind: FloatResize, widgetID: widgetID, start: ev.Pos, last: ev.Pos, origin: p.Rect})
	return true
}

// Move feeds a pointer move into the active session.
func (c *Controller) Move(p geom.Pt) {
	s := c.sess
	if s == nil {
		return
	}
	s.last = p
	if c.phase == Pending {
		if geom.Dist(s.start, p) < c.cfg.DragThreshold {
			return
		}
		c.phase = Dragging
		c.log.Debug("drag started", slog.String("kind", s.kind.String()), slog.String("widget", s.widgetID))
	}
	if c.phase != Dragging {
		return
	}
	switch s.kind {
	case MoveFloating:
		c.intent = Resolve(p, c.surf.Panels(), c.surf.Workspace(), s.widgetID, c.cfg)
		c.moveFloating(s, p)
	case MoveDocked:
		c.intent = Resolve(p, c.surf.Panels(), c.surf.Workspace(), s.widgetID, c.cfg)
	case SplitResize:
		c.cmd.SetDockSplitRatio(s.split.ID, dock.RatioAt(s.split, s.splitRect, p))
	case FloatResize:
		w := s.origin.W + p.X - s.start.X
		h := s.origin.H + p.Y - s.start.Y
		c.cmd.UpdateWidget(s.widgetID, workspace.Patch{W: &w, H: &h})
	}
}

// moveFloating follows the pointer and snaps to sibling floating panels and
// the workspace edges. The panel never moves above or left of the origin.
func (c *Controller) moveFloating(s *session, p geom.Pt) {
	next := s.origin.Translate(p.X-s.start.X, p.Y-s.start.Y)
	c.guides = nil
	if c.cfg.SmartGuides && c.intent.Kind == IntentNone {
		var anchors []geom.Anchor
		for _, pn := range c.surf.Panels() {
			if pn.WidgetID != s.widgetID && !pn.Docked {
				anchors = append(anchors, geom.Anchor{Rect: pn.Rect, Weight: 1})
			}
		}
		if ws := c.surf.Workspace(); !ws.Empty() {
			anchors = append(anchors, geom.Anchor{Rect: ws, Weight: 0.5})
		}
		next, c.guides = geom.ComputeSmartGuides(next, anchors, geom.SnapOptions{
			Threshold:     c.cfg.GuideThreshold,
			SnapToEdges:   true,
			SnapToCenters: true,
		})
	}
	x, y := max(0, next.X), max(0, next.Y)
	c.cmd.UpdateWidget(s.widgetID, workspace.Patch{X: &x, Y: &y})
}

// Release ends the session at p and issues at most one command.
func (c *Controller) Release(p geom.Pt) {
	s := c.sess
	if s == nil {
		return
	}
	if c.phase == Dragging {
		c.Move(p)
		c.phase = Committed
		c.commit(s, p)
	}
	c.reset()
}

// Cancel ends the session without committing its intent.
func (c *Controller) Cancel() {
	if c.sess != nil {
		c.log.Debug("drag cancelled", slog.String("kind", c.sess.kind.String()), slog.String("widget", c.sess.widgetID))
	}
	c.reset()
}

func (c *Controller) reset() {
	c.sess = nil
	c.phase = Idle
	c.intent = Intent{}
	c.guides = nil
}

func (c *Controller) commit(s *session, p geom.Pt) {
	if s.kind != MoveFloating && s.kind != MoveDocked {
		return
	}
	in := c.intent
	switch in.Kind {
	case IntentSplitPanel:
		c.cmd.DockIntoLeaf(s.widgetID, in.TargetID, in.Side)
	case IntentAddTab:
		c.cmd.DockAsTab(s.widgetID, in.TargetID)
	case IntentDockEdge:
		c.cmd.DockWidget(s.widgetID, in.Side)
	default:
		if s.kind != MoveDocked || c.surf.DockRegion().OutsideBy(p) <= c.cfg.UndockMargin {
			return
		}
		c.cmd.UndockWidgetAt(s.widgetID, p.X-s.grab.X, p.Y-s.grab.Y)
		c.emit(s, "undock", "")
		return
	}
	c.emit(s, in.Kind.String(), in.Side)
}

func (c *Controller) emit(s *session, intent string, side dock.Side) {
	c.log.Debug("drag committed",
		slog.String("kind", s.kind.String()),
		slog.String("widget", s.widgetID),
		slog.String("intent", intent),
		slog.String("side", string(side)))
	if c.events != nil {
		c.events.Event("snap.commit", map[string]any{"kind": s.kind.String(), "intent": intent, "side": string(side)})
	}
}
