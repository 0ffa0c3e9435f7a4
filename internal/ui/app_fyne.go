//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"dockspace/internal/dock"
	"dockspace/internal/geom"
	applog "dockspace/internal/log"
	"dockspace/internal/module"
	"dockspace/internal/snap"
	"dockspace/internal/workspace"
)

// Run opens the workspace window and blocks until it is closed.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("dockspace")
	host := newFyneHost(fyneApp)
	opts.Host = host

	ctx := context.Background()
	sess, err := NewSession(ctx, opts)
	if err != nil {
		return err
	}

	w := fyneApp.NewWindow("dockspace")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1280)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	wc := NewWorkspaceCanvas(sess)
	unsubscribe := sess.Store.Subscribe(func(workspace.Change) {
		fyne.Do(wc.Refresh)
	})
	defer unsubscribe()

	w.SetMainMenu(mainMenu(sess))
	w.SetContent(wc)
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := sess.Close(ctx); err != nil {
			l.Error("final layout save failed", slog.Any("err", err))
		}
		host.closeAll()
	})
	w.SetMaster()
	w.ShowAndRun()
	return nil
}

func mainMenu(sess *Session) *fyne.MainMenu {
	var add []*fyne.MenuItem
	for _, id := range module.IDs() {
		m, _ := module.Lookup(id)
		add = append(add, fyne.NewMenuItem(m.Title, func() { sess.Store.AddWidget(id) }))
	}
	undoItem := fyne.NewMenuItem("Undo", func() { sess.Store.Undo() })
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoItem := fyne.NewMenuItem("Redo", func() { sess.Store.Redo() })
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}
	layout := fyne.NewMenu("Layout",
		undoItem,
		redoItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Reset layout", func() { sess.Store.ResetLayout() }),
	)
	return fyne.NewMainMenu(fyne.NewMenu("Widgets", add...), layout)
}

// WorkspaceCanvas draws floating panels over the dock tree and routes
// pointer input into the session.
type WorkspaceCanvas struct {
	widget.BaseWidget
	sess *Session
	last fyne.Position
}

func NewWorkspaceCanvas(sess *Session) *WorkspaceCanvas {
	wc := &WorkspaceCanvas{sess: sess}
	wc.ExtendBaseWidget(wc)
	return wc
}

func toPt(p fyne.Position) geom.Pt { return geom.Pt{X: float64(p.X), Y: float64(p.Y)} }

func toButton(b desktop.MouseButton) snap.Button {
	switch b {
	case desktop.MouseButtonSecondary:
		return snap.Secondary
	case desktop.MouseButtonTertiary:
		return snap.Middle
	}
	return snap.Primary
}

func (wc *WorkspaceCanvas) Resize(size fyne.Size) {
	wc.sess.Resize(geom.R(0, 0, float64(size.Width), float64(size.Height)), geom.Rect{})
	wc.BaseWidget.Resize(size)
}

func (wc *WorkspaceCanvas) MouseDown(e *desktop.MouseEvent) {
	wc.last = e.Position
	if wc.sess.Press(toPt(e.Position), toButton(e.Button), nil) {
		wc.Refresh()
	}
}

func (wc *WorkspaceCanvas) MouseUp(e *desktop.MouseEvent) {
	// A press that never became a drag ends here; after a drag DragEnd has
	// already released the session and this is a no-op.
	wc.sess.Release(toPt(e.Position))
	wc.Refresh()
}

func (wc *WorkspaceCanvas) Dragged(e *fyne.DragEvent) {
	wc.last = e.Position
	wc.sess.Drag(toPt(e.Position))
	wc.Refresh()
}

func (wc *WorkspaceCanvas) DragEnd() {
	wc.sess.Release(toPt(wc.last))
	wc.Refresh()
}

// TappedSecondary opens the panel menu.
func (wc *WorkspaceCanvas) TappedSecondary(e *fyne.PointEvent) {
	t := wc.sess.TargetAt(toPt(e.Position))
	if t.WidgetID == "" {
		return
	}
	m := panelMenu(wc.sess, t.WidgetID)
	if m == nil {
		return
	}
	cnv := fyne.CurrentApp().Driver().CanvasForObject(wc)
	widget.ShowPopUpMenuAtPosition(m, cnv, e.AbsolutePosition)
}

func panelMenu(sess *Session, id string) *fyne.Menu {
	w, ok := sess.Store.State().Widget(id)
	if !ok {
		return nil
	}
	pin := "Pin"
	if w.Pinned {
		pin = "Unpin"
	}
	items := []*fyne.MenuItem{fyne.NewMenuItem(pin, func() { sess.Store.TogglePin(id) })}
	if w.Mode == workspace.ModeDock {
		items = append(items, fyne.NewMenuItem("Undock", func() { sess.Store.UndockWidget(id) }))
	} else {
		items = append(items, fyne.NewMenuItem("Dock right", func() { sess.Store.DockWidget(id, dock.Right) }))
	}
	if sess.Store.HasWindowHost() {
		items = append(items, fyne.NewMenuItem("Open in window", func() { sess.Store.SpawnWidgetWindow(id) }))
	}
	items = append(items,
		fyne.NewMenuItem("Duplicate", func() { sess.Store.DuplicateWidget(id) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Close", func() { sess.Store.CloseWidget(id) }),
	)
	return fyne.NewMenu("", items...)
}

func (wc *WorkspaceCanvas) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (wc *WorkspaceCanvas) CreateRenderer() fyne.WidgetRenderer {
	r := &workspaceRenderer{wc: wc, bg: canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})}
	r.rebuild()
	return r
}

var (
	colPanel     = color.RGBA{R: 48, G: 50, B: 58, A: 255}
	colFloating  = color.RGBA{R: 58, G: 62, B: 74, A: 255}
	colHeader    = color.RGBA{R: 70, G: 74, B: 88, A: 255}
	colPinned    = color.RGBA{R: 120, G: 90, B: 40, A: 255}
	colBorder    = color.RGBA{R: 15, G: 15, B: 18, A: 255}
	colPreview   = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	colHighlight = color.RGBA{R: 0, G: 170, B: 255, A: 60}
	colGuide     = color.RGBA{R: 255, G: 170, B: 0, A: 255}
)

type workspaceRenderer struct {
	wc      *WorkspaceCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func frect(r geom.Rect) (fyne.Position, fyne.Size) {
	return fyne.NewPos(float32(r.X), float32(r.Y)), fyne.NewSize(float32(r.W), float32(r.H))
}

func place(o fyne.CanvasObject, r geom.Rect) {
	pos, size := frect(r)
	o.Move(pos)
	o.Resize(size)
}

func panelTitle(st workspace.State, p snap.Panel) string {
	w, _ := st.Widget(p.WidgetID)
	title := string(w.ModuleID)
	if m, ok := module.Lookup(w.ModuleID); ok {
		title = m.Title
	}
	if p.Docked {
		if l := dock.FindLeaf(st.Root, p.LeafID); l != nil && len(l.WidgetIDs) > 1 {
			title = fmt.Sprintf("%s  (%d/%d)", title, indexOf(l.WidgetIDs, p.WidgetID)+1, len(l.WidgetIDs))
		}
	}
	if p.Pinned {
		title += "  [pinned]"
	}
	return title
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// rebuild recreates the scene from the current session state. Panels come
// topmost first, so they are added in reverse.
func (r *workspaceRenderer) rebuild() {
	sess := r.wc.sess
	st := sess.Store.State()
	panels := sess.Panels()
	objs := []fyne.CanvasObject{r.bg}
	for i := len(panels) - 1; i >= 0; i-- {
		p := panels[i]
		fill := colPanel
		if !p.Docked {
			fill = colFloating
		}
		body := canvas.NewRectangle(fill)
		body.StrokeColor = colBorder
		body.StrokeWidth = 1
		place(body, p.Rect)

		hc := colHeader
		if p.Pinned {
			hc = colPinned
		}
		header := canvas.NewRectangle(hc)
		place(header, HeaderRect(p.Rect))

		title := canvas.NewText(panelTitle(st, p), color.White)
		title.TextSize = 12
		title.Move(fyne.NewPos(float32(p.Rect.X+8), float32(p.Rect.Y+6)))
		objs = append(objs, body, header, title)
	}

	phase, intent, guides := sess.Preview()
	if phase == snap.Dragging && intent.Kind != snap.IntentNone {
		frame := canvas.NewRectangle(color.Transparent)
		frame.StrokeColor = colPreview
		frame.StrokeWidth = 2
		place(frame, intent.Preview)
		hl := canvas.NewRectangle(colHighlight)
		place(hl, intent.Highlight)
		objs = append(objs, hl, frame)
	}
	for _, g := range guides {
		line := canvas.NewLine(colGuide)
		line.StrokeWidth = 1
		line.Position1 = fyne.NewPos(float32(g.From.X), float32(g.From.Y))
		line.Position2 = fyne.NewPos(float32(g.To.X), float32(g.To.Y))
		objs = append(objs, line)
	}
	r.objects = objs
}

func (r *workspaceRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
}

func (r *workspaceRenderer) MinSize() fyne.Size           { return r.wc.MinSize() }
func (r *workspaceRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *workspaceRenderer) Destroy()                     {}

func (r *workspaceRenderer) Refresh() {
	r.rebuild()
	r.Layout(r.wc.Size())
	canvas.Refresh(r.wc)
}
