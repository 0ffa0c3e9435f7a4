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
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dockspace/internal/module"
	"dockspace/internal/windowhost"
)

// fyneHost gives every external widget its own fyne window. Window calls
// are queued onto the fyne goroutine and return immediately.
type fyneHost struct {
	app fyne.App

	mu      sync.Mutex
	windows map[string]fyne.Window
	bodies  map[string]*widget.Label
	onEvent func(windowhost.Event)
}

func newFyneHost(a fyne.App) *fyneHost {
	return &fyneHost{app: a, windows: map[string]fyne.Window{}, bodies: map[string]*widget.Label{}}
}

func (h *fyneHost) setHandler(fn func(windowhost.Event)) {
	h.mu.Lock()
	h.onEvent = fn
	h.mu.Unlock()
}

func (h *fyneHost) emit(ev windowhost.Event) {
	h.mu.Lock()
	fn := h.onEvent
	h.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (h *fyneHost) Open(_ context.Context, label, widgetID, moduleID string) error {
	title := moduleID
	if m, ok := module.Lookup(module.ID(moduleID)); ok {
		title = m.Title
	}
	fyne.Do(func() {
		h.mu.Lock()
		if w, ok := h.windows[label]; ok {
			h.mu.Unlock()
			w.RequestFocus()
			return
		}
		w := h.app.NewWindow(title)
		body := widget.NewLabel("Loading…")
		h.windows[label] = w
		h.bodies[label] = body
		h.mu.Unlock()

		reattach := widget.NewButton("Back to dock", func() {
			h.emit(windowhost.Event{Kind: windowhost.EventReattach, Label: label, WidgetID: widgetID})
		})
		w.SetContent(container.NewBorder(nil, reattach, nil, nil, body))
		w.Resize(fyne.NewSize(520, 620))
		w.SetCloseIntercept(func() {
			h.forget(label)
			w.Close()
			h.emit(windowhost.Event{Kind: windowhost.EventClosed, Label: label, WidgetID: widgetID})
		})
		w.Show()
		h.emit(windowhost.Event{Kind: windowhost.EventReady, Label: label, WidgetID: widgetID})
	})
	return nil
}

func (h *fyneHost) forget(label string) fyne.Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	w := h.windows[label]
	delete(h.windows, label)
	delete(h.bodies, label)
	return w
}

func (h *fyneHost) Close(_ context.Context, label string) error {
	fyne.Do(func() {
		if w := h.forget(label); w != nil {
			w.Close()
		}
	})
	return nil
}

func (h *fyneHost) Hydrate(_ context.Context, label string, p windowhost.HydratePayload) error {
	h.mu.Lock()
	body, ok := h.bodies[label]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("hydrate %s: no such window", label)
	}
	text := fmt.Sprintf("%s (%s)", p.ModuleID, p.WidgetID)
	if len(p.State) > 0 {
		text += "\n" + string(p.State)
	}
	fyne.Do(func() { body.SetText(text) })
	return nil
}

// closeAll closes every widget window without reporting them as closed by
// the user; the layout keeps them external for the next session.
func (h *fyneHost) closeAll() {
	h.mu.Lock()
	ws := make([]fyne.Window, 0, len(h.windows))
	for _, w := range h.windows {
		ws = append(ws, w)
	}
	h.windows = map[string]fyne.Window{}
	h.bodies = map[string]*widget.Label{}
	h.mu.Unlock()
	for _, w := range ws {
		w.Close()
	}
}
