/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package windowhost defines the boundary to whatever can open native
// top-level windows for detached widgets, and the small event protocol that
// flows back from those windows.
package windowhost

import (
	"context"
	"encoding/json"
	"strings"
)

const labelPrefix = "widget-"

// LabelFor returns the window label used for a widget.
func LabelFor(widgetID string) string { return labelPrefix + widgetID }

// WidgetIDFromLabel is the inverse of LabelFor.
func WidgetIDFromLabel(label string) (string, bool) {
	if !strings.HasPrefix(label, labelPrefix) || len(label) == len(labelPrefix) {
		return "", false
	}
	return strings.TrimPrefix(label, labelPrefix), true
}

// HydrateVersion is the current version of HydratePayload.
const HydrateVersion = 1

// HydratePayload is sent to a freshly opened window so it can render the
// widget it hosts.
type HydratePayload struct {
	WidgetID string          `json:"widgetId"`
	ModuleID string          `json:"moduleId"`
	State    json.RawMessage `json:"state,omitempty"`
	Version  int             `json:"version"`
}

// Host opens and closes native windows. Implementations may complete the
// work asynchronously; callers do not wait for the window to exist.
type Host interface {
	Open(ctx context.Context, label, widgetID, moduleID string) error
	Close(ctx context.Context, label string) error
	Hydrate(ctx context.Context, label string, payload HydratePayload) error
}

// EventKind enumerates the notifications a host window sends back.
type EventKind string

const (
	// EventReady: the window finished loading and wants its hydrate payload.
	EventReady EventKind = "mm:widget_ready"
	// EventClosed: the user closed the window natively.
	EventClosed EventKind = "mm:widget_closed"
	// EventReattach: the window asked to go back into the dock.
	EventReattach EventKind = "mm:reattach_widget"
)

// Event is a notification from a host window.
type Event struct {
	Kind     EventKind `json:"kind"`
	Label    string    `json:"label"`
	WidgetID string    `json:"widgetId"`
}

// ResolveWidgetID returns the widget an event refers to, preferring the
// explicit id and falling back to the window label.
func (e Event) ResolveWidgetID() string {
	if e.WidgetID != "" {
		return e.WidgetID
	}
	id, _ := WidgetIDFromLabel(e.Label)
	return id
}
