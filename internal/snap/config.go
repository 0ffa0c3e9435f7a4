/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap turns pointer drags into dock and floating-placement commands.
// Intent resolution is a pure function of the pointer position and the panel
// rectangles the presentation layer reports, so it can be tested without any
// real pointer events.
package snap

import (
	"strings"

	"dockspace/internal/config"
)

// Config holds the interaction thresholds, in workspace pixels.
type Config struct {
	// DragThreshold is how far the pointer must travel before a press
	// becomes a drag.
	DragThreshold float64
	// PanelSnapThreshold is the band along a panel's edges that splits it.
	PanelSnapThreshold float64
	// DockSnapThreshold is the band along the workspace edges that docks
	// against the whole tree.
	DockSnapThreshold float64
	// UndockMargin is how far outside the dock region a docked panel must be
	// dropped to float.
	UndockMargin   float64
	SmartGuides    bool
	GuideThreshold float64
}

func DefaultConfig() Config {
	return Config{
		DragThreshold:      8,
		PanelSnapThreshold: 48,
		DockSnapThreshold:  32,
		UndockMargin:       24,
		SmartGuides:        true,
		GuideThreshold:     6,
	}
}

// ConfigFrom maps the user's interaction settings onto a Config. Zero values
// keep the defaults.
func ConfigFrom(ic config.InteractionConfig) Config {
	c := DefaultConfig()
	if ic.DragThreshold > 0 {
		c.DragThreshold = ic.DragThreshold
	}
	if ic.PanelSnapThreshold > 0 {
		c.PanelSnapThreshold = ic.PanelSnapThreshold
	}
	if ic.DockSnapThreshold > 0 {
		c.DockSnapThreshold = ic.DockSnapThreshold
	}
	if ic.UndockMargin > 0 {
		c.UndockMargin = ic.UndockMargin
	}
	c.SmartGuides = !ic.DisableSmartGuides
	return c
}

// Element is one node of the chain from a pointer-down target up to the
// panel header. Attribute names are matched case-insensitively.
type Element struct {
	Tag   string
	Attrs map[string]string
}

func (e Element) attr(name string) (string, bool) {
	for k, v := range e.Attrs {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

var interactiveTags = map[string]bool{
	"button":   true,
	"a":        true,
	"input":    true,
	"textarea": true,
	"select":   true,
	"label":    true,
}

// interactive reports whether e should keep the press for itself.
func (e Element) interactive() bool {
	if interactiveTags[strings.ToLower(e.Tag)] {
		return true
	}
	if v, _ := e.attr("role"); strings.EqualFold(v, "button") {
		return true
	}
	if v, _ := e.attr("contenteditable"); strings.EqualFold(v, "true") {
		return true
	}
	if v, _ := e.attr("data-no-drag"); strings.EqualFold(v, "true") {
		return true
	}
	_, scroll := e.attr("data-scroll-region")
	return scroll
}

// Blocked reports whether any element of the chain is interactive, in which
// case a press never starts a drag.
func Blocked(chain []Element) bool {
	for _, e := range chain {
		if e.interactive() {
			return true
		}
	}
	return false
}
