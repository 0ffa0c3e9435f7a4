/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"testing"

	"dockspace/internal/dock"
	"dockspace/internal/geom"
	"dockspace/internal/module"
	"dockspace/internal/snap"
	"dockspace/internal/workspace"
)

func pickFixture(t *testing.T) (*workspace.Store, snap.LayoutSurfaces, [3]string) {
	t.Helper()
	n := 0
	s := workspace.New(workspace.Options{NewID: func() string { n++; return fmt.Sprintf("w%d", n) }})
	f := s.AddWidget(module.Chat) // floating at (80,80) 520x620
	a := s.EnsureDocked(module.Feed)
	b := s.EnsureDocked(module.Music)
	return s, snap.LayoutSurfaces{State: s.State, Bounds: geom.R(0, 0, 1000, 600)}, [3]string{f, a, b}
}

func TestPickPrefersFloatingThenDividerThenLeaf(t *testing.T) {
	_, surf, ids := pickFixture(t)
	f, b := ids[0], ids[2]

	cases := []struct {
		name string
		p    geom.Pt
		kind TargetKind
		id   string
	}{
		{"floating header", geom.Pt{X: 100, Y: 90}, TargetHeader, f},
		{"floating grip", geom.Pt{X: 595, Y: 695}, TargetResize, f},
		{"floating body", geom.Pt{X: 300, Y: 300}, TargetBody, f},
		{"docked header", geom.Pt{X: 700, Y: 10}, TargetHeader, b},
		{"docked body", geom.Pt{X: 900, Y: 300}, TargetBody, b},
		{"nothing", geom.Pt{X: 1100, Y: 10}, TargetNone, ""},
	}
	for _, tc := range cases {
		got := Pick(surf, tc.p)
		if got.Kind != tc.kind || got.WidgetID != tc.id {
			t.Fatalf("%s: got %+v, want kind %d id %q", tc.name, got, tc.kind, tc.id)
		}
	}

	div := Pick(surf, geom.Pt{X: 502, Y: 50})
	if div.Kind != TargetDivider || div.Split == nil {
		t.Fatalf("expected divider hit, got %+v", div)
	}
	if div.Rect != geom.R(0, 0, 1000, 600) {
		t.Fatalf("divider rect = %+v", div.Rect)
	}
}

func TestBeginDispatchesByTarget(t *testing.T) {
	s, surf, ids := pickFixture(t)
	c := snap.NewController(s, surf, snap.DefaultConfig())
	down := func(x, y float64) snap.PointerDown { return snap.PointerDown{Pos: geom.Pt{X: x, Y: y}} }

	if Begin(c, Pick(surf, geom.Pt{X: 300, Y: 300}), down(300, 300)) {
		t.Fatal("a body press must not start a session")
	}
	if !Begin(c, Pick(surf, geom.Pt{X: 595, Y: 695}), down(595, 695)) {
		t.Fatal("grip press should start a resize")
	}
	if kind, id, ok := c.Session(); !ok || kind != snap.FloatResize || id != ids[0] {
		t.Fatalf("session = %v %q %v", kind, id, ok)
	}
	c.Cancel()

	if !Begin(c, Pick(surf, geom.Pt{X: 502, Y: 50}), down(502, 50)) {
		t.Fatal("divider press should start a split resize")
	}
	c.Move(geom.Pt{X: 700, Y: 50})
	c.Release(geom.Pt{X: 700, Y: 50})
	root, ok := s.State().Root.(*dock.Split)
	if !ok {
		t.Fatalf("root is %T", s.State().Root)
	}
	if root.Ratio < 0.699 || root.Ratio > 0.701 {
		t.Fatalf("ratio = %v, want 0.7", root.Ratio)
	}
}

func TestDividerRectFollowsDirection(t *testing.T) {
	row := &dock.Split{Direction: dock.Row, Ratio: 0.25}
	if got := DividerRect(row, geom.R(0, 0, 400, 100)); got != geom.R(96, 0, 8, 100) {
		t.Fatalf("row divider = %+v", got)
	}
	col := &dock.Split{Direction: dock.Column, Ratio: 0.5}
	if got := DividerRect(col, geom.R(0, 0, 400, 100)); got != geom.R(0, 46, 400, 8) {
		t.Fatalf("column divider = %+v", got)
	}
}

func TestHeaderRectNeverExceedsPanel(t *testing.T) {
	if got := HeaderRect(geom.R(10, 10, 50, 12)); got.H != 12 {
		t.Fatalf("header height = %v", got.H)
	}
}
