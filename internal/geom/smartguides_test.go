/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestComputeSmartGuides_SnapToEdges(t *testing.T) {
	ws := Rect{X: 0, Y: 0, W: 1200, H: 800}
	moving := Rect{X: 3, Y: 4, W: 520, H: 620}
	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: ws, Weight: 1}}, SnapOptions{Threshold: 6, SnapToEdges: true})
	if snapped.X != 0 || snapped.Y != 0 {
		t.Fatalf("expected snap to 0,0, got %+v", snapped)
	}
	var vOK, hOK bool
	for _, g := range guides {
		if g.Orientation == Vertical && g.Position == 0 {
			vOK = true
		}
		if g.Orientation == Horizontal && g.Position == 0 {
			hOK = true
		}
	}
	if !vOK || !hOK {
		t.Fatalf("expected guides at x=0 (%v) and y=0 (%v)", vOK, hOK)
	}
}

func TestComputeSmartGuides_AbutNeighbour(t *testing.T) {
	other := Rect{X: 100, Y: 100, W: 400, H: 600}
	moving := Rect{X: 504, Y: 97, W: 400, H: 600}
	snapped, _ := ComputeSmartGuides(moving, []Anchor{{Rect: other, Weight: 1}}, SnapOptions{Threshold: 6, SnapToEdges: true})
	if snapped.X != 500 {
		t.Fatalf("expected left edge to abut at 500, got %v", snapped.X)
	}
	if snapped.Y != 100 {
		t.Fatalf("expected tops aligned at 100, got %v", snapped.Y)
	}
}

func TestComputeSmartGuides_SnapToCenters(t *testing.T) {
	ws := Rect{X: 0, Y: 0, W: 1000, H: 800}
	moving := Rect{X: 298, Y: 103, W: 400, H: 600}
	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: ws, Weight: 1}}, SnapOptions{Threshold: 5, SnapToCenters: true})
	if snapped.X != 300 || snapped.Y != 100 {
		t.Fatalf("expected centered at 300,100, got %+v", snapped)
	}
	if len(guides) != 2 || guides[0].Kind != "center" {
		t.Fatalf("expected two center guides, got %+v", guides)
	}
}

func TestComputeSmartGuides_ThresholdPreventsSnap(t *testing.T) {
	ws := Rect{X: 0, Y: 0, W: 200, H: 100}
	moving := Rect{X: 10, Y: 10, W: 50, H: 20}
	snapped, guides := ComputeSmartGuides(moving, []Anchor{{Rect: ws, Weight: 1}}, SnapOptions{Threshold: 5, SnapToEdges: true})
	if snapped != moving {
		t.Fatalf("expected no snapping when outside threshold; got %+v", snapped)
	}
	if len(guides) != 0 {
		t.Fatalf("expected no guides when no snap")
	}
}
