/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Smart guides align a floating panel against its neighbours and the
// workspace while it is being dragged. Deterministic and UI-agnostic.

import "math"

// SnapOptions controls which guide candidates are considered and the threshold.
type SnapOptions struct {
	// Threshold is the maximum distance at which snapping occurs.
	Threshold     float64
	SnapToEdges   bool
	SnapToCenters bool
}

// Anchor is a static reference rect (another floating panel, the workspace).
// Higher Weight wins when distances tie.
type Anchor struct {
	Rect   Rect
	Weight float64
}

type Orientation string

const (
	Vertical   Orientation = "vertical"
	Horizontal Orientation = "horizontal"
)

// GuideLine describes a visual guide generated during a snap alignment.
// Position is the x (vertical) or y (horizontal) coordinate of the guide.
type GuideLine struct {
	Orientation Orientation
	Kind        string // "edge" or "center"
	Position    float64
	From        Pt
	To          Pt
}

type axisBest struct {
	delta float64
	dist  float64
	guide GuideLine
}

func (b *axisBest) consider(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	if dist/math.Max(1, weight) < b.dist {
		b.dist = dist
		b.delta = delta
		b.guide = g
	}
}

// ComputeSmartGuides returns moving snapped against anchors plus the guides to
// render. X and Y snap independently.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	bx := axisBest{dist: math.Inf(1)}
	by := axisBest{dist: math.Inf(1)}

	mL, mR, mT, mB := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	mc := moving.Center()

	for _, a := range anchors {
		aL, aR, aT, aB := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		ac := a.Rect.Center()
		if opts.SnapToEdges {
			// same edges, then abutting edges
			bx.consider(mL-aL, opts.Threshold, a.Weight, vguide(aL, moving, a.Rect, "edge"))
			bx.consider(mR-aR, opts.Threshold, a.Weight, vguide(aR, moving, a.Rect, "edge"))
			bx.consider(mL-aR, opts.Threshold, a.Weight, vguide(aR, moving, a.Rect, "edge"))
			bx.consider(mR-aL, opts.Threshold, a.Weight, vguide(aL, moving, a.Rect, "edge"))

			by.consider(mT-aT, opts.Threshold, a.Weight, hguide(aT, moving, a.Rect, "edge"))
			by.consider(mB-aB, opts.Threshold, a.Weight, hguide(aB, moving, a.Rect, "edge"))
			by.consider(mT-aB, opts.Threshold, a.Weight, hguide(aB, moving, a.Rect, "edge"))
			by.consider(mB-aT, opts.Threshold, a.Weight, hguide(aT, moving, a.Rect, "edge"))
		}
		if opts.SnapToCenters {
			bx.consider(mc.X-ac.X, opts.Threshold, a.Weight, vguide(ac.X, moving, a.Rect, "center"))
			by.consider(mc.Y-ac.Y, opts.Threshold, a.Weight, hguide(ac.Y, moving, a.Rect, "center"))
		}
	}

	var guides []GuideLine
	snapped := moving
	if bx.dist <= opts.Threshold {
		snapped.X = FloatRound(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.dist <= opts.Threshold {
		snapped.Y = FloatRound(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func vguide(x float64, a, b Rect, kind string) GuideLine {
	x = FloatRound(x, 3)
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.H, b.Y+b.H)
	return GuideLine{Orientation: Vertical, Kind: kind, Position: x, From: Pt{x, minY}, To: Pt{x, maxY}}
}

func hguide(y float64, a, b Rect, kind string) GuideLine {
	y = FloatRound(y, 3)
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.W, b.X+b.W)
	return GuideLine{Orientation: Horizontal, Kind: kind, Position: y, From: Pt{minX, y}, To: Pt{maxX, y}}
}
