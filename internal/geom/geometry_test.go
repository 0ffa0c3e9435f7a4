/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
}

func TestRectEdgeDistances(t *testing.T) {
	r := R(0, 0, 200, 100)
	l, rt, tp, b := r.EdgeDistances(Pt{20, 90})
	if l != 20 || rt != 180 || tp != 90 || b != 10 {
		t.Fatalf("unexpected distances: %v %v %v %v", l, rt, tp, b)
	}
}

func TestRectOutsideBy(t *testing.T) {
	r := R(0, 0, 100, 100)
	if d := r.OutsideBy(Pt{50, 50}); d != 0 {
		t.Fatalf("inside point should be 0, got %v", d)
	}
	if d := r.OutsideBy(Pt{130, 140}); d != 50 {
		t.Fatalf("expected 50 (3-4-5), got %v", d)
	}
}

func TestClampAndRound(t *testing.T) {
	if Clamp(2, 0, 1) != 1 || Clamp(-1, 0, 1) != 0 || Clamp(0.5, 0, 1) != 0.5 {
		t.Fatalf("clamp out of range")
	}
	if FloatRound(1.23456, 3) != 1.235 {
		t.Fatalf("unexpected rounding: %v", FloatRound(1.23456, 3))
	}
}
