/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockspace/internal/dock"
	"dockspace/internal/module"
	"dockspace/internal/windowhost"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("w%d", n)
	}
}

func newTestStore(t *testing.T, host windowhost.Host) *Store {
	t.Helper()
	return New(Options{Host: host, NewID: seqIDs()})
}

func ptr[T any](v T) *T { return &v }

// requireConsistent checks the cross-structure invariants that must hold
// after every command.
func requireConsistent(t *testing.T, st State) {
	t.Helper()
	require.NoError(t, dock.Validate(st.Root))
	inTree := map[string]bool{}
	for _, id := range st.Docked() {
		inTree[id] = true
	}
	byID := map[string]Widget{}
	for _, w := range st.Widgets {
		_, dup := byID[w.ID]
		require.False(t, dup, "duplicate widget %s", w.ID)
		byID[w.ID] = w
	}
	for id := range inTree {
		w, ok := byID[id]
		require.True(t, ok, "tree references unknown widget %s", id)
		require.Equal(t, ModeDock, w.Mode, "widget %s in tree but not docked", id)
	}
	for _, w := range st.Widgets {
		if w.Mode == ModeDock {
			require.True(t, inTree[w.ID], "docked widget %s missing from tree", w.ID)
			require.Equal(t, HostEmbedded, w.Host)
		}
		if w.Host != HostExternal {
			require.Empty(t, w.WindowHandle)
		}
		if p := w.ParentGroupID; p != "" {
			parent, ok := byID[p]
			require.True(t, ok, "dangling parent %s", p)
			require.True(t, module.IsNavCapable(parent.ModuleID))
			n := 0
			for _, c := range parent.ChildIDs {
				if c == w.ID {
					n++
				}
			}
			require.Equal(t, 1, n, "parent %s lists %s %d times", p, w.ID, n)
		}
		for _, c := range w.ChildIDs {
			child, ok := byID[c]
			require.True(t, ok, "dangling child %s", c)
			require.Equal(t, w.ID, child.ParentGroupID)
		}
	}
}

func TestAddWidgetStaggersFloatingWidgets(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.AddWidget(module.Chat)
	b := s.AddWidget(module.Feed)
	require.Equal(t, "w1", a)
	require.Equal(t, "w2", b)

	st := s.State()
	wa, _ := st.Widget(a)
	wb, _ := st.Widget(b)
	assert.Equal(t, Widget{ID: "w1", ModuleID: module.Chat, Mode: ModeFloating, Host: HostEmbedded, X: 80, Y: 80, W: 520, H: 620, Z: 1}, wa)
	assert.Equal(t, 104.0, wb.X)
	assert.Equal(t, 104.0, wb.Y)
	assert.Equal(t, int64(2), wb.Z)
	assert.Nil(t, st.Root)
	assert.Equal(t, uint64(2), st.Version)
	requireConsistent(t, st)
}

func TestAddWidgetUnknownModuleIsNoop(t *testing.T) {
	s := newTestStore(t, nil)
	assert.Empty(t, s.AddWidget("bogus"))
	assert.Equal(t, uint64(0), s.State().Version)
}

func TestEnsureDockedIsIdempotent(t *testing.T) {
	s := newTestStore(t, nil)
	id := s.EnsureDocked(module.Music)
	first := s.State()
	again := s.EnsureDocked(module.Music)

	assert.Equal(t, id, again)
	second := s.State()
	assert.Equal(t, first.Widgets, second.Widgets)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, []string{id}, second.Docked())
	requireConsistent(t, second)
}

func TestDockWidgetWrapsWholeTree(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.AddWidget(module.Chat)
	b := s.AddWidget(module.Feed)
	s.DockWidget(a, dock.Right)
	s.DockWidget(b, dock.Left)

	st := s.State()
	root, ok := st.Root.(*dock.Split)
	require.True(t, ok)
	assert.Equal(t, dock.Row, root.Direction)
	assert.Equal(t, 0.5, root.Ratio)
	assert.Equal(t, []string{b}, root.Children[0].(*dock.Leaf).WidgetIDs)
	assert.Equal(t, []string{a}, root.Children[1].(*dock.Leaf).WidgetIDs)
	requireConsistent(t, st)

	// docking an already docked widget moves it instead of duplicating it
	s.DockWidget(a, dock.Top)
	st = s.State()
	root = st.Root.(*dock.Split)
	assert.Equal(t, dock.Column, root.Direction)
	assert.Equal(t, []string{a}, root.Children[0].(*dock.Leaf).WidgetIDs)
	assert.Equal(t, []string{b}, root.Children[1].(*dock.Leaf).WidgetIDs)
	requireConsistent(t, st)
}

func TestDockIntoLeafAndDockAsTab(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.EnsureDocked(module.Chat)
	b := s.AddWidget(module.Feed)
	c := s.AddWidget(module.Music)

	s.DockIntoLeaf(b, a, dock.Bottom)
	st := s.State()
	root := st.Root.(*dock.Split)
	assert.Equal(t, dock.Column, root.Direction)
	assert.Equal(t, []string{a, b}, st.Docked())

	s.DockAsTab(c, b)
	st = s.State()
	l := dock.FindLeafByWidget(st.Root, c)
	require.NotNil(t, l)
	assert.Equal(t, []string{b, c}, l.WidgetIDs)
	assert.Equal(t, c, l.ActiveWidgetID)
	requireConsistent(t, st)

	// targets must be docked and distinct
	d := s.AddWidget(module.Welcome)
	before := s.State().Version
	s.DockIntoLeaf(d, d, dock.Left)
	s.DockAsTab(a, d)
	s.DockIntoLeaf("missing", a, dock.Left)
	assert.Equal(t, before, s.State().Version)
}

func TestMoveDockedWidget(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.EnsureDocked(module.Chat)
	b := s.EnsureDocked(module.Feed)
	c := s.EnsureDocked(module.Music)
	require.Equal(t, []string{a, b, c}, s.State().Docked())

	s.MoveDockedWidget(c, a, dock.Left)
	st := s.State()
	assert.Equal(t, []string{c, a, b}, st.Docked())
	requireConsistent(t, st)

	floating := s.AddWidget(module.Welcome)
	v := s.State().Version
	s.MoveDockedWidget(floating, a, dock.Left)
	assert.Equal(t, v, s.State().Version, "floating widgets are not moved by MoveDockedWidget")
}

func TestUndockWidgetAtCollapsesLeaf(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.EnsureDocked(module.Chat)
	w := s.EnsureDocked(module.Feed)

	s.UndockWidgetAt(w, 300, 200)
	st := s.State()
	leaf, ok := st.Root.(*dock.Leaf)
	require.True(t, ok, "split should collapse to the remaining leaf")
	assert.Equal(t, []string{a}, leaf.WidgetIDs)

	got, _ := st.Widget(w)
	assert.Equal(t, ModeFloating, got.Mode)
	assert.Equal(t, HostEmbedded, got.Host)
	assert.Equal(t, 300.0, got.X)
	assert.Equal(t, 200.0, got.Y)
	for _, o := range st.Widgets {
		if o.ID != w {
			assert.Greater(t, got.Z, o.Z)
		}
	}
	requireConsistent(t, st)

	s.UndockWidgetAt(a, -40, -10)
	got, _ = s.State().Widget(a)
	assert.Equal(t, 0.0, got.X)
	assert.Equal(t, 0.0, got.Y)
	assert.Nil(t, s.State().Root)

	s.DockWidget(a, dock.Left)
	s.UndockWidget(a)
	got, _ = s.State().Widget(a)
	assert.Equal(t, 80.0, got.X)
	assert.Equal(t, 80.0, got.Y)
}

func TestUpdateWidgetClampsToModuleMinimum(t *testing.T) {
	s := newTestStore(t, nil)
	id := s.AddWidget(module.Chat)
	s.UpdateWidget(id, Patch{X: ptr(10.0), W: ptr(100.0), H: ptr(900.0)})
	w, _ := s.State().Widget(id)
	assert.Equal(t, 10.0, w.X)
	assert.Equal(t, 400.0, w.W)
	assert.Equal(t, 900.0, w.H)

	v := s.State().Version
	s.UpdateWidget(id, Patch{W: ptr(50.0)})
	assert.Equal(t, v, s.State().Version, "clamped to the same size is not a change")
}

func TestBringToFrontNeverReusesZ(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.AddWidget(module.Chat)
	b := s.AddWidget(module.Feed)
	s.CloseWidget(b)
	c := s.AddWidget(module.Music)
	wc, _ := s.State().Widget(c)
	assert.Equal(t, int64(3), wc.Z)

	s.BringToFront(a)
	wa, _ := s.State().Widget(a)
	assert.Equal(t, int64(4), wa.Z)

	v := s.State().Version
	s.BringToFront(a)
	assert.Equal(t, v, s.State().Version, "already on top")
}

func TestPinning(t *testing.T) {
	s := newTestStore(t, nil)
	id := s.AddWidget(module.Chat)
	s.SetPinned(id, true)
	w, _ := s.State().Widget(id)
	assert.True(t, w.Pinned)
	s.TogglePin(id)
	w, _ = s.State().Widget(id)
	assert.False(t, w.Pinned)
}

func TestDuplicateWidgetCopiesRuntimeState(t *testing.T) {
	s := newTestStore(t, nil)
	id := s.EnsureDocked(module.Chat)
	s.SetRuntimeState(id, json.RawMessage(`{"room":"x"}`))
	dup := s.DuplicateWidget(id)
	require.NotEmpty(t, dup)

	st := s.State()
	src, _ := st.Widget(id)
	w, _ := st.Widget(dup)
	assert.Equal(t, ModeFloating, w.Mode)
	assert.Equal(t, src.X+DuplicateOffset, w.X)
	assert.Equal(t, src.Y+DuplicateOffset, w.Y)
	blob, ok := s.RuntimeState(dup)
	require.True(t, ok)
	assert.JSONEq(t, `{"room":"x"}`, string(blob))
	requireConsistent(t, st)
}

func TestTabCommands(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.EnsureDocked(module.Chat)
	b := s.AddWidget(module.Feed)
	c := s.AddWidget(module.Music)
	s.DockAsTab(b, a)
	s.DockAsTab(c, a)
	leaf := dock.FindLeafByWidget(s.State().Root, a)
	require.Equal(t, []string{a, b, c}, leaf.WidgetIDs)

	s.SetActiveDockTab(leaf.ID, b)
	s.ReorderDockTab(leaf.ID, a, 99)
	leaf = dock.FindLeaf(s.State().Root, leaf.ID)
	assert.Equal(t, []string{b, c, a}, leaf.WidgetIDs)
	assert.Equal(t, b, leaf.ActiveWidgetID)

	s.DetachDockTab(leaf.ID, c)
	st := s.State()
	wc, _ := st.Widget(c)
	assert.Equal(t, ModeFloating, wc.Mode)
	assert.Equal(t, 80.0, wc.X)
	assert.Equal(t, []string{b, a}, dock.FindLeaf(st.Root, leaf.ID).WidgetIDs)
	requireConsistent(t, st)

	s.AttachDockTabToLeaf(leaf.ID, c, 0)
	l := dock.FindLeaf(s.State().Root, leaf.ID)
	assert.Equal(t, []string{c, b, a}, l.WidgetIDs)
	assert.Equal(t, c, l.ActiveWidgetID)

	s.CloseDockTab(leaf.ID, b)
	st = s.State()
	_, exists := st.Widget(b)
	assert.False(t, exists)
	assert.Equal(t, []string{c, a}, st.Docked())
	requireConsistent(t, st)
}

func TestAttachDockTabMovesBetweenLeaves(t *testing.T) {
	s := newTestStore(t, nil)
	a := s.EnsureDocked(module.Chat)
	b := s.EnsureDocked(module.Feed)
	leafA := dock.FindLeafByWidget(s.State().Root, a)

	s.AttachDockTabToLeaf(leafA.ID, b, -1)
	st := s.State()
	leaf, ok := st.Root.(*dock.Leaf)
	require.True(t, ok)
	assert.Equal(t, leafA.ID, leaf.ID)
	assert.Equal(t, []string{a, b}, leaf.WidgetIDs)
	requireConsistent(t, st)
}

func TestSetDockSplitRatioIsClamped(t *testing.T) {
	s := newTestStore(t, nil)
	s.EnsureDocked(module.Chat)
	s.EnsureDocked(module.Feed)
	split := s.State().Root.(*dock.Split)

	s.SetDockSplitRatio(split.ID, 0.95)
	assert.Equal(t, MaxSplitRatio, s.State().Root.(*dock.Split).Ratio)
	s.SetDockSplitRatio(split.ID, 0.01)
	assert.Equal(t, MinSplitRatio, s.State().Root.(*dock.Split).Ratio)
	s.SetDockSplitRatio(split.ID, 0.3)
	assert.Equal(t, 0.3, s.State().Root.(*dock.Split).Ratio)
}

func TestStaleIDsAreNoops(t *testing.T) {
	s := newTestStore(t, windowhost.NewRecorder())
	s.EnsureDocked(module.Chat)
	v := s.State().Version

	s.CloseWidget("gone")
	s.UpdateWidget("gone", Patch{X: ptr(1.0)})
	s.BringToFront("gone")
	s.DockWidget("gone", dock.Left)
	s.UndockWidgetAt("gone", 1, 1)
	s.SetActiveDockTab("no-leaf", "gone")
	s.ReorderDockTab("no-leaf", "gone", 0)
	s.DetachDockTab("no-leaf", "gone")
	s.AttachDockTabToLeaf("no-leaf", "gone", 0)
	s.SetDockSplitRatio("no-split", 0.5)
	s.SpawnWidgetWindow("gone")
	s.CloseWidgetWindow("gone")
	s.AttachToNav("gone", "gone2", 0)
	s.DetachFromNav("gone")
	s.TogglePin("gone")
	assert.Empty(t, s.DuplicateWidget("gone"))

	assert.Equal(t, v, s.State().Version)
}

func TestCloseWidgetRemovesEverywhere(t *testing.T) {
	host := windowhost.NewRecorder()
	s := newTestStore(t, host)
	nav := s.AddWidget(module.Nav)
	child := s.AddToNav(module.Chat, nav)
	s.SpawnWidgetWindow(child)
	s.SetRuntimeState(child, json.RawMessage(`{}`))

	s.CloseWidget(child)
	st := s.State()
	_, ok := st.Widget(child)
	assert.False(t, ok)
	n, _ := st.Widget(nav)
	assert.Empty(t, n.ChildIDs)
	_, ok = s.RuntimeState(child)
	assert.False(t, ok)
	assert.False(t, host.IsOpen(windowhost.LabelFor(child)))
	requireConsistent(t, st)
}

func TestApplyEnabledModules(t *testing.T) {
	s := newTestStore(t, nil)
	chat1 := s.EnsureDocked(module.Chat)
	chat2 := s.AddWidget(module.Chat)
	feed := s.EnsureDocked(module.Feed)
	music := s.AddWidget(module.Music)
	s.SetBackgroundMode(module.Chat, true)

	s.ApplyEnabledModules(map[module.ID]bool{module.Chat: false, module.Feed: true})
	st := s.State()
	ids := make([]string, 0, len(st.Widgets))
	for _, w := range st.Widgets {
		ids = append(ids, w.ID)
	}
	assert.ElementsMatch(t, []string{feed, music}, ids)
	assert.NotContains(t, ids, chat1)
	assert.NotContains(t, ids, chat2)
	assert.Equal(t, []string{feed}, st.Docked())
	assert.False(t, s.BackgroundMode(module.Chat))
	requireConsistent(t, st)
}

func TestResetLayout(t *testing.T) {
	host := windowhost.NewRecorder()
	s := newTestStore(t, host)
	a := s.EnsureDocked(module.Chat)
	b := s.AddWidget(module.Feed)
	s.SpawnWidgetWindow(b)
	s.SetRuntimeState(a, json.RawMessage(`1`))
	s.SetBackgroundMode(module.Music, true)

	s.ResetLayout()
	st := s.State()
	assert.Empty(t, st.Widgets)
	assert.Nil(t, st.Root)
	_, ok := s.RuntimeState(a)
	assert.False(t, ok)
	assert.False(t, s.BackgroundMode(module.Music))
	assert.False(t, host.IsOpen(windowhost.LabelFor(b)))

	v := st.Version
	s.ResetLayout()
	assert.Equal(t, v, s.State().Version)
}

func TestSubscribersSeeEveryChange(t *testing.T) {
	s := newTestStore(t, nil)
	var ops []string
	unsubscribe := s.Subscribe(func(c Change) {
		ops = append(ops, c.Op)
		// callbacks run unlocked and may read the store
		_ = s.State()
	})
	id := s.AddWidget(module.Chat)
	s.DockWidget(id, dock.Right)
	s.CloseWidget("missing")
	unsubscribe()
	s.CloseWidget(id)
	assert.Equal(t, []string{"addWidget", "dockWidget"}, ops)
}

func TestRandomCommandsKeepInvariants(t *testing.T) {
	host := windowhost.NewRecorder()
	s := newTestStore(t, host)
	mods := []module.ID{module.Chat, module.Feed, module.Music, module.Nav, module.Welcome}
	sides := []dock.Side{dock.Left, dock.Right, dock.Top, dock.Bottom}
	seed := uint32(7)
	next := func(n int) int {
		seed = seed*1664525 + 1013904223
		return int(seed>>8) % n
	}
	pick := func() string {
		st := s.State()
		if len(st.Widgets) == 0 {
			return "none"
		}
		return st.Widgets[next(len(st.Widgets))].ID
	}
	pickLeaf := func() dock.NodeID {
		leaves := dock.Leaves(s.State().Root)
		if len(leaves) == 0 {
			return "none"
		}
		return leaves[next(len(leaves))].ID
	}

	for i := 0; i < 1500; i++ {
		switch next(18) {
		case 0:
			s.AddWidget(mods[next(len(mods))])
		case 1:
			s.EnsureDocked(mods[next(len(mods))])
		case 2:
			s.DockWidget(pick(), sides[next(4)])
		case 3:
			s.DockIntoLeaf(pick(), pick(), sides[next(4)])
		case 4:
			s.DockAsTab(pick(), pick())
		case 5:
			s.MoveDockedWidget(pick(), pick(), sides[next(4)])
		case 6:
			s.UndockWidgetAt(pick(), float64(next(900)), float64(next(700)))
		case 7:
			s.CloseWidget(pick())
		case 8:
			s.SpawnWidgetWindow(pick())
		case 9:
			s.CloseWidgetWindow(pick())
		case 10:
			s.AttachToNav(pick(), pick(), next(3)-1)
		case 11:
			s.DetachFromNav(pick())
		case 12:
			s.AttachDockTabToLeaf(pickLeaf(), pick(), next(3)-1)
		case 13:
			s.DetachDockTab(pickLeaf(), pick())
		case 14:
			s.ReorderDockTab(pickLeaf(), pick(), next(4))
		case 15:
			s.Undo()
		case 16:
			s.Redo()
		case 17:
			s.DuplicateWidget(pick())
		}
		requireConsistent(t, s.State())
	}

	// every external widget has a window and nothing else does
	st := s.State()
	for _, w := range st.Widgets {
		assert.Equal(t, w.Host == HostExternal, host.IsOpen(windowhost.LabelFor(w.ID)), "widget %s", w.ID)
	}
}
