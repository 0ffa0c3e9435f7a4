/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockspace/internal/dock"
	"dockspace/internal/module"
	"dockspace/internal/undo"
	"dockspace/internal/windowhost"
)

func TestUndoRedoRestoresLayout(t *testing.T) {
	s := New(Options{NewID: seqIDs(), History: undo.NewManager(undo.Config{})})
	a := s.EnsureDocked(module.Chat)
	b := s.EnsureDocked(module.Feed)
	docked := s.State()

	s.UndockWidgetAt(b, 10, 10)
	require.True(t, s.CanUndo())
	require.True(t, s.Undo())
	st := s.State()
	assert.Equal(t, []string{a, b}, st.Docked())
	assert.Equal(t, docked.Widgets, st.Widgets)
	assert.Greater(t, st.Version, docked.Version)
	requireConsistent(t, st)

	require.True(t, s.CanRedo())
	require.True(t, s.Redo())
	st = s.State()
	assert.Equal(t, []string{a}, st.Docked())
	w, _ := st.Widget(b)
	assert.Equal(t, ModeFloating, w.Mode)

	// a new command clears redo
	s.Undo()
	s.BringToFront(a)
	assert.False(t, s.CanRedo())
}

func TestUndoCoalescesBursts(t *testing.T) {
	now := time.Unix(0, 0)
	s := New(Options{
		NewID:   seqIDs(),
		History: undo.NewManager(undo.Config{MinInterval: 100 * time.Millisecond}),
		Now:     func() time.Time { return now },
	})
	id := s.AddWidget(module.Chat)
	now = now.Add(time.Second)
	for i := 1; i <= 5; i++ {
		now = now.Add(10 * time.Millisecond)
		s.UpdateWidget(id, Patch{X: ptr(float64(100 + i))})
	}
	require.True(t, s.Undo())
	w, _ := s.State().Widget(id)
	assert.Equal(t, 80.0, w.X, "one undo rewinds the whole drag")
}

func TestUndoKeepsClosesOfDifferentWidgetsApart(t *testing.T) {
	now := time.Unix(0, 0)
	s := New(Options{
		NewID:   seqIDs(),
		History: undo.NewManager(undo.Config{MinInterval: 250 * time.Millisecond}),
		Now:     func() time.Time { return now },
	})
	a := s.AddWidget(module.Chat)
	b := s.AddWidget(module.Feed)
	now = now.Add(time.Second)
	s.CloseWidget(a)
	now = now.Add(10 * time.Millisecond)
	s.CloseWidget(b)
	require.Empty(t, s.State().Widgets)

	require.True(t, s.Undo())
	st := s.State()
	require.Len(t, st.Widgets, 1)
	assert.Equal(t, b, st.Widgets[0].ID)
}

func TestUndoReconcilesWindows(t *testing.T) {
	host := windowhost.NewRecorder()
	s := New(Options{Host: host, NewID: seqIDs(), History: undo.NewManager(undo.Config{})})
	id := s.EnsureDocked(module.Music)
	label := windowhost.LabelFor(id)

	s.SpawnWidgetWindow(id)
	require.True(t, host.IsOpen(label))

	s.Undo()
	assert.False(t, host.IsOpen(label))
	assert.Equal(t, []string{id}, s.State().Docked())

	s.Redo()
	assert.True(t, host.IsOpen(label))
	assert.Nil(t, s.State().Root)
}

func TestUndoOfResetBringsWidgetsBack(t *testing.T) {
	s := New(Options{NewID: seqIDs(), History: undo.NewManager(undo.Config{})})
	a := s.EnsureDocked(module.Chat)
	b := s.EnsureDocked(module.Feed)
	split := s.State().Root.(*dock.Split)
	s.SetDockSplitRatio(split.ID, 0.7)

	s.ResetLayout()
	require.Empty(t, s.State().Widgets)
	require.True(t, s.Undo())
	st := s.State()
	assert.Equal(t, []string{a, b}, st.Docked())
	assert.Equal(t, 0.7, st.Root.(*dock.Split).Ratio)
}
