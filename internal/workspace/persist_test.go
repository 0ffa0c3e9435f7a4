/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package workspace

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dockspace/internal/config"
	"dockspace/internal/module"
	"dockspace/internal/storage"
	"dockspace/internal/windowhost"
)

type memBlob struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newMemBlob() *memBlob { return &memBlob{data: map[string][]byte{}} }

func (m *memBlob) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return b, nil
}

func (m *memBlob) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memBlob) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memBlob) Close() error { return nil }

func (m *memBlob) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func TestSaveWritesWidgetListOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	s.EnsureDocked(module.Chat)
	s.AddWidget(module.Feed)
	blob := newMemBlob()
	require.NoError(t, s.Save(ctx, blob, config.DefaultStorageKey))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(blob.data[config.DefaultStorageKey], &raw))
	assert.Contains(t, raw, "widgets")
	assert.Len(t, raw, 1)
	require.NoError(t, storage.ValidateLayout(blob.data[config.DefaultStorageKey]))
}

func TestLoadAppliesRestoreRules(t *testing.T) {
	ctx := context.Background()
	blob := newMemBlob()
	blob.data["k"] = []byte(`{"widgets":[
		{"id":"a","moduleId":"chat","mode":"dock","host":"embedded","x":0,"y":0,"w":520,"h":620,"z":1},
		{"id":"b","moduleId":"retired","mode":"floating","host":"embedded","x":0,"y":0,"w":520,"h":620,"z":2},
		{"id":"c","moduleId":"music","mode":"floating","host":"external-window","windowHandle":"widget-c","x":5,"y":5,"w":10,"h":10,"z":3},
		{"id":"d","moduleId":"feed","mode":"dock","host":"embedded","x":0,"y":0,"w":520,"h":620,"z":4},
		{"id":"a","moduleId":"feed","mode":"floating","host":"embedded","x":0,"y":0,"w":520,"h":620,"z":5}
	]}`)

	s := newTestStore(t, nil)
	require.NoError(t, s.Load(ctx, blob, "k"))
	st := s.State()
	require.Len(t, st.Widgets, 3)
	assert.Equal(t, []string{"a", "d"}, st.Docked())

	c, ok := st.Widget("c")
	require.True(t, ok)
	assert.Equal(t, HostEmbedded, c.Host, "no window host in this session")
	assert.Equal(t, ModeFloating, c.Mode)
	assert.Empty(t, c.WindowHandle)
	assert.Equal(t, 400.0, c.W)
	assert.Equal(t, 600.0, c.H)
	requireConsistent(t, st)

	// z keeps increasing past the restored values
	id := s.AddWidget(module.Welcome)
	w, _ := s.State().Widget(id)
	assert.Equal(t, int64(5), w.Z)
}

func TestLoadReopensWindowsWhenHostAvailable(t *testing.T) {
	host := windowhost.NewRecorder()
	s := newTestStore(t, host)
	err := s.Restore([]byte(`{"widgets":[{"id":"c","moduleId":"music","mode":"dock","host":"external-window","x":0,"y":0,"w":520,"h":620,"z":1}]}`))
	require.NoError(t, err)
	w, _ := s.State().Widget("c")
	assert.Equal(t, HostExternal, w.Host)
	assert.Equal(t, ModeFloating, w.Mode)
	assert.Equal(t, windowhost.LabelFor("c"), w.WindowHandle)
	assert.True(t, host.IsOpen(windowhost.LabelFor("c")))
	requireConsistent(t, s.State())
}

func TestLoadMissingKeyAndInvalidBlob(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, nil)
	blob := newMemBlob()
	require.NoError(t, s.Load(ctx, blob, "absent"))
	assert.Empty(t, s.State().Widgets)

	s.AddWidget(module.Chat)
	blob.data["bad"] = []byte(`{"widgets":[{"id":"x","mode":"sideways"}]}`)
	require.Error(t, s.Load(ctx, blob, "bad"))
	assert.Len(t, s.State().Widgets, 1, "state untouched on a rejected blob")
}

func TestSaveLoadRoundTripThroughFileStore(t *testing.T) {
	ctx := context.Background()
	fs, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)

	s := newTestStore(t, nil)
	nav := s.AddWidget(module.Nav)
	child := s.AddToNav(module.Chat, nav)
	s.EnsureDocked(module.Feed)
	require.NoError(t, s.Save(ctx, fs, "layout"))

	restored := New(Options{})
	require.NoError(t, restored.Load(ctx, fs, "layout"))
	a, b := s.State(), restored.State()
	assert.Equal(t, a.Widgets, b.Widgets)
	assert.Equal(t, a.Docked(), b.Docked())
	c, _ := b.Widget(child)
	assert.Equal(t, nav, c.ParentGroupID)
}

func TestAutosaverDebouncesAndFlushes(t *testing.T) {
	s := newTestStore(t, nil)
	blob := newMemBlob()
	a := NewAutosaver(s, blob, "k", time.Hour)

	s.AddWidget(module.Chat)
	s.AddWidget(module.Feed)
	assert.Equal(t, 0, blob.saveCount(), "nothing written before the delay")

	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 1, blob.saveCount())
	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 1, blob.saveCount(), "clean flush writes nothing")

	s.AddWidget(module.Music)
	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 2, blob.saveCount())

	s.AddWidget(module.Welcome)
	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 2, blob.saveCount(), "closed autosaver no longer listens")
}

func TestAutosaverSavesAfterDelay(t *testing.T) {
	s := newTestStore(t, nil)
	blob := newMemBlob()
	a := NewAutosaver(s, blob, "k", 20*time.Millisecond)
	defer a.Close(context.Background())

	s.AddWidget(module.Chat)
	assert.Eventually(t, func() bool { return blob.saveCount() == 1 }, 2*time.Second, 10*time.Millisecond)
}
