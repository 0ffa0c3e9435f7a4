/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps a bounded undo/redo history of layout snapshots.
package undo

import (
	"sync"
	"time"
)

// Snapshot is an opaque encoded layout captured before a command ran. Op names
// that command; TS is when it was captured.
type Snapshot struct {
	Op string
	// Target names what Op acted on; pushes coalesce only when both match.
	Target string
	Blob   []byte
	TS     time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap on the undo stack; the oldest entries go first.
	MaxBytes int
	// MaxDepth limits the number of undo entries (0 means unlimited).
	MaxDepth int
	// MinInterval merges a burst of the same command (a live drag sends many
	// geometry patches) into one entry. The earliest snapshot of the burst is
	// kept so a single undo returns to where the burst started.
	MinInterval time.Duration
}

// Manager is a linear undo/redo history. It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       []Snapshot
	redo       []Snapshot
	totalBytes int
	// lastPush is when the top undo entry was last extended by coalescing.
	lastPush time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 8 * 1024 * 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg}
}

// Push records the state before a command. Any new command clears redo.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo = nil
	if n := len(m.undo); n > 0 && m.cfg.MinInterval > 0 {
		last := m.undo[n-1]
		if last.Op == s.Op && last.Target == s.Target && s.TS.Sub(m.lastPush) < m.cfg.MinInterval {
			m.lastPush = s.TS
			return
		}
	}
	m.undo = append(m.undo, s)
	m.totalBytes += len(s.Blob)
	m.lastPush = s.TS
	m.enforceCapsLocked()
}

// Undo pops the most recent snapshot. current is the state being left; it is
// kept for Redo.
func (m *Manager) Undo(current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.totalBytes -= len(s.Blob)
	m.redo = append(m.redo, Snapshot{Op: s.Op, Target: s.Target, Blob: current, TS: time.Now()})
	m.lastPush = time.Time{}
	return s, true
}

// Redo reapplies the last undone step. current is the state being left; it
// goes back onto the undo stack.
func (m *Manager) Redo(current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, Snapshot{Op: s.Op, Target: s.Target, Blob: current, TS: time.Now()})
	m.totalBytes += len(current)
	m.lastPush = time.Time{}
	m.enforceCapsLocked()
	return s, true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear drops the whole history.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
	m.totalBytes = 0
	m.lastPush = time.Time{}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, undoDepth int, redoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes, len(m.undo), len(m.redo)
}

func (m *Manager) enforceCapsLocked() {
	drop := 0
	if m.cfg.MaxDepth > 0 && len(m.undo) > m.cfg.MaxDepth {
		drop = len(m.undo) - m.cfg.MaxDepth
	}
	for i := 0; i < drop; i++ {
		m.totalBytes -= len(m.undo[i].Blob)
	}
	// keep at least the newest entry even if it alone exceeds MaxBytes
	for drop < len(m.undo)-1 && m.totalBytes > m.cfg.MaxBytes {
		m.totalBytes -= len(m.undo[drop].Blob)
		drop++
	}
	if drop > 0 {
		m.undo = append([]Snapshot(nil), m.undo[drop:]...)
	}
}
