/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package windowhost

import (
	"context"
	"sync"
)

// Call is one request a Recorder received.
type Call struct {
	Op       string
	Label    string
	WidgetID string
	ModuleID string
	Payload  *HydratePayload
}

// Recorder is an in-memory Host that remembers every call and tracks which
// labels are open. Err, when set, is returned from every call after it has
// been recorded, which models a host that accepted nothing.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
	open  map[string]bool
	Err   error
}

func NewRecorder() *Recorder { return &Recorder{open: map[string]bool{}} }

func (r *Recorder) Open(_ context.Context, label, widgetID, moduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "open", Label: label, WidgetID: widgetID, ModuleID: moduleID})
	if r.Err != nil {
		return r.Err
	}
	r.open[label] = true
	return nil
}

func (r *Recorder) Close(_ context.Context, label string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "close", Label: label})
	if r.Err != nil {
		return r.Err
	}
	delete(r.open, label)
	return nil
}

func (r *Recorder) Hydrate(_ context.Context, label string, payload HydratePayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := payload
	r.calls = append(r.calls, Call{Op: "hydrate", Label: label, WidgetID: payload.WidgetID, ModuleID: payload.ModuleID, Payload: &p})
	return r.Err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// IsOpen reports whether label is currently open.
func (r *Recorder) IsOpen(label string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open[label]
}
