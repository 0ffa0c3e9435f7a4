/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a top-level panic into a logged error, a report file
// and a last autosave of the workspace layout.
package crash

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	applog "dockspace/internal/log"
	"dockspace/internal/telemetry"
	"dockspace/internal/version"
)

// exitFn is swapped in tests.
var exitFn = os.Exit

// autosaveTimeout bounds the final layout save.
const autosaveTimeout = 2 * time.Second

// Flusher persists pending state. *workspace.Autosaver implements it.
type Flusher interface {
	Flush(ctx context.Context) error
}

// Handler carries what Recover needs. Create it before anything that may
// panic and fill in the autosaver once it exists.
type Handler struct {
	mu        sync.Mutex
	reportDir string
	autosave  Flusher
	telemetry *telemetry.Client
}

// NewHandler writes reports to reportDir, or to the OS temp dir when it is
// empty.
func NewHandler(reportDir string) *Handler {
	return &Handler{reportDir: reportDir}
}

func (h *Handler) SetReportDir(dir string) {
	h.mu.Lock()
	h.reportDir = dir
	h.mu.Unlock()
}

func (h *Handler) SetAutosave(f Flusher) {
	h.mu.Lock()
	h.autosave = f
	h.mu.Unlock()
}

func (h *Handler) SetTelemetry(c *telemetry.Client) {
	h.mu.Lock()
	h.telemetry = c
	h.mu.Unlock()
}

func (h *Handler) snapshot() (string, Flusher, *telemetry.Client) {
	if h == nil {
		return "", nil, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reportDir, h.autosave, h.telemetry
}

// Recover must be deferred directly:
//
//	h := crash.NewHandler(dir)
//	defer crash.Recover(h)
//
// On panic it logs the stack, writes a report, flushes the layout autosave
// and exits with code 2.
func Recover(h *Handler) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	dir, saver, tc := h.snapshot()
	report := buildReport(r, stack)
	path, err := writeReport(dir, report)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if saver != nil {
		ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
		if err := saver.Flush(ctx); err != nil {
			l.Error("layout autosave failed", slog.Any("err", err))
		} else {
			l.Info("layout autosaved after panic")
		}
		cancel()
	}
	if tc == nil {
		tc = telemetry.Default()
	}
	tc.UploadCrash(report)

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", path)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

func buildReport(panicVal any, stack []byte) []byte {
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "dockspace crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", stack)
	return buf.Bytes()
}

func writeReport(dir string, report []byte) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return path, err
	}
	return path, nil
}
