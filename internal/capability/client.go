/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package capability fetches the per-account module switches that decide
// which widget classes may exist in the workspace.
package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dockspace/internal/config"
	applog "dockspace/internal/log"
	"dockspace/internal/module"
)

// DefaultTimeout bounds every request unless the caller supplies its own
// http.Client.
const DefaultTimeout = 10 * time.Second

// Client talks to the account service.
type Client struct {
	BaseURL string
	Token   string // bearer token
	HTTP    *http.Client
	log     *slog.Logger
}

// NewClient creates a client. baseURL may include a trailing slash; it is
// normalized.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: DefaultTimeout},
		log:     applog.WithComponent("capability"),
	}
}

// FromConfig builds a client from the capability section of cfg and the
// token held by the config token store.
func FromConfig(cfg config.CapabilityConfig) *Client {
	c := NewClient(cfg.BaseURL, config.Token())
	c.HTTP.Timeout = cfg.Timeout()
	return c
}

// Modules is the module switch map as the service reports it.
type Modules struct {
	Enabled  map[module.ID]bool `json:"modulesEnabled"`
	FirstRun bool               `json:"firstRun"`
}

// Modules returns the enabled map. Ids the registry does not know are
// dropped.
func (c *Client) Modules(ctx context.Context) (Modules, error) {
	var out Modules
	if err := c.doJSON(ctx, http.MethodGet, "/modules", nil, &out); err != nil {
		return Modules{}, err
	}
	out.Enabled = filterKnown(out.Enabled)
	return out, nil
}

// PutModules stores the switches and returns what the service accepted.
func (c *Client) PutModules(ctx context.Context, enabled map[module.ID]bool) (Modules, error) {
	body := struct {
		Enabled map[module.ID]bool `json:"modulesEnabled"`
	}{Enabled: filterKnown(enabled)}
	var out Modules
	if err := c.doJSON(ctx, http.MethodPut, "/modules", body, &out); err != nil {
		return Modules{}, err
	}
	out.Enabled = filterKnown(out.Enabled)
	return out, nil
}

func filterKnown(in map[module.ID]bool) map[module.ID]bool {
	out := make(map[module.ID]bool, len(in))
	for id, on := range in {
		if module.Known(id) {
			out[id] = on
		}
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, dest any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	hc := c.HTTP
	if hc == nil {
		hc = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("capability %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("capability %s %s: %s", method, path, e.Error)
		}
		return fmt.Errorf("capability %s %s: %s", method, path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("capability %s %s: decode: %w", method, path, err)
	}
	if c.log != nil {
		c.log.Debug("capability call", slog.String("method", method), slog.String("path", path))
	}
	return nil
}

// Applier receives a module switch map. *workspace.Store implements it.
type Applier interface {
	ApplyEnabledModules(enabled map[module.ID]bool)
}

// Sync fetches the switches and hands them to a.
func (c *Client) Sync(ctx context.Context, a Applier) (Modules, error) {
	m, err := c.Modules(ctx)
	if err != nil {
		return Modules{}, err
	}
	a.ApplyEnabledModules(m.Enabled)
	return m, nil
}
