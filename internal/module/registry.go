/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package module is the registry of widget content modules and their size
// constraints.
package module

import "sort"

// ID selects the content a widget hosts.
type ID string

const (
	Chat            ID = "chat"
	Feed            ID = "feed"
	Music           ID = "music"
	MotionWallpaper ID = "motion_wallpaper"
	Welcome         ID = "welcome"
	Shortcut        ID = "shortcut"
	Nav             ID = "nav"
)

// Constraints are the minimum size a widget of a module may take.
type Constraints struct {
	MinWidth  float64
	MinHeight float64
}

// Module describes one entry of the registry.
type Module struct {
	ID          ID
	Title       string
	Constraints Constraints
	// NavCapable modules aggregate other widgets as children.
	NavCapable bool
}

var defaultConstraints = Constraints{MinWidth: 400, MinHeight: 600}

var registry = map[ID]Module{
	Chat:            {ID: Chat, Title: "Chat", Constraints: defaultConstraints},
	Feed:            {ID: Feed, Title: "Feed", Constraints: defaultConstraints},
	Music:           {ID: Music, Title: "Music", Constraints: defaultConstraints},
	MotionWallpaper: {ID: MotionWallpaper, Title: "Motion Wallpaper", Constraints: defaultConstraints},
	Welcome:         {ID: Welcome, Title: "Welcome", Constraints: defaultConstraints},
	Shortcut:        {ID: Shortcut, Title: "Shortcut", Constraints: defaultConstraints},
	Nav:             {ID: Nav, Title: "Navigation", Constraints: defaultConstraints, NavCapable: true},
}

// Lookup returns the module registered under id.
func Lookup(id ID) (Module, bool) {
	m, ok := registry[id]
	return m, ok
}

func Known(id ID) bool {
	_, ok := registry[id]
	return ok
}

func IsNavCapable(id ID) bool {
	return registry[id].NavCapable
}

// ConstraintsFor returns the constraints of id, falling back to the defaults
// for unknown modules.
func ConstraintsFor(id ID) Constraints {
	if m, ok := registry[id]; ok {
		return m.Constraints
	}
	return defaultConstraints
}

// IDs lists all registered modules, sorted.
func IDs() []ID {
	out := make([]ID, 0, len(registry))
	for id := range registry {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
