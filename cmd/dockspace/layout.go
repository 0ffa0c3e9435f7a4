/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dockspace/internal/dock"
	"dockspace/internal/geom"
	"dockspace/internal/module"
	"dockspace/internal/storage"
	"dockspace/internal/workspace"
)

func newLayoutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and edit the saved workspace layout",
	}
	cmd.AddCommand(
		newLayoutShowCmd(a),
		newLayoutResetCmd(a),
		newLayoutValidateCmd(),
		newLayoutAddCmd(a),
	)
	return cmd
}

// layoutView is the JSON form of `layout show`.
type layoutView struct {
	Widgets []workspace.Widget        `json:"widgets"`
	Tree    dock.Tree                 `json:"tree"`
	Rects   map[dock.NodeID]geom.Rect `json:"rects"`
}

func newLayoutShowCmd(a *app) *cobra.Command {
	var width, height float64
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print widgets and the dock tree with computed rectangles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if width <= 0 || height <= 0 {
				return errors.New("--width and --height must be positive")
			}
			return a.withWorkspace(cmd.Context(), false, func(s *workspace.Store) error {
				st := s.State()
				rects := dock.Layout(st.Root, geom.R(0, 0, width, height))
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					widgets := st.Widgets
					if widgets == nil {
						widgets = []workspace.Widget{}
					}
					return enc.Encode(layoutView{Widgets: widgets, Tree: dock.Tree{Root: st.Root}, Rects: rects})
				}
				printLayout(out, st, rects)
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&width, "width", 1280, "workspace width in pixels")
	cmd.Flags().Float64Var(&height, "height", 800, "workspace height in pixels")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}

func fmtRect(r geom.Rect) string {
	return fmt.Sprintf("%g,%g %gx%g", r.X, r.Y, r.W, r.H)
}

func printLayout(w io.Writer, st workspace.State, rects map[dock.NodeID]geom.Rect) {
	fmt.Fprintf(w, "widgets (%d):\n", len(st.Widgets))
	for _, wd := range st.Widgets {
		line := fmt.Sprintf("  %s  %-16s %-8s %s", wd.ID, wd.ModuleID, wd.Mode, wd.Host)
		if wd.Mode == workspace.ModeFloating {
			line += fmt.Sprintf("  [%s] z=%d", fmtRect(wd.Rect()), wd.Z)
		}
		if wd.Pinned {
			line += "  pinned"
		}
		if wd.ParentGroupID != "" {
			line += "  nav=" + wd.ParentGroupID
		}
		fmt.Fprintln(w, line)
	}
	if st.Root == nil {
		fmt.Fprintln(w, "tree: empty")
		return
	}
	fmt.Fprintln(w, "tree:")
	printNode(w, st.Root, rects, 1)
}

func printNode(w io.Writer, n dock.Node, rects map[dock.NodeID]geom.Rect, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := n.(type) {
	case *dock.Leaf:
		fmt.Fprintf(w, "%sleaf %v active=%s [%s]\n", indent, v.WidgetIDs, v.ActiveWidgetID, fmtRect(rects[v.ID]))
	case *dock.Split:
		fmt.Fprintf(w, "%ssplit %s %.2f [%s]\n", indent, v.Direction, v.Ratio, fmtRect(rects[v.ID]))
		printNode(w, v.Children[0], rects, depth+1)
		printNode(w, v.Children[1], rects, depth+1)
	}
}

func newLayoutResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete the saved layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blob, err := a.openBlob(cmd.Context())
			if err != nil {
				return err
			}
			defer blob.Close()
			err = blob.Delete(cmd.Context(), a.cfg.Workspace.StorageKey)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "layout reset")
			return nil
		},
	}
}

func newLayoutValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a layout JSON file against the layout schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := storage.ValidateLayout(data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", args[0])
			return nil
		},
	}
}

func newLayoutAddCmd(a *app) *cobra.Command {
	var side string
	cmd := &cobra.Command{
		Use:   "add <module>",
		Short: "Add a widget, floating or docked at a workspace edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := module.ID(args[0])
			if !module.Known(id) {
				return fmt.Errorf("unknown module %q", args[0])
			}
			dockSide := dock.Side(strings.ToLower(side))
			if side != "" && !dockSide.Valid() {
				return fmt.Errorf("invalid --dock %q: want left, right, top or bottom", side)
			}
			return a.withWorkspace(cmd.Context(), true, func(s *workspace.Store) error {
				wid := s.AddWidget(id)
				if side != "" {
					s.DockWidget(wid, dockSide)
				}
				fmt.Fprintln(cmd.OutOrStdout(), wid)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&side, "dock", "", "dock the new widget at this workspace edge")
	return cmd
}
