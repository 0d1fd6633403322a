package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/importer"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/project"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newInitCommand() *cobra.Command {
	var name, template, frame, tool string
	var force bool

	cmd := &cobra.Command{
		Use:   "init <project>",
		Short: "Create an empty panel project",
		Long: `Creates a project file (.json or .yaml) using the saved default settings,
or the holes and settings of a saved template.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := project.FormatOf(path); err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if name == "" {
				name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			proj, err := newProject(name, template)
			if err != nil {
				return err
			}
			if frame != "" || tool != "" {
				inv, err := project.LoadInventory(inventoryPath())
				if err != nil {
					return fmt.Errorf("inventory: %w", err)
				}
				if frame != "" {
					preset := inv.FindFrameByName(frame)
					if preset == nil {
						return fmt.Errorf("frame preset %q: %w", frame, model.ErrNotFound)
					}
					proj.Settings.Frame = preset.ToFrame()
				}
				if tool != "" {
					t := inv.FindToolByName(tool)
					if t == nil {
						return fmt.Errorf("tool %q: %w", tool, model.ErrNotFound)
					}
					t.ApplyToSettings(&proj.Settings)
				}
			}

			if err := project.SaveProject(path, proj); err != nil {
				return err
			}
			if err := project.TouchRecent(configPath(), path); err != nil {
				logger.Warnf("recent projects: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Project name (default: file name)")
	cmd.Flags().StringVar(&template, "template", "", "Start from a saved template")
	cmd.Flags().StringVar(&frame, "frame", "", "Frame preset from the inventory")
	cmd.Flags().StringVar(&tool, "tool", "", "Router tool from the inventory")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newProject(name, template string) (model.Project, error) {
	if template != "" {
		store, err := project.LoadTemplates(templatesPath())
		if err != nil {
			return model.Project{}, fmt.Errorf("templates: %w", err)
		}
		t := store.FindByName(template)
		if t == nil {
			return model.Project{}, fmt.Errorf("template %q: %w", template, model.ErrNotFound)
		}
		return t.ToProject(name), nil
	}
	cfg, err := project.LoadAppConfig(configPath())
	if err != nil {
		logger.Warnf("config: %v, using defaults", err)
		cfg = model.DefaultAppConfig()
	}
	proj := model.NewProject()
	proj.Name = name
	cfg.ApplyToSettings(&proj.Settings)
	return proj, nil
}

func newImportCommand() *cobra.Command {
	var x, y, rotation float64
	var flags []string

	cmd := &cobra.Command{
		Use:   "import <project> <file>...",
		Short: "Add boards from DXF outlines or a placement table",
		Long: `Adds boards to the project. A .dxf file adds one board; several DXF files
are placed left to right starting at --x, --y. A .csv or .xlsx placement
table adds one board per row at the position it names.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			added := 0
			_, err := editProject(cmd.Context(), path, func(s *session) error {
				spacing := s.ctl.Project().Settings.Spacing
				nextX := x
				for _, file := range args[1:] {
					var boards []model.Board
					switch strings.ToLower(filepath.Ext(file)) {
					case ".dxf":
						r := importer.ImportDXF(file)
						if err := importProblems(file, r); err != nil {
							return err
						}
						for _, b := range r.Boards {
							b.X, b.Y, b.Rotation = nextX, y, rotation
							b.Flags = flags
							nextX += b.Width() + spacing
							boards = append(boards, b)
						}
					default:
						r := importer.ImportPlacements(file)
						if err := importProblems(file, r); err != nil {
							return err
						}
						boards = r.Boards
					}
					for _, b := range boards {
						b.File = relativeTo(path, b.File)
						if err := s.ctl.AddBoard(b); err != nil {
							return err
						}
						added++
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d boards\n", added)
			return nil
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "X position of the first board (mm)")
	cmd.Flags().Float64Var(&y, "y", 0, "Y position of the boards (mm)")
	cmd.Flags().Float64Var(&rotation, "rotation", 0, "Rotation in degrees")
	cmd.Flags().StringSliceVar(&flags, "flags", nil, "Build flags for the boards")
	return cmd
}

// importProblems logs the warnings of an import and fails when nothing
// could be imported.
func importProblems(file string, r importer.ImportResult) error {
	for _, w := range r.Warnings {
		logger.Warnf("%s: %s", file, w)
	}
	if len(r.Boards) == 0 {
		if len(r.Errors) == 0 {
			return fmt.Errorf("%s: no boards found", file)
		}
		return fmt.Errorf("%s: %s", file, strings.Join(r.Errors, "; "))
	}
	for _, e := range r.Errors {
		logger.Warnf("%s: %s", file, e)
	}
	return nil
}

// relativeTo rewrites file relative to the project's directory when it can.
func relativeTo(projectPath, file string) string {
	if file == "" {
		return file
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return file
	}
	dir, err := filepath.Abs(filepath.Dir(projectPath))
	if err != nil {
		return file
	}
	if rel, err := filepath.Rel(dir, abs); err == nil {
		return rel
	}
	return file
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <project> <key=value>...",
		Short: "Change panel settings",
		Long: `Changes panel settings by their file names. Nested settings use dots,
for example frame.width=120 or machine.feed_rate=800.`,
		Example: `  panelcut set panel.yaml spacing=2 cut_method=mb
  panelcut set panel.yaml frame.tight=false machine.gcode_profile=Grbl`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := editProject(cmd.Context(), args[0], func(s *session) error {
				settings, err := applySettings(s.ctl.Project().Settings, args[1:])
				if err != nil {
					return err
				}
				return s.ctl.UpdateSettings(func(ps *model.PanelSettings) { *ps = settings })
			})
			return err
		},
	}
}

// applySettings sets dotted keys on a copy of the settings. Values are
// parsed as YAML scalars; keys must already exist.
func applySettings(settings model.PanelSettings, assignments []string) (model.PanelSettings, error) {
	data, err := json.Marshal(settings)
	if err != nil {
		return settings, err
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return settings, err
	}

	for _, a := range assignments {
		key, raw, ok := strings.Cut(a, "=")
		if !ok {
			return settings, fmt.Errorf("%q: expected key=value", a)
		}
		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			return settings, fmt.Errorf("%s: %w", key, err)
		}
		if err := setPath(tree, strings.Split(key, "."), value); err != nil {
			return settings, err
		}
	}

	if data, err = json.Marshal(tree); err != nil {
		return settings, err
	}
	var out model.PanelSettings
	if err := json.Unmarshal(data, &out); err != nil {
		return settings, fmt.Errorf("invalid setting: %w", err)
	}
	if !out.CutMethod.Valid() {
		return settings, fmt.Errorf("unknown cut method %q", out.CutMethod)
	}
	return out, nil
}

func setPath(tree map[string]any, path []string, value any) error {
	key := path[0]
	cur, ok := tree[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if len(path) == 1 {
		if _, nested := cur.(map[string]any); nested {
			return fmt.Errorf("setting %q is a group", key)
		}
		tree[key] = value
		return nil
	}
	sub, ok := cur.(map[string]any)
	if !ok {
		return fmt.Errorf("setting %q has no %q", key, path[1])
	}
	if err := setPath(sub, path[1:], value); err != nil {
		return fmt.Errorf("%s.%w", key, err)
	}
	return nil
}

func newAlignCommand() *cobra.Command {
	var board string
	cmd := &cobra.Command{
		Use:   "align <project> <top|bottom|left|right>",
		Short: "Push boards against a side of the frame",
		Long: `Moves every board, or only --board, towards a side until it touches another
board (keeping the spacing) or the rail.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, ok := engine.ParseSide(args[1])
			if !ok {
				return fmt.Errorf("unknown side %q", args[1])
			}
			_, err := editProject(cmd.Context(), args[0], func(s *session) error {
				id := ""
				if board != "" {
					var err error
					if id, err = boardID(s.ctl.Project(), board); err != nil {
						return err
					}
				}
				return s.ctl.Align(side, id)
			})
			return err
		},
	}
	cmd.Flags().StringVar(&board, "board", "", "Only align this board (ID or 1-based index)")
	return cmd
}

func newFitFrameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fit-frame <project>",
		Short: "Resize the frame around the boards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := editProject(cmd.Context(), args[0], func(s *session) error {
				return s.ctl.FitFrame()
			})
			if err != nil {
				return err
			}
			f := proj.Settings.Frame
			fmt.Fprintf(cmd.OutOrStdout(), "frame %.3f x %.3f mm\n", f.Width, f.Height)
			return nil
		},
	}
}

func newHoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hole",
		Short: "Edit keep-out holes",
	}

	var w, h float64
	add := &cobra.Command{
		Use:   "add <project> <x> <y>",
		Short: "Add a rectangular hole with its top left corner at x, y",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pt, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			x, y := pt[0], pt[1]
			hole := model.NewHole(model.Outline{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}})
			_, err = editProject(cmd.Context(), args[0], func(s *session) error {
				return s.ctl.AddHole(hole)
			})
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "added hole %s\n", hole.ID)
			}
			return err
		},
	}
	add.Flags().Float64Var(&w, "width", 10, "Hole width (mm)")
	add.Flags().Float64Var(&h, "height", 10, "Hole height (mm)")

	remove := &cobra.Command{
		Use:   "remove <project> <id>",
		Short: "Remove a hole",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := editProject(cmd.Context(), args[0], func(s *session) error {
				return s.ctl.RemoveHole(args[1])
			})
			return err
		},
	}

	move := &cobra.Command{
		Use:   "move <project> <id> <dx> <dy>",
		Short: "Move a hole",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseFloats(args[2:])
			if err != nil {
				return err
			}
			_, err = editProject(cmd.Context(), args[0], func(s *session) error {
				return s.ctl.MoveHole(args[1], d[0], d[1])
			})
			return err
		},
	}

	generate := &cobra.Command{
		Use:   "generate <project>",
		Short: "Turn substrate enclosed by boards into holes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int
			_, err := editProject(cmd.Context(), args[0], func(s *session) error {
				var err error
				n, err = s.ctl.GenerateHoles()
				return err
			})
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "added %d holes\n", n)
			}
			return err
		},
	}

	list := &cobra.Command{
		Use:   "list <project>",
		Short: "List the holes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := project.LoadProject(args[0])
			if err != nil {
				return err
			}
			rows := [][]string{}
			for _, h := range loaded.Project.Holes {
				box, ok := h.BoundingBox()
				if !ok {
					continue
				}
				rows = append(rows, []string{h.ID,
					fmt.Sprintf("%.2f, %.2f", box.Min.X, box.Min.Y),
					fmt.Sprintf("%.2f x %.2f", box.Max.X-box.Min.X, box.Max.Y-box.Min.Y)})
			}
			fmt.Fprint(cmd.OutOrStdout(), newStyles(cmd.OutOrStdout()).table([]string{"ID", "Position", "Size"}, rows))
			return nil
		},
	}

	cmd.AddCommand(add, remove, move, generate, list)
	return cmd
}

// parseFloats parses numeric arguments. Negative numbers need a "--"
// before them so they are not read as flags.
func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", a)
		}
		out[i] = v
	}
	return out, nil
}
