package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/PanelCut/internal/project"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

// boardCommand builds a board edit: args[0] is the project, args[1] the
// board reference, the rest go to edit.
func boardCommand(use, short string, nargs int, edit func(s *session, id string, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := editProject(cmd.Context(), args[0], func(s *session) error {
				id, err := boardID(s.ctl.Project(), args[1])
				if err != nil {
					return err
				}
				return edit(s, id, args[2:])
			})
			return err
		},
	}
}

func newBoardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "List and edit the boards of a panel",
		Long: `Boards are named by their ID or by their 1-based position in the list.
Negative offsets need "--" before the positional arguments.`,
	}

	list := &cobra.Command{
		Use:   "list <project>",
		Short: "List the boards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := project.LoadProject(args[0])
			if err != nil {
				return err
			}
			rows := [][]string{}
			for i, b := range loaded.Project.Boards {
				flags := strings.Join(b.Flags, ",")
				if len(b.AvailFlags) > 0 {
					flags += " (" + strings.Join(b.AvailFlags, ",") + ")"
				}
				rows = append(rows, []string{
					strconv.Itoa(i + 1), b.ID, b.Ident,
					fmt.Sprintf("%.2f, %.2f", b.X, b.Y),
					fmt.Sprintf("%g", b.Rotation),
					fmt.Sprintf("%.2f x %.2f", b.Width(), b.Height()),
					strconv.Itoa(len(b.Tabs)),
					flags,
				})
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, newStyles(w).table([]string{"#", "ID", "Ident", "Position", "Rotation", "Size", "Tabs", "Flags"}, rows))
			return nil
		},
	}

	move := boardCommand("move <project> <board> <dx> <dy>", "Move a board", 4,
		func(s *session, id string, args []string) error {
			d, err := parseFloats(args)
			if err != nil {
				return err
			}
			return s.ctl.MoveBoard(id, d[0], d[1])
		})

	rotate := boardCommand("rotate <project> <board> <degrees>", "Rotate a board about its centre", 3,
		func(s *session, id string, args []string) error {
			d, err := parseFloats(args)
			if err != nil {
				return err
			}
			return s.ctl.RotateBoard(id, d[0])
		})

	clone := &cobra.Command{
		Use:   "clone <project> <board>",
		Short: "Add a copy of a board at the panel origin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var newID string
			_, err := editProject(cmd.Context(), args[0], func(s *session) error {
				id, err := boardID(s.ctl.Project(), args[1])
				if err != nil {
					return err
				}
				newID, err = s.ctl.CloneBoard(id)
				return err
			})
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "added board %s\n", newID)
			}
			return err
		},
	}

	remove := boardCommand("remove <project> <board>", "Remove a board", 2,
		func(s *session, id string, _ []string) error {
			return s.ctl.RemoveBoard(id)
		})

	flags := &cobra.Command{
		Use:   "flags <project> <board> [flag]...",
		Short: "Select the build flags of a board",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := editProject(cmd.Context(), args[0], func(s *session) error {
				id, err := boardID(s.ctl.Project(), args[1])
				if err != nil {
					return err
				}
				return s.ctl.SetBoardFlags(id, args[2:])
			})
			return err
		},
	}

	cmd.AddCommand(list, move, rotate, clone, remove, flags)
	return cmd
}

func newTabCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tab",
		Short: "Add or remove manual tabs",
	}

	add := boardCommand("add <project> <board> <x> <y>", "Add a tab reaching from a panel point to the closest board edge", 4,
		func(s *session, id string, args []string) error {
			p, err := parseFloats(args)
			if err != nil {
				return err
			}
			return s.ctl.AddTab(id, r2.Vec{X: p[0], Y: p[1]})
		})

	remove := boardCommand("remove <project> <board> <n>", "Remove tab n (0-based) of a board", 3,
		func(s *session, id string, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%q is not a tab number", args[0])
			}
			return s.ctl.RemoveTab(id, n)
		})

	cmd.AddCommand(add, remove)
	return cmd
}
