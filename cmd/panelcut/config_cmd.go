package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/project"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or reset the saved preferences",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := project.LoadAppConfig(configPath())
			if err != nil {
				return err
			}
			data, err := toYAML(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", configPath(), data)
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default preferences, keeping the recent projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			old, err := project.LoadAppConfig(configPath())
			if err != nil {
				old = model.DefaultAppConfig()
			}
			cfg := model.DefaultAppConfig()
			cfg.RecentProjects = old.RecentProjects
			return project.SaveAppConfig(configPath(), cfg)
		},
	}

	defaults := &cobra.Command{
		Use:   "defaults <project>",
		Short: "Save a project's settings as the defaults for new projects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := project.LoadProject(args[0])
			if err != nil {
				return err
			}
			cfg, err := project.LoadAppConfig(configPath())
			if err != nil {
				return err
			}
			s := loaded.Project.Settings
			cfg.DefaultSpacing = s.Spacing
			cfg.DefaultTabWidth = s.TabWidth
			cfg.DefaultMaxTabSpacing = s.MaxTabSpacing
			cfg.DefaultCutMethod = s.CutMethod
			cfg.DefaultMBDiameter = s.MouseBiteDiameter
			cfg.DefaultMBSpacing = s.MouseBiteSpacing
			cfg.DefaultVCutLayer = s.VCutLayer
			cfg.DefaultMillFillets = s.MillFillets
			cfg.DefaultToolDiameter = s.Machine.ToolDiameter
			cfg.DefaultGCodeProfile = s.Machine.GCodeProfile
			return project.SaveAppConfig(configPath(), cfg)
		},
	}

	recent := &cobra.Command{
		Use:   "recent",
		Short: "List recently used projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := project.LoadAppConfig(configPath())
			if err != nil {
				return err
			}
			for _, p := range cfg.RecentProjects {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	inventory := &cobra.Command{
		Use:   "inventory",
		Short: "List the router tools and frame presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadInventory(inventoryPath())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			st := newStyles(w)
			tools := [][]string{}
			for _, t := range inv.Tools {
				tools = append(tools, []string{t.Name, fmt.Sprintf("%.2f", t.ToolDiameter), fmt.Sprintf("%.0f", t.FeedRate), fmt.Sprint(t.SpindleSpeed)})
			}
			fmt.Fprint(w, st.table([]string{"Tool", "Diameter", "Feed", "Spindle"}, tools))
			fmt.Fprintln(w)
			frames := [][]string{}
			for _, f := range inv.Frames {
				frames = append(frames, []string{f.Name, fmt.Sprintf("%.0f x %.0f", f.Width, f.Height), fmt.Sprintf("%.1f", f.Rail), f.Fab})
			}
			fmt.Fprint(w, st.table([]string{"Frame", "Size", "Rail", "Fab"}, frames))
			return nil
		},
	}

	importInventory := &cobra.Command{
		Use:   "import-inventory <file>",
		Short: "Merge the tools and frame presets of an inventory file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadInventory(inventoryPath())
			if err != nil {
				return err
			}
			tools, frames := len(inv.Tools), len(inv.Frames)
			if inv, err = project.ImportInventory(args[0], inv); err != nil {
				return fmt.Errorf("failed to import inventory: %w", err)
			}
			if err := project.SaveInventory(inventoryPath(), inv); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d tools, %d frames\n", len(inv.Tools)-tools, len(inv.Frames)-frames)
			return nil
		},
	}

	cmd.AddCommand(show, reset, defaults, recent, inventory, importInventory)
	return cmd
}

func newTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Save and list panel templates",
	}

	var description string
	save := &cobra.Command{
		Use:   "save <project> <name>",
		Short: "Save the holes and settings of a project as a template",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := project.LoadProject(args[0])
			if err != nil {
				return err
			}
			t, err := project.SaveAsTemplate(templatesPath(), loaded.Project, args[1], description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved template %q (%s)\n", t.Name, t.ID)
			return nil
		},
	}
	save.Flags().StringVar(&description, "description", "", "Template description")

	list := &cobra.Command{
		Use:   "list",
		Short: "List the saved templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(templatesPath())
			if err != nil {
				return err
			}
			rows := [][]string{}
			for _, t := range store.Templates {
				rows = append(rows, []string{t.Name, t.Description, fmt.Sprint(len(t.Holes)), strings.SplitN(t.UpdatedAt, "T", 2)[0]})
			}
			w := cmd.OutOrStdout()
			fmt.Fprint(w, newStyles(w).table([]string{"Name", "Description", "Holes", "Updated"}, rows))
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <name>",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadTemplates(templatesPath())
			if err != nil {
				return err
			}
			t := store.FindByName(args[0])
			if t == nil {
				return fmt.Errorf("template %q: %w", args[0], model.ErrNotFound)
			}
			store.Remove(t.ID)
			return project.SaveTemplates(templatesPath(), store)
		},
	}

	cmd.AddCommand(save, list, remove)
	return cmd
}

func newBackupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore preferences, inventory, templates and profiles",
	}

	exp := &cobra.Command{
		Use:   "export <file>",
		Short: "Write every application file into one backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data project.BackupData
			var err error
			if data.Config, err = project.LoadAppConfig(configPath()); err != nil {
				return err
			}
			if data.Inventory, err = project.LoadInventory(inventoryPath()); err != nil {
				return err
			}
			if data.Templates, err = project.LoadTemplates(templatesPath()); err != nil {
				return err
			}
			if data.Profiles, err = project.LoadCustomProfiles(profilesPath()); err != nil {
				return err
			}
			return project.ExportAllData(args[0], data)
		},
	}

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Restore every application file from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.RestoreAllData(Flags.configDir(), data); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored %d tools, %d frames, %d templates, %d profiles\n",
				len(data.Inventory.Tools), len(data.Inventory.Frames), len(data.Templates.Templates), len(data.Profiles))
			return nil
		},
	}

	cmd.AddCommand(exp, imp)
	return cmd
}

func newProfileExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export-profile <name> <file>",
		Short: "Write a G-code profile to a file for sharing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = project.RegisterCustomProfiles(profilesPath())
			for _, p := range model.AllProfiles() {
				if strings.EqualFold(p.Name, args[0]) {
					return project.ExportProfile(args[1], p)
				}
			}
			return fmt.Errorf("profile %q: %w", args[0], model.ErrNotFound)
		},
	}
}

func newProfileImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-profile <file>",
		Short: "Add a shared G-code profile to the custom profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportProfile(args[0])
			if err != nil {
				return err
			}
			profiles, err := project.LoadCustomProfiles(profilesPath())
			if err != nil {
				return err
			}
			model.CustomProfiles = profiles
			if err := model.AddCustomProfile(p); err != nil {
				return err
			}
			if err := project.SaveCustomProfiles(profilesPath(), model.CustomProfiles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported profile %q\n", p.Name)
			return nil
		},
	}
}

func newProfileRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-profile <name>",
		Short: "Delete a custom G-code profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profiles, err := project.LoadCustomProfiles(profilesPath())
			if err != nil {
				return err
			}
			model.CustomProfiles = profiles
			if err := model.RemoveCustomProfile(args[0]); err != nil {
				return err
			}
			return project.SaveCustomProfiles(profilesPath(), model.CustomProfiles)
		},
	}
}

// toYAML encodes v as YAML under its JSON field names.
func toYAML(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}
