// PanelCut: PCB panelizer
//
// Lays out circuit boards on a production panel, adds the tabs that hold
// them, decides between v-scores and mouse bites and writes the panel for
// fabrication (DXF, PDF, SVG, PNG, XLSX and G-code).
//
// Build:
//   go build -o panelcut ./cmd/panelcut

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information (set by goreleaser)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "panelcut",
		Short: "Panelize circuit boards for fabrication",
		Long: `PanelCut places PCB outlines on a panel, connects them to the frame and
to each other with tabs, separates them with v-scores or mouse bites and
exports the result.

Projects are JSON or YAML files. Every editing command loads the project,
applies the change, rebuilds the panel and saves the project again.`,
		Example: `  panelcut init panel.yaml --frame "100x100 (prototype)"
  panelcut import panel.yaml ctl.dxf --x 0 --y 0
  panelcut align panel.yaml top
  panelcut build panel.yaml --pdf panel.pdf --dxf panel.dxf --gcode panel.nc`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Flags.UseFlags()
		},
	}

	BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(),
		newBuildCommand(),
		newAlignCommand(),
		newFitFrameCommand(),
		newHoleCommand(),
		newTabCommand(),
		newBoardCommand(),
		newSetCommand(),
		newCompareCommand(),
		newEstimateCommand(),
		newGCodeCommand(),
		newConfigCommand(),
		newTemplateCommand(),
		newBackupCommand(),
		newVersionCommand(),
	)
	return rootCmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "panelcut %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
