package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/export"
	"github.com/piwi3910/PanelCut/internal/gcode"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/project"
	"github.com/spf13/cobra"
)

// exportFlags names the output files of a build.
type exportFlags struct {
	pdf, labels, svg, png, dxf, xlsx, gcode string
	pngScale                                 float64
	export                                   bool
}

func (e exportFlags) requested() bool {
	return e.export || e.pdf != "" || e.labels != "" || e.svg != "" || e.png != "" ||
		e.dxf != "" || e.xlsx != "" || e.gcode != ""
}

func newBuildCommand() *cobra.Command {
	var out exportFlags

	cmd := &cobra.Command{
		Use:   "build <project>",
		Short: "Build the panel, report it and write the requested outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			proj, err := s.built(cmd.Context())
			if err != nil {
				return err
			}
			if proj.Result == nil {
				return fmt.Errorf("%s: nothing was built", args[0])
			}
			writeReport(cmd.OutOrStdout(), proj, *proj.Result)

			if !out.requested() {
				return nil
			}
			if out.export && out.dxf == "" {
				out.dxf = proj.Settings.ExportPath
				if !filepath.IsAbs(out.dxf) {
					out.dxf = filepath.Join(filepath.Dir(args[0]), out.dxf)
				}
			}
			return writeOutputs(cmd, proj, out)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&out.export, "export", false, "Write the panel DXF to the project's export path")
	f.StringVar(&out.dxf, "dxf", "", "Write the panel outline to a DXF file")
	f.StringVar(&out.pdf, "pdf", "", "Write a PDF drawing")
	f.StringVar(&out.labels, "labels", "", "Write a PDF sheet of QR board labels")
	f.StringVar(&out.svg, "svg", "", "Write an SVG preview")
	f.StringVar(&out.png, "png", "", "Write a PNG preview")
	f.Float64Var(&out.pngScale, "png-scale", 10, "PNG pixels per mm")
	f.StringVar(&out.xlsx, "xlsx", "", "Write an XLSX cut report")
	f.StringVar(&out.gcode, "gcode", "", "Write a G-code program for a CNC router")
	return cmd
}

// writeOutputs rebuilds the panel for export and writes every requested
// file.
func writeOutputs(cmd *cobra.Command, proj model.Project, out exportFlags) error {
	res, err := engine.BuildProject(&proj, engine.BuildOptions{Export: true})
	if err != nil {
		return err
	}

	type writer struct {
		path  string
		write func(string) error
	}
	writers := []writer{
		{out.dxf, func(p string) error { return export.ExportDXF(p, proj, res) }},
		{out.pdf, func(p string) error { return export.ExportPDF(p, proj, res) }},
		{out.labels, func(p string) error { return export.ExportLabels(p, proj, res) }},
		{out.svg, func(p string) error { return export.ExportSVG(p, proj, res) }},
		{out.png, func(p string) error { return export.ExportPNG(p, proj, res, out.pngScale) }},
		{out.xlsx, func(p string) error { return export.ExportXLSX(p, proj, res) }},
		{out.gcode, func(p string) error { return writeGCode(p, proj, res) }},
	}
	for _, w := range writers {
		if w.path == "" {
			continue
		}
		if err := w.write(w.path); err != nil {
			return fmt.Errorf("%s: %w", w.path, err)
		}
		logger.Infof("wrote %s", w.path)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", w.path)
	}
	return nil
}

func writeGCode(path string, proj model.Project, res model.BuildResult) error {
	for _, w := range gcode.FormatClearanceWarnings(gcode.CheckSlotClearance(res, proj.Settings.Machine.ToolDiameter)) {
		logger.Warnf("%s", w)
	}
	code := gcode.New(proj.Settings).Generate(proj.Name, res)
	return os.WriteFile(path, []byte(code), 0644)
}

func newCompareCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <project>",
		Short: "Build the panel with every cut method and compare the results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := project.LoadProject(args[0])
			if err != nil {
				return err
			}
			proj := loaded.Project
			results := engine.CompareScenarios(engine.BuildDefaultScenarios(proj.Settings), proj.Boards, proj.Holes)
			writeComparison(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func newEstimateCommand() *cobra.Command {
	var quantity int
	var scrap, price float64

	cmd := &cobra.Command{
		Use:   "estimate <project>",
		Short: "Estimate how many panels to order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := project.LoadProject(args[0])
			if err != nil {
				return err
			}
			proj := loaded.Project
			w, h := proj.Settings.Frame.Width, proj.Settings.Frame.Height
			if res, err := engine.BuildProject(&proj, engine.BuildOptions{}); err == nil {
				if box, ok := res.Bounds(); ok {
					size := box.Size()
					w, h = size.X, size.Y
				}
			} else {
				logger.Warnf("%v, using the frame size", err)
			}
			est := model.CalculateProductionEstimate(proj.Boards, w, h, quantity, scrap, price)
			writeEstimate(cmd.OutOrStdout(), est)
			return nil
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 100, "Boards to produce")
	cmd.Flags().Float64Var(&scrap, "scrap", 5, "Scrap allowance in percent")
	cmd.Flags().Float64Var(&price, "price", 0, "Price per panel")
	return cmd
}

func newGCodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gcode",
		Short: "Inspect G-code programs and profiles",
	}

	summary := &cobra.Command{
		Use:   "summary <file>",
		Short: "Count the moves of a program and estimate its cutting time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			sum := gcode.Summarize(gcode.ParseGCode(string(data)))
			w := cmd.OutOrStdout()
			fmt.Fprint(w, newStyles(w).table(
				[]string{"Rapids", "Feeds", "Plunges", "Retracts", "Drills", "Cut mm", "Rapid mm", "Cut time"},
				[][]string{{
					fmt.Sprint(sum.Rapids), fmt.Sprint(sum.Feeds), fmt.Sprint(sum.Plunges),
					fmt.Sprint(sum.Retracts), fmt.Sprint(sum.Drills),
					fmt.Sprintf("%.1f", sum.CutLength), fmt.Sprintf("%.1f", sum.RapidLength),
					sum.CutTime.Round(time.Second).String(),
				}}))
			return nil
		},
	}

	profiles := &cobra.Command{
		Use:   "profiles",
		Short: "List the built-in and custom G-code profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := project.RegisterCustomProfiles(profilesPath()); err != nil {
				logger.Warnf("custom profiles: %v", err)
			}
			for _, name := range model.GetProfileNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.AddCommand(summary, profiles, newProfileExportCommand(), newProfileImportCommand(), newProfileRemoveCommand())
	return cmd
}
