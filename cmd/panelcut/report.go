package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/model"
)

// styles renders terminal output. Writers that are not terminals get plain
// text.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failed  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// table lays out rows in padded columns under a bold header.
func (st styles) table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}
	line := func(cells []string, style lipgloss.Style) string {
		cols := make([]string, len(cells))
		for i, c := range cells {
			cols[i] = style.Width(widths[i] + 2).Render(c)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	}

	var b strings.Builder
	b.WriteString(line(header, st.label) + "\n")
	for _, row := range rows {
		b.WriteString(line(row, lipgloss.NewStyle()) + "\n")
	}
	return b.String()
}

// writeReport prints the summary of a built panel.
func writeReport(w io.Writer, proj model.Project, res model.BuildResult) {
	st := newStyles(w)
	s := proj.Settings

	fmt.Fprintln(w, st.title.Render(proj.Name))
	if box, ok := res.Bounds(); ok {
		size := box.Size()
		fmt.Fprintf(w, "%s %.2f x %.2f mm\n", st.label.Render("Panel:"), size.X, size.Y)
	}
	fmt.Fprintf(w, "%s %s, spacing %.2f mm\n", st.label.Render("Cuts:"), s.CutMethod, s.Spacing)

	if len(res.Boards) > 0 {
		rows := make([][]string, 0, len(res.Boards))
		for _, r := range res.Boards {
			dnp := "-"
			if len(r.DNP) > 0 {
				dnp = strings.Join(r.DNP, " ")
			}
			rows = append(rows, []string{fmt.Sprint(r.Index), r.ID, r.Name, dnp})
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, st.table([]string{"#", "ID", "Name", "DNP"}, rows))
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, st.table([]string{"Tabs", "V-cuts", "Perforated cuts", "Perforations", "Holes"}, [][]string{{
		fmt.Sprint(len(res.Tabs)),
		fmt.Sprint(res.ScoreCount()),
		fmt.Sprint(res.PerforatedCount()),
		fmt.Sprint(len(res.Perforations)),
		fmt.Sprint(len(proj.Holes)),
	}}))

	for _, c := range res.Conflicts {
		fmt.Fprintln(w, st.failed.Render(fmt.Sprintf("conflict (%s): %s", c.Kind, c.Message)))
	}
	for _, e := range res.Errors {
		fmt.Fprintln(w, st.warning.Render("warning: "+e))
	}
	if !res.HasConflicts() && len(res.Errors) == 0 {
		fmt.Fprintln(w, st.success.Render("panel OK"))
	}
}

// writeComparison prints one row per scenario.
func writeComparison(w io.Writer, results []engine.ComparisonResult) {
	st := newStyles(w)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			rows = append(rows, []string{r.Scenario.Name, st.failed.Render(r.Err.Error()), "", "", "", ""})
			continue
		}
		conflicts := fmt.Sprint(r.Conflicts)
		if r.Conflicts > 0 {
			conflicts = st.failed.Render(conflicts)
		}
		rows = append(rows, []string{
			r.Scenario.Name,
			fmt.Sprint(r.ScoreCuts),
			fmt.Sprint(r.PerforatedCuts),
			fmt.Sprint(r.Perforations),
			fmt.Sprint(r.Tabs),
			conflicts,
		})
	}
	fmt.Fprint(w, st.table([]string{"Scenario", "V-cuts", "Perforated", "Perforations", "Tabs", "Conflicts"}, rows))
}

// writeEstimate prints a production estimate.
func writeEstimate(w io.Writer, est model.ProductionEstimate) {
	st := newStyles(w)
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", st.label.Width(20).Render(label), value)
	}
	row("Boards per panel", fmt.Sprint(est.BoardsPerPanel))
	row("Utilization", fmt.Sprintf("%.1f%%", est.Utilization))
	row("Quantity", fmt.Sprint(est.Quantity))
	row("Panels (minimum)", fmt.Sprint(est.PanelsNeededMin))
	row("Panels (with scrap)", fmt.Sprintf("%d (%.0f%% scrap)", est.PanelsWithScrap, est.ScrapPercent))
	if est.PricePerPanel > 0 {
		row("Estimated cost", fmt.Sprintf("%.2f", est.EstimatedCost))
		row("Cost per board", fmt.Sprintf("%.2f", est.CostPerBoard))
	}
}
