package export

import (
	"fmt"
	"strings"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/xuri/excelize/v2"
)

// Report sheet names.
const (
	sheetSummary      = "Summary"
	sheetBoards       = "Boards"
	sheetCuts         = "Cuts"
	sheetPerforations = "Perforations"
)

// ExportXLSX writes a cut report workbook: a summary sheet, one row per
// board, one row per cut and the perforation coordinates.
func ExportXLSX(path string, proj model.Project, res model.BuildResult) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	for _, name := range []string{sheetBoards, sheetCuts, sheetPerforations} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	sum := Summarize(proj, res)
	summary := [][]any{
		{"Property", "Value"},
		{"Panel", sum.Name},
		{"Width (mm)", sum.Width},
		{"Height (mm)", sum.Height},
		{"Boards", sum.Boards},
		{"Tabs", sum.Tabs},
		{"V-cuts", sum.VCuts},
		{"Perforated cuts", sum.Perforated},
		{"Perforations", sum.Perforations},
		{"Cut method", proj.Settings.CutMethod.String()},
		{"Substrate area (mm²)", shapeArea(res.Substrate)},
		{"Board area (mm²)", boardArea(proj)},
		{"Mill fillets (mm)", res.MillFillets},
		{"Problems", strings.Join(res.Errors, "; ")},
	}
	if err := writeRows(f, sheetSummary, summary, header); err != nil {
		return err
	}

	byID := map[string]model.Board{}
	for _, b := range proj.Boards {
		byID[b.ID] = b
	}
	boards := [][]any{{"#", "Name", "Ident", "X (mm)", "Y (mm)", "Rotation", "Width (mm)", "Height (mm)", "Flags", "DNP"}}
	for _, r := range res.Boards {
		b := byID[r.ID]
		boards = append(boards, []any{
			r.Index, r.Name, r.Ident, b.X, b.Y, b.Rotation, b.Width(), b.Height(),
			strings.Join(b.Flags, " "), strings.Join(r.DNP, " "),
		})
	}
	if err := writeRows(f, sheetBoards, boards, header); err != nil {
		return err
	}

	cuts := [][]any{{"#", "Type", "Axis", "Length (mm)", "Start X", "Start Y", "End X", "End Y"}}
	for i, c := range res.Cuts {
		cuts = append(cuts, cutRow(i+1, cutType(c), c))
	}
	for i, c := range res.VCuts {
		cuts = append(cuts, cutRow(len(res.Cuts)+i+1, "V-cut (merged)", c))
	}
	if err := writeRows(f, sheetCuts, cuts, header); err != nil {
		return err
	}

	perfs := [][]any{{"#", "X (mm)", "Y (mm)", "Diameter (mm)"}}
	for i, p := range res.Perforations {
		perfs = append(perfs, []any{i + 1, p.X, p.Y, proj.Settings.MouseBiteDiameter})
	}
	if err := writeRows(f, sheetPerforations, perfs, header); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func cutType(c model.Cut) string {
	switch {
	case c.Score && c.Perforate:
		return "V-cut + mouse bites"
	case c.Score:
		return "V-cut"
	case c.Perforate:
		return "Mouse bites"
	default:
		return "Skipped"
	}
}

func cutRow(n int, kind string, c model.Cut) []any {
	a, b := c.Ends()
	return []any{n, kind, c.Axis().String(), c.Length(), a.X, a.Y, b.X, b.Y}
}

// writeRows fills a sheet from A1, styling the first row as a header.
func writeRows(f *excelize.File, sheet string, rows [][]any, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(len(rows[0]))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 16)
}
