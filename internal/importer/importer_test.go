package importer

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("File,X,Y,Rotation\nctl.dxf,0,0,0\nio.dxf,50,0,90\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("File;X;Y;Rotation\nctl.dxf;0;0;0\nio.dxf;50;0;90\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("File\tX\tY\nctl.dxf\t0\t0\nio.dxf\t50\t0\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"File", "X", "Y", "Rotation", "Flags"})
	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{File: 0, X: 1, Y: 2, Rotation: 3, Flags: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AlternativeNames(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"ROT", "Pos Y", "PCB", "Pos X", "Variant"})
	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{File: 2, X: 3, Y: 1, Rotation: 0, Flags: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"ctl.dxf", "0", "0"})
	if isHeader {
		t.Error("expected no header")
	}
	if mapping.File != 0 || mapping.X != 1 || mapping.Y != 2 {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	input := "File,X,Y,Rotation,Flags\nctl.dxf,0,0,0,LITE\nio.dxf,50.5,10,90,\"USB PROTO\"\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(result.Placements))
	}
	p := result.Placements[1]
	if p.File != "io.dxf" || p.X != 50.5 || p.Y != 10 || p.Rotation != 90 {
		t.Errorf("unexpected placement %+v", p)
	}
	if len(p.Flags) != 2 || p.Flags[0] != "USB" || p.Flags[1] != "PROTO" {
		t.Errorf("expected flags [USB PROTO], got %v", p.Flags)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("ctl.dxf,0,0\nio.dxf,50,0,180\n"), ',')
	if len(result.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d (errors: %v)", len(result.Placements), result.Errors)
	}
	if result.Placements[0].Rotation != 0 {
		t.Errorf("missing rotation should default to 0, got %f", result.Placements[0].Rotation)
	}
}

func TestImportCSVFromReader_InvalidRows(t *testing.T) {
	input := "File,X,Y\nctl.dxf,abc,0\n,1,1\nio.dxf,5\nok.dxf,1,2\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Placements) != 1 {
		t.Errorf("expected 1 valid placement, got %d", len(result.Placements))
	}
	if len(result.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.Contains(result.Errors[0], "Line 2") || !strings.Contains(result.Errors[0], "Invalid x") {
		t.Errorf("unexpected error: %s", result.Errors[0])
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("File,Rotation\nctl.dxf,90\n"), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "X, Y") {
		t.Errorf("expected missing column error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyRows(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("File,X,Y\n\n,,\nctl.dxf,1,1\n"), ',')
	if len(result.Placements) != 1 || len(result.Errors) != 0 {
		t.Errorf("empty rows should be skipped, got %d placements, errors %v", len(result.Placements), result.Errors)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV("/nonexistent/placements.csv")
	if len(result.Errors) == 0 {
		t.Error("expected an error for a missing file")
	}
}

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placements.csv")
	if err := os.WriteFile(path, []byte("File;X;Y\nctl.dxf;1;2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Placements) != 1 {
		t.Fatalf("expected 1 placement, got %d", len(result.Placements))
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected delimiter warning, got %v", result.Warnings)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, dir string, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(dir, "placements.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("failed to create cell reference: %v", err)
			}
			if err := f.SetCellValue(sheet, cellRef, cell); err != nil {
				t.Fatalf("failed to set cell value: %v", err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, t.TempDir(), [][]interface{}{
		{"Board", "X", "Y", "Angle"},
		{"ctl.dxf", 0, 0, 0},
		{"io.dxf", 41.6, 0, 270},
	})

	result := ImportExcel(path)
	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(result.Placements))
	}
	if result.Placements[1].X != 41.6 || result.Placements[1].Rotation != 270 {
		t.Errorf("unexpected placement %+v", result.Placements[1])
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel("/nonexistent/placements.xlsx")
	if len(result.Errors) == 0 {
		t.Error("expected an error for a missing file")
	}
}

// ─── DXF Import Tests ──────────────────────────────────────

// writeBoardDXF draws a w x h rectangle from loose lines with a round
// mounting hole in the middle.
func writeBoardDXF(t *testing.T, dir, name string, w, h float64) string {
	t.Helper()
	d := dxf.NewDrawing()
	corners := [][2]float64{{10, 10}, {10 + w, 10}, {10 + w, 10 + h}, {10, 10 + h}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			t.Fatalf("line: %v", err)
		}
	}
	if _, err := d.Circle(10+w/2, 10+h/2, 0, 3); err != nil {
		t.Fatalf("circle: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestImportDXF_BoardWithHole(t *testing.T) {
	path := writeBoardDXF(t, t.TempDir(), "ctl.dxf", 50, 30)

	result := ImportDXF(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Boards) != 1 {
		t.Fatalf("expected 1 board, got %d", len(result.Boards))
	}
	b := result.Boards[0]
	if b.Ident != "ctl" {
		t.Errorf("expected ident 'ctl', got %q", b.Ident)
	}
	if len(b.Outlines) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(b.Outlines))
	}
	if len(b.Outlines[0].Holes) != 1 {
		t.Errorf("the circle should become a cut-out, got %d holes", len(b.Outlines[0].Holes))
	}
	min, max := b.Outlines[0].Exterior.BoundingBox()
	if math.Abs(min.X) > 1e-9 || math.Abs(min.Y) > 1e-9 {
		t.Errorf("outline should start at the origin, got %+v", min)
	}
	if math.Abs(max.X-50) > 1e-6 || math.Abs(max.Y-30) > 1e-6 {
		t.Errorf("expected 50 x 30, got %+v", max)
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/board.dxf")
	if len(result.Errors) == 0 {
		t.Error("expected an error for a missing file")
	}
}

func TestChainSegments_OpenChain(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 0}, end: model.Point2D{X: 10, Y: 10}},
	}
	outlines, open := chainSegments(segs, chainTolerance)
	if len(outlines) != 0 || open != 1 {
		t.Errorf("expected one open chain, got %d outlines and %d open", len(outlines), open)
	}
}

func TestChainSegments_ReversedSegments(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 0, Y: 10}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 0, Y: 10}, end: model.Point2D{X: 0, Y: 0}},
	}
	outlines, open := chainSegments(segs, chainTolerance)
	if len(outlines) != 1 || open != 0 {
		t.Fatalf("expected one closed outline, got %d (%d open)", len(outlines), open)
	}
	if len(outlines[0]) != 3 {
		t.Errorf("expected a triangle, got %d points", len(outlines[0]))
	}
}

func TestNestContours(t *testing.T) {
	square := func(x0, y0, s float64) model.Outline {
		return model.Outline{{X: x0, Y: y0}, {X: x0 + s, Y: y0}, {X: x0 + s, Y: y0 + s}, {X: x0, Y: y0 + s}}
	}
	// Outer board, a cut-out, an island inside the cut-out, and a second board.
	shapes := nestContours([]model.Outline{
		square(2, 2, 6), square(0, 0, 10), square(4, 4, 2), square(20, 0, 5),
	})
	if len(shapes) != 3 {
		t.Fatalf("expected 3 shapes, got %d", len(shapes))
	}
	if len(shapes[0].Holes) != 1 {
		t.Errorf("outer board should have one cut-out, got %d", len(shapes[0].Holes))
	}
}

func TestImportPlacements_LoadsBoards(t *testing.T) {
	dir := t.TempDir()
	writeBoardDXF(t, dir, "ctl.dxf", 40, 40)
	table := filepath.Join(dir, "panel.csv")
	content := "File,X,Y,Rotation,Flags\nctl.dxf,0,0,0,LITE\nctl.dxf,41.6,0,90,\nmissing.dxf,0,50,0,\n"
	if err := os.WriteFile(table, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportPlacements(table)
	if len(result.Boards) != 2 {
		t.Fatalf("expected 2 boards, got %d (errors: %v)", len(result.Boards), result.Errors)
	}
	if result.Boards[0].ID == result.Boards[1].ID {
		t.Error("repeated boards need their own IDs")
	}
	if result.Boards[1].X != 41.6 || result.Boards[1].Rotation != 90 {
		t.Errorf("placement not applied: %+v", result.Boards[1])
	}
	if len(result.Boards[0].Flags) != 1 || result.Boards[0].Flags[0] != "LITE" {
		t.Errorf("expected flags [LITE], got %v", result.Boards[0].Flags)
	}
	if len(result.Errors) == 0 || !strings.HasPrefix(result.Errors[0], "missing.dxf") {
		t.Errorf("expected an error naming the missing board, got %v", result.Errors)
	}
}
