package project

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/yofu/dxf"
)

func rectBoard(ident string, w, h, x, y float64) model.Board {
	b := model.NewBoard(ident, "", []model.Shape{{Exterior: model.Outline{
		{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h},
	}}})
	b.X, b.Y = x, y
	return b
}

func testProject() model.Project {
	proj := model.NewProject()
	proj.Name = "Sensor panel"
	proj.Settings.CutMethod = model.CutMouseBites
	proj.Settings.Frame.Width = 100
	proj.Settings.Frame.Height = 60

	a := rectBoard("sensor", 40, 40, 8, 10)
	a.Rotation = 90
	a.Flags = []string{"LITE"}
	a.SetAnnotations([]model.Annotation{{Ref: "U2", BuildExpr: "~LITE"}})
	a.Tabs = append(a.Tabs, model.Tab{X: 20, Y: -2, Width: 4, Direction: 180})
	b := rectBoard("sensor", 40, 40, 49.6, 10)
	proj.Boards = []model.Board{a, b}
	proj.Holes = []model.Hole{model.NewHole(model.Outline{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 0, Y: 3}})}
	proj.Attach()
	return proj
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"panel.json", FormatJSON},
		{"panel.YAML", FormatYAML},
		{"dir/panel.yml", FormatYAML},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("FormatOf(%q) = %v, %v, want %v", tt.path, got, err, tt.want)
		}
	}
	if _, err := FormatOf("panel.txt"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestSaveAndLoadProject(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "panel"+ext)
			proj := testProject()
			proj.Result = &model.BuildResult{Errors: []string{"stale"}}

			if err := SaveProject(path, proj); err != nil {
				t.Fatalf("SaveProject failed: %v", err)
			}
			res, err := LoadProject(path)
			if err != nil {
				t.Fatalf("LoadProject failed: %v", err)
			}
			got := res.Project

			if got.Name != "Sensor panel" {
				t.Errorf("expected name 'Sensor panel', got %q", got.Name)
			}
			if got.Result != nil {
				t.Error("build result must not be stored")
			}
			if len(got.Boards) != 2 || len(got.Holes) != 1 {
				t.Fatalf("expected 2 boards and 1 hole, got %d and %d", len(got.Boards), len(got.Holes))
			}
			a := got.Boards[0]
			if a.ID != proj.Boards[0].ID || a.Rotation != 90 || a.X != 8 {
				t.Errorf("board placement not kept: %+v", a)
			}
			if len(a.Tabs) != 1 || a.Tabs[0].Direction != 180 {
				t.Errorf("expected one tab pointing down, got %+v", a.Tabs)
			}
			if len(a.AvailFlags) != 1 || a.AvailFlags[0] != "LITE" {
				t.Errorf("expected available flags to be derived, got %v", a.AvailFlags)
			}
			if a.OffX != proj.Settings.FrameOffX {
				t.Errorf("expected the panel origin to be attached, got %v", a.OffX)
			}
			if got.Settings.CutMethod != model.CutMouseBites || got.Settings.Frame.Width != 100 {
				t.Errorf("settings not kept: %+v", got.Settings)
			}
		})
	}
}

func TestLoadProject_ReproducesBuild(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yaml")
	proj := testProject()
	want, err := engine.BuildProject(&proj, engine.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if err := SaveProject(path, proj); err != nil {
		t.Fatal(err)
	}
	res, err := LoadProject(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := engine.BuildProject(&res.Project, engine.BuildOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if len(got.Tabs) != len(want.Tabs) || len(got.Cuts) != len(want.Cuts) || len(got.Perforations) != len(want.Perforations) {
		t.Errorf("rebuild differs: tabs %d/%d cuts %d/%d perforations %d/%d",
			len(got.Tabs), len(want.Tabs), len(got.Cuts), len(want.Cuts), len(got.Perforations), len(want.Perforations))
	}
	wa := geom.TotalArea(want.SubstratePolygons())
	ga := geom.TotalArea(got.SubstratePolygons())
	if math.Abs(wa-ga) > 1e-6 {
		t.Errorf("substrate area %v, want %v", ga, wa)
	}
	if len(got.Boards) != 2 || len(got.Boards[0].DNP) != len(want.Boards[0].DNP) {
		t.Errorf("board reports differ: %+v vs %+v", got.Boards, want.Boards)
	}
}

func TestLoadProject_YAMLByHand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.yml")
	data := `name: Hand written
boards:
  - ident: tiny
    x: 5
    y: 5
    outlines:
      - exterior: [{x: 0, y: 0}, {x: 10, y: 0}, {x: 10, y: 8}, {x: 0, y: 8}]
settings:
  spacing: 2
  cut_method: vc_or_skip
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	p := res.Project
	if len(p.Boards) != 1 || p.Boards[0].ID == "" {
		t.Fatalf("expected one board with a generated ID, got %+v", p.Boards)
	}
	if p.Boards[0].Width() != 10 {
		t.Errorf("expected board width 10, got %v", p.Boards[0].Width())
	}
	if p.Settings.Spacing != 2 || p.Settings.CutMethod != model.CutVCutOrSkip {
		t.Errorf("expected spacing 2 and vc_or_skip, got %v %v", p.Settings.Spacing, p.Settings.CutMethod)
	}
	if p.Settings.MouseBiteDiameter != model.DefaultSettings().MouseBiteDiameter {
		t.Errorf("expected unspecified settings to keep their defaults")
	}
}

func TestLoadProject_BoardFromFile(t *testing.T) {
	dir := t.TempDir()
	d := dxf.NewDrawing()
	corners := [][2]float64{{0, 0}, {30, 0}, {30, 20}, {0, 20}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := d.SaveAs(filepath.Join(dir, "ctl.dxf")); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "panel.json")
	data := `{"boards":[{"file":"ctl.dxf","x":3,"y":4},{"ident":"ghost","file":"missing.dxf"},{"ident":"empty"}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if len(res.Project.Boards) != 1 {
		t.Fatalf("expected only the readable board, got %d", len(res.Project.Boards))
	}
	b := res.Project.Boards[0]
	if b.Ident != "ctl" || b.X != 3 || b.Width() != 30 || b.Height() != 20 {
		t.Errorf("unexpected board %q at %v, %vx%v", b.Ident, b.X, b.Width(), b.Height())
	}
	if len(res.Warnings) < 2 {
		t.Fatalf("expected warnings for the unreadable boards, got %v", res.Warnings)
	}
	joined := strings.Join(res.Warnings, "\n")
	if !strings.Contains(joined, "missing.dxf") || !strings.Contains(joined, `"empty"`) {
		t.Errorf("unexpected warnings %v", res.Warnings)
	}
}

func TestLoadProject_InvalidAnnotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.json")
	data := `{"boards":[{"ident":"x","outlines":[{"exterior":[{"x":0,"y":0},{"x":5,"y":0},{"x":5,"y":5}]}],` +
		`"annotations":[{"ref":"R3","buildexpr":"A &"}]}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	errs := res.Project.Boards[0].Errors
	if len(errs) != 1 || errs[0] != `R3: Invalid buildexpr "A &"` {
		t.Errorf("unexpected board errors %v", errs)
	}
}

func TestLoadProject_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadProject(filepath.Join(dir, "panel.txt")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := LoadProject(filepath.Join(dir, "none.json")); err == nil {
		t.Error("expected error for a missing file")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("boards: [: :"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProject(bad); err == nil {
		t.Error("expected error for invalid YAML")
	}
}
