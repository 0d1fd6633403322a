package gcode

import (
	"math"
	"strings"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
)

// newTestSettings returns panel settings with predictable machine output.
func newTestSettings() model.PanelSettings {
	s := model.DefaultSettings()
	s.MouseBiteDiameter = 0.5
	s.Machine.ToolDiameter = 2.0
	s.Machine.FeedRate = 600.0
	s.Machine.PlungeRate = 200.0
	s.Machine.SpindleSpeed = 24000
	s.Machine.SafeZ = 5.0
	s.Machine.CutDepth = 1.6
	s.Machine.PassDepth = 0.8
	s.Machine.GCodeProfile = "Generic"
	return s
}

// newTestResult is a 50x30 panel with a wide slot and a slot narrower than
// the 2 mm test tool, plus three perforations.
func newTestResult() model.BuildResult {
	return model.BuildResult{
		Substrate: []model.Shape{{
			Exterior: model.Outline{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 50, Y: 30}, {X: 0, Y: 30}},
			Holes: []model.Outline{
				{{X: 10, Y: 5}, {X: 10, Y: 12}, {X: 40, Y: 12}, {X: 40, Y: 5}},
				{{X: 10, Y: 20}, {X: 10, Y: 21.5}, {X: 40, Y: 21.5}, {X: 40, Y: 20}},
			},
		}},
		Perforations: []model.Point2D{{X: 20, Y: 12}, {X: 11, Y: 12}, {X: 12, Y: 12}},
		Boards:       []model.BoardReport{{Index: 1, ID: "a", Ident: "ctl", Name: "B1-ctl"}},
	}
}

func TestToolpaths(t *testing.T) {
	paths, skipped := Toolpaths(newTestResult(), 2.0)

	if len(paths) != 2 {
		t.Fatalf("expected outline and one slot, got %d toolpaths", len(paths))
	}
	if paths[0].Inside || !paths[1].Inside {
		t.Errorf("expected outline first, then slot, got %+v %+v", paths[0].Inside, paths[1].Inside)
	}
	if skipped != 1 {
		t.Errorf("expected the narrow slot to be skipped, got %d", skipped)
	}

	box := paths[0].Ring.Bounds()
	if math.Abs(box.Min.X+1) > 1e-6 || math.Abs(box.Max.X-51) > 1e-6 {
		t.Errorf("expected outline offset by the tool radius, got x %.3f..%.3f", box.Min.X, box.Max.X)
	}
	slot := paths[1].Ring.Bounds()
	if math.Abs(slot.Min.Y-6) > 1e-6 || math.Abs(slot.Max.Y-11) > 1e-6 {
		t.Errorf("expected slot shrunk by the tool radius, got y %.3f..%.3f", slot.Min.Y, slot.Max.Y)
	}
}

func TestGenerate_Structure(t *testing.T) {
	gen := New(newTestSettings())
	code := gen.Generate("test", newTestResult())

	for _, want := range []string{"PanelCut GCode - test", "G90", "M3 S24000", "Perforations: 3 holes, 0.50mm drill", "M0", "Route 2: slot", "Job complete", "M2"} {
		if !strings.Contains(code, want) {
			t.Errorf("expected %q in output", want)
		}
	}
	if strings.Contains(code, "G81") {
		t.Error("Generic profile should not use a canned drill cycle")
	}
}

func TestGenerate_PlungeDrilling(t *testing.T) {
	gen := New(newTestSettings())
	sum := Summarize(ParseGCode(gen.Generate("test", newTestResult())))

	// One plunge per hole plus one per pass of each route.
	if sum.Plunges != 3+2*2 {
		t.Errorf("expected 7 plunges, got %d", sum.Plunges)
	}
	if sum.Drills != 0 {
		t.Errorf("expected no drill cycle moves, got %d", sum.Drills)
	}
}

func TestGenerate_CannedCycle(t *testing.T) {
	settings := newTestSettings()
	settings.Machine.GCodeProfile = "Mach3"
	code := New(settings).Generate("test", newTestResult())

	if !strings.Contains(code, "G81 X") || !strings.Contains(code, "G80") {
		t.Fatal("expected G81 drill cycle closed by G80")
	}
	if sum := Summarize(ParseGCode(code)); sum.Drills != 3 {
		t.Errorf("expected 3 drilled holes, got %d", sum.Drills)
	}
}

func TestGenerate_Passes(t *testing.T) {
	settings := newTestSettings()
	code := New(settings).Generate("test", newTestResult())
	if !strings.Contains(code, "Pass 2/2, depth=1.60mm") {
		t.Error("expected two passes reaching the full depth")
	}

	settings.Machine.PassDepth = 0.5
	code = New(settings).Generate("test", newTestResult())
	if !strings.Contains(code, "Pass 4/4, depth=1.60mm") {
		t.Error("expected last pass clamped to the cut depth")
	}
}

func TestGenerate_MirrorsY(t *testing.T) {
	gen := New(newTestSettings())
	for _, m := range ParseGCode(gen.Generate("test", newTestResult())) {
		if m.ToY > 1+1e-6 {
			t.Fatalf("expected machine Y at or below the panel top edge, got %.3f", m.ToY)
		}
	}
}

func TestGenerate_NoPerforations(t *testing.T) {
	res := newTestResult()
	res.Perforations = nil
	code := New(newTestSettings()).Generate("test", res)

	if strings.Contains(code, "M0") {
		t.Error("expected no tool change without perforations")
	}
	if strings.Contains(code, "holes,") {
		t.Error("expected no drilling section")
	}
}

func TestGenerate_DrillDiameter(t *testing.T) {
	settings := newTestSettings()
	if New(settings).DrillDiameter != 0.5 {
		t.Error("expected drill diameter to default to the mouse bite diameter")
	}
	settings.Machine.DrillDiameter = 0.8
	if New(settings).DrillDiameter != 0.8 {
		t.Error("expected explicit drill diameter")
	}
}

func TestMachineRing_Direction(t *testing.T) {
	paths, _ := Toolpaths(newTestResult(), 2.0)
	settings := newTestSettings()

	climb := New(settings)
	if climb.machineRing(paths[0]).SignedArea() >= 0 {
		t.Error("climb milling should run the outline clockwise")
	}
	if climb.machineRing(paths[1]).SignedArea() <= 0 {
		t.Error("climb milling should run slots counter-clockwise")
	}

	settings.Machine.UseClimb = false
	conv := New(settings)
	if conv.machineRing(paths[0]).SignedArea() <= 0 {
		t.Error("conventional milling should run the outline counter-clockwise")
	}
}

func TestDrillOrder(t *testing.T) {
	holes := []model.Point2D{{X: 20, Y: 0}, {X: 1, Y: 0}, {X: 10, Y: 0}, {X: 2, Y: 0}}
	got := DrillOrder(holes)

	want := []float64{1, 2, 10, 20}
	for i, h := range got {
		if h.X != want[i] {
			t.Fatalf("DrillOrder = %v, want X order %v", got, want)
		}
	}
	if holes[0].X != 20 {
		t.Error("DrillOrder must not modify its input")
	}
}

func TestFormat_NoNegativeZero(t *testing.T) {
	gen := New(newTestSettings())
	if got := gen.format(-0.0001); got != "0.000" {
		t.Errorf("format(-0.0001) = %q, want 0.000", got)
	}
	if got := gen.format(-1.5); got != "-1.500" {
		t.Errorf("format(-1.5) = %q, want -1.500", got)
	}
}

func TestCheckSlotClearance(t *testing.T) {
	slots := CheckSlotClearance(newTestResult(), 2.0)
	if len(slots) != 1 {
		t.Fatalf("expected 1 narrow slot, got %d", len(slots))
	}
	s := slots[0]
	if s.Index != 2 || s.Width != 1.5 {
		t.Errorf("expected slot 2 of width 1.5, got %d width %.2f", s.Index, s.Width)
	}

	warnings := FormatClearanceWarnings(slots)
	if len(warnings) != 1 || !strings.Contains(warnings[0], "narrower than the 2.00 mm tool") {
		t.Errorf("unexpected warnings %v", warnings)
	}

	if got := CheckSlotClearance(newTestResult(), 1.0); len(got) != 0 {
		t.Errorf("expected every slot reachable with a 1 mm tool, got %d", len(got))
	}
}
