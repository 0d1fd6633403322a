package export

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
)

func TestExportLabels_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	proj, res := buildTestPanel(t, model.CutVCutOrMB)

	if err := ExportLabels(path, proj, res); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFile(t, path, 500)
}

func TestExportLabels_EmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")

	err := ExportLabels(path, model.NewProject(), model.BuildResult{})
	if err == nil {
		t.Fatal("expected error for empty result, got nil")
	}
}

func TestCollectLabelInfos(t *testing.T) {
	proj, res := buildTestPanel(t, model.CutVCutOrMB)
	labels := CollectLabelInfos(proj, res)

	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Name != "B1-ctl" || labels[1].Name != "B2-ctl" {
		t.Errorf("names = %q, %q, want B1-ctl, B2-ctl", labels[0].Name, labels[1].Name)
	}
	if labels[0].Width != 40 || labels[0].Height != 40 {
		t.Errorf("wrong dimensions: got %.1fx%.1f, want 40x40", labels[0].Width, labels[0].Height)
	}
	if labels[1].X != 49.6 {
		t.Errorf("expected second board at x 49.6, got %v", labels[1].X)
	}
	if len(labels[0].DNP) != 1 {
		t.Errorf("expected one unpopulated reference on the first board, got %v", labels[0].DNP)
	}
	if len(labels[1].DNP) != 0 {
		t.Errorf("expected no unpopulated references on the second board, got %v", labels[1].DNP)
	}
}

func TestCollectLabelInfos_SkipsUnknownBoards(t *testing.T) {
	res := model.BuildResult{Boards: []model.BoardReport{{Index: 1, ID: "gone", Ident: "x", Name: "x"}}}
	if got := CollectLabelInfos(model.NewProject(), res); len(got) != 0 {
		t.Errorf("expected no labels, got %d", len(got))
	}
}

func TestExportLabels_ManyBoards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "many_labels.pdf")

	// 35 boards to test multi-page label generation
	proj := model.NewProject()
	var res model.BuildResult
	for i := 0; i < 35; i++ {
		b := rectBoard(fmt.Sprintf("board-%d", i), 20, 10+float64(i), float64(i*25), 0)
		proj.Boards = append(proj.Boards, b)
		res.Boards = append(res.Boards, model.BoardReport{
			Index: i + 1,
			ID:    b.ID,
			Ident: b.Ident,
			Name:  model.Rename(proj.Settings.RefRenamePattern, i+1, b.Ident),
		})
	}

	if err := ExportLabels(path, proj, res); err != nil {
		t.Fatalf("ExportLabels returned error: %v", err)
	}
	assertFile(t, path, 500)
}
