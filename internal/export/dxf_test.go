package export

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestExportDXF_Entities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.dxf")
	proj, res := buildTestPanel(t, model.CutVCutAndMB)
	require.NotEmpty(t, res.VCuts)
	require.NotEmpty(t, res.Perforations)
	require.NoError(t, ExportDXF(path, proj, res))

	d, err := dxf.Open(path)
	require.NoError(t, err)

	wantLines := len(res.VCuts)
	for _, s := range res.Substrate {
		wantLines += len(s.Exterior)
		for _, h := range s.Holes {
			wantLines += len(h)
		}
	}

	var lines, circles int
	for _, e := range d.Entities() {
		switch c := e.(type) {
		case *entity.Line:
			lines++
		case *entity.Circle:
			circles++
			assert.InDelta(t, proj.Settings.MouseBiteDiameter/2, c.Radius, 1e-9)
			assert.LessOrEqual(t, c.Center[1], 0.0, "y is mirrored")
		}
	}
	assert.Equal(t, wantLines, lines)
	assert.Equal(t, len(res.Perforations), circles)
}

func TestExportDXF_VCutOnEdgeCutsLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panel.dxf")
	proj, res := buildTestPanel(t, model.CutVCutUnsafe)
	proj.Settings.VCutLayer = model.LayerEdgeCuts
	assert.NoError(t, ExportDXF(path, proj, res))
}

func TestExportDXF_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dxf")
	assert.Error(t, ExportDXF(path, model.NewProject(), model.BuildResult{}))
}

func TestExtendCut(t *testing.T) {
	c := model.NewCut([]r2.Vec{{X: 10, Y: 5}, {X: 10, Y: 25}})
	a, b := extendCut(c, VCutExtent)
	assert.Equal(t, r2.Vec{X: 10, Y: 2}, a)
	assert.Equal(t, r2.Vec{X: 10, Y: 28}, b)

	zero := model.NewCut([]r2.Vec{{X: 1, Y: 1}, {X: 1, Y: 1}})
	a, b = extendCut(zero, VCutExtent)
	assert.Equal(t, a, b)
}
