package export

import (
	"fmt"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"
	"gonum.org/v1/gonum/spatial/r2"
)

// VCutExtent is how far a v-cut line runs past each end of its cut, in mm.
const VCutExtent = 3.0

// ExportDXF writes the panel for fabrication: substrate rings on Edge.Cuts,
// v-cuts on the configured layer and perforations as circles on Edge.Cuts.
// DXF is y-up, so y is mirrored.
func ExportDXF(path string, proj model.Project, res model.BuildResult) error {
	if len(res.Substrate) == 0 {
		return fmt.Errorf("no panel to export")
	}

	d := dxf.NewDrawing()
	layers := map[string]bool{}
	use := func(name string) error {
		if layers[name] {
			return d.ChangeLayer(name)
		}
		layers[name] = true
		_, err := d.AddLayer(name, dxf.DefaultColor, dxf.DefaultLineType, true)
		return err
	}

	if err := use(model.LayerEdgeCuts); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	for _, s := range res.Substrate {
		if err := dxfRing(d, s.Exterior); err != nil {
			return err
		}
		for _, h := range s.Holes {
			if err := dxfRing(d, h); err != nil {
				return err
			}
		}
	}

	r := proj.Settings.MouseBiteDiameter / 2
	for _, p := range res.Perforations {
		if _, err := d.Circle(p.X, -p.Y, 0, r); err != nil {
			return fmt.Errorf("failed to write perforation: %w", err)
		}
	}

	if len(res.VCuts) > 0 {
		layer := proj.Settings.VCutLayer
		if layer == "" {
			layer = model.LayerCmtsUser
		}
		if err := use(layer); err != nil {
			return fmt.Errorf("failed to add layer: %w", err)
		}
		for _, c := range res.VCuts {
			a, b := extendCut(c, VCutExtent)
			if _, err := d.Line(a.X, -a.Y, 0, b.X, -b.Y, 0); err != nil {
				return fmt.Errorf("failed to write v-cut: %w", err)
			}
		}
	}

	return d.SaveAs(path)
}

func dxfRing(d *drawing.Drawing, o model.Outline) error {
	for i := range o {
		a, b := o[i], o[(i+1)%len(o)]
		if _, err := d.Line(a.X, -a.Y, 0, b.X, -b.Y, 0); err != nil {
			return fmt.Errorf("failed to write outline: %w", err)
		}
	}
	return nil
}

// extendCut returns the ends of c pushed outwards by ext along the cut.
func extendCut(c model.Cut, ext float64) (r2.Vec, r2.Vec) {
	a, b := c.Ends()
	dir := r2.Sub(b, a)
	l := r2.Norm(dir)
	if l == 0 {
		return a, b
	}
	dir = r2.Scale(ext/l, dir)
	return r2.Sub(a, dir), r2.Add(b, dir)
}
