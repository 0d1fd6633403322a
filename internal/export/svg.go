package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// svgUnit is the number of SVG user units per millimetre. svgo works in
// integers, so coordinates are kept in hundredths of a millimetre.
const svgUnit = 100

// svgMargin surrounds the drawing, in mm.
const svgMargin = 5.0

// ExportSVG writes an SVG preview of the panel to path.
func ExportSVG(path string, proj model.Project, res model.BuildResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create SVG file: %w", err)
	}
	if err := RenderSVG(f, proj, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderSVG draws the panel as SVG. One user unit is 0.01 mm and the
// document is sized in millimetres.
func RenderSVG(w io.Writer, proj model.Project, res model.BuildResult) error {
	box, ok := panelBounds(proj, res)
	if !ok {
		return fmt.Errorf("no panel to export")
	}
	min := r2.Sub(box.Min, r2.Vec{X: svgMargin, Y: svgMargin})
	size := r2.Add(box.Size(), r2.Vec{X: 2 * svgMargin, Y: 2 * svgMargin})

	canvas := svg.New(w)
	canvas.StartviewUnit(int(math.Ceil(size.X)), int(math.Ceil(size.Y)), "mm",
		su(min.X), su(min.Y), su(size.X), su(size.Y))
	canvas.Title(proj.Name)

	canvas.Gid("substrate")
	for _, s := range res.Substrate {
		canvas.Path(shapePath(s), fmt.Sprintf("fill:%s;fill-rule:evenodd;stroke:#1b5e20;stroke-width:%d", substrateColor.hex(), su(0.1)))
	}
	canvas.Gend()

	canvas.Gid("tabs")
	for _, t := range res.Tabs {
		canvas.Path(shapePath(t), fmt.Sprintf("fill:none;stroke:%s;stroke-width:%d", tabColor.hex(), su(0.1)))
	}
	canvas.Gend()

	names := boardNames(res)
	canvas.Gid("boards")
	for i, b := range proj.Boards {
		col := boardColors[i%len(boardColors)]
		for _, p := range b.Shapes() {
			canvas.Path(shapePath(model.ShapeFromPolygon(p)),
				fmt.Sprintf("fill:%s;fill-rule:evenodd;stroke:#1e1e1e;stroke-width:%d", col.hex(), su(0.1)))
		}
		if c, ok := b.BoundingBox(); ok {
			center := c.Center()
			canvas.Text(su(center.X), su(center.Y), boardName(names, b),
				fmt.Sprintf("text-anchor:middle;dominant-baseline:middle;font-family:sans-serif;font-size:%d;fill:#000", su(2)))
		}
	}
	canvas.Gend()

	if len(res.Conflicts) > 0 {
		canvas.Gid("conflicts")
		for _, c := range res.Conflicts {
			for _, s := range c.Region {
				canvas.Path(shapePath(s), fmt.Sprintf("fill:%s;fill-opacity:0.5;stroke:none", conflictColor.hex()))
			}
		}
		canvas.Gend()
	}

	canvas.Gid("vcuts")
	for _, c := range res.VCuts {
		a, b := c.Ends()
		canvas.Line(su(a.X), su(a.Y), su(b.X), su(b.Y),
			fmt.Sprintf("stroke:%s;stroke-width:%d;stroke-dasharray:%d,%d", vcutColor.hex(), su(0.2), su(1), su(0.5)))
	}
	canvas.Gend()

	canvas.Gid("perforations")
	r := su(proj.Settings.MouseBiteDiameter / 2)
	for _, p := range res.Perforations {
		canvas.Circle(su(p.X), su(p.Y), r, fmt.Sprintf("fill:%s;stroke:#000;stroke-width:%d", biteColor.hex(), su(0.02)))
	}
	canvas.Gend()

	canvas.End()
	return nil
}

// su converts millimetres to SVG user units.
func su(mm float64) int {
	return int(math.Round(mm * svgUnit))
}

// shapePath renders a shape as path data, holes as further subpaths.
func shapePath(s model.Shape) string {
	var b strings.Builder
	ring := func(o model.Outline) {
		for i, p := range o {
			if i == 0 {
				fmt.Fprintf(&b, "M%d %d", su(p.X), su(p.Y))
				continue
			}
			fmt.Fprintf(&b, " L%d %d", su(p.X), su(p.Y))
		}
		if len(o) > 0 {
			b.WriteString(" Z ")
		}
	}
	ring(s.Exterior)
	for _, h := range s.Holes {
		ring(h)
	}
	return strings.TrimSpace(b.String())
}
