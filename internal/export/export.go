// Package export writes a built panel to files: a PDF drawing with QR-coded
// board labels, SVG and PNG previews, a DXF panel and an XLSX cut report.
package export

import (
	"fmt"
	"math"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// rgb is a drawing colour.
type rgb struct {
	R, G, B int
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// boardColors is the palette boards cycle through.
var boardColors = []rgb{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 121, G: 85, B: 72},  // brown
}

var (
	substrateColor = rgb{R: 46, G: 125, B: 50}
	tabColor       = rgb{R: 255, G: 193, B: 7}
	vcutColor      = rgb{R: 33, G: 33, B: 33}
	biteColor      = rgb{R: 255, G: 255, B: 255}
	conflictColor  = rgb{R: 244, G: 67, B: 54}
)

// view maps panel millimetres into a drawing area. Panel y grows downwards,
// like the page.
type view struct {
	min   r2.Vec
	scale float64
	offX  float64
	offY  float64
}

// fitView scales box into the area at x, y of size w by h, centred
// horizontally.
func fitView(box r2.Box, x, y, w, h float64) view {
	size := r2.Sub(box.Max, box.Min)
	scale := 1.0
	if size.X > 0 && size.Y > 0 {
		scale = math.Min(w/size.X, h/size.Y)
	}
	return view{
		min:   box.Min,
		scale: scale,
		offX:  x + (w-size.X*scale)/2,
		offY:  y,
	}
}

func (v view) pt(p r2.Vec) (float64, float64) {
	return v.offX + (p.X-v.min.X)*v.scale, v.offY + (p.Y-v.min.Y)*v.scale
}

func (v view) len(d float64) float64 {
	return d * v.scale
}

// panelBounds returns the extent of everything drawn: substrate and boards.
func panelBounds(proj model.Project, res model.BuildResult) (r2.Box, bool) {
	box, ok := res.Bounds()
	for _, b := range proj.Boards {
		bb, bok := b.BoundingBox()
		if !bok {
			continue
		}
		if !ok {
			box, ok = bb, true
			continue
		}
		box = geom.UnionBox(box, bb)
	}
	return box, ok
}

// boardNames maps board IDs to their names in the built panel.
func boardNames(res model.BuildResult) map[string]string {
	names := make(map[string]string, len(res.Boards))
	for _, r := range res.Boards {
		names[r.ID] = r.Name
	}
	return names
}

// boardName returns the panel name of b, falling back to its ident.
func boardName(names map[string]string, b model.Board) string {
	if n, ok := names[b.ID]; ok && n != "" {
		return n
	}
	return b.Ident
}

// shapeArea returns the area of a shape set with holes removed.
func shapeArea(shapes []model.Shape) float64 {
	var a float64
	for _, s := range shapes {
		a += s.Polygon().Area()
	}
	return a
}
