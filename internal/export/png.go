package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"

	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultPNGScale is the preview resolution in pixels per millimetre.
const DefaultPNGScale = 8.0

// maxPNGSide caps the preview size in pixels.
const maxPNGSide = 8000

// ExportPNG writes a raster preview of the panel to path.
func ExportPNG(path string, proj model.Project, res model.BuildResult, scale float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PNG file: %w", err)
	}
	if err := RenderPNG(f, proj, res, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// RenderPNG rasterises the panel at scale pixels per millimetre and encodes
// it as PNG. A non-positive scale uses DefaultPNGScale.
func RenderPNG(w io.Writer, proj model.Project, res model.BuildResult, scale float64) error {
	img, err := Rasterize(proj, res, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// Rasterize draws the panel into an RGBA image.
func Rasterize(proj model.Project, res model.BuildResult, scale float64) (*image.RGBA, error) {
	box, ok := panelBounds(proj, res)
	if !ok {
		return nil, fmt.Errorf("no panel to export")
	}
	if scale <= 0 {
		scale = DefaultPNGScale
	}
	size := box.Size()
	longest := math.Max(size.X, size.Y) + 2*svgMargin
	if longest*scale > maxPNGSide {
		scale = maxPNGSide / longest
	}
	width := int(math.Ceil((size.X + 2*svgMargin) * scale))
	height := int(math.Ceil((size.Y + 2*svgMargin) * scale))

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	v := view{min: box.Min, scale: scale, offX: svgMargin * scale, offY: svgMargin * scale}
	r := newRaster(img)

	for _, s := range res.Substrate {
		r.fillShape(v, s, substrateColor)
	}
	for _, t := range res.Tabs {
		r.strokeRing(v, t.Exterior, tabColor, 0.1)
	}

	names := boardNames(res)
	for i, b := range proj.Boards {
		col := boardColors[i%len(boardColors)]
		for _, p := range b.Shapes() {
			r.fillShape(v, model.ShapeFromPolygon(p), col)
		}
	}
	for _, c := range res.Conflicts {
		for _, s := range c.Region {
			r.fillShape(v, s, conflictColor)
		}
	}
	for _, c := range res.VCuts {
		r.strokePath(v, c.Path, vcutColor, 0.2)
	}
	radius := proj.Settings.MouseBiteDiameter / 2
	for _, p := range res.Perforations {
		x, y := v.pt(p.Vec())
		r.fill.Clear()
		rasterx.AddCircle(x, y, math.Max(v.len(radius), 0.5), r.fill)
		r.fill.SetColor(rgba(biteColor))
		r.fill.Draw()
	}

	for _, b := range proj.Boards {
		if c, ok := b.BoundingBox(); ok {
			x, y := v.pt(c.Center())
			drawLabel(img, boardName(names, b), x, y)
		}
	}
	return img, nil
}

// raster wraps the rasterx filler and stroker sharing one scanner.
type raster struct {
	fill   *rasterx.Filler
	stroke *rasterx.Stroker
}

func newRaster(img *image.RGBA) raster {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	return raster{
		fill:   rasterx.NewFiller(w, h, scanner),
		stroke: rasterx.NewStroker(w, h, scanner),
	}
}

// fillShape fills the exterior and cuts the holes with the even-odd rule.
func (r raster) fillShape(v view, s model.Shape, c rgb) {
	r.fill.Clear()
	r.fill.SetWinding(false)
	addRing(r.fill, v, s.Exterior, true)
	for _, h := range s.Holes {
		addRing(r.fill, v, h, true)
	}
	r.fill.SetColor(rgba(c))
	r.fill.Draw()
}

func (r raster) strokeRing(v view, o model.Outline, c rgb, widthMM float64) {
	r.strokeOutline(v, o, c, widthMM, true)
}

func (r raster) strokePath(v view, o model.Outline, c rgb, widthMM float64) {
	r.strokeOutline(v, o, c, widthMM, false)
}

func (r raster) strokeOutline(v view, o model.Outline, c rgb, widthMM float64, closed bool) {
	width := math.Max(v.len(widthMM), 1)
	r.stroke.Clear()
	r.stroke.SetStroke(fixed.Int26_6(width*64), 4<<6, rasterx.ButtCap, rasterx.ButtCap, rasterx.FlatGap, rasterx.Miter)
	addRing(r.stroke, v, o, closed)
	r.stroke.SetColor(rgba(c))
	r.stroke.Draw()
}

func addRing(a rasterx.Adder, v view, o model.Outline, closed bool) {
	if len(o) < 2 {
		return
	}
	for i, p := range o {
		x, y := v.pt(p.Vec())
		if i == 0 {
			a.Start(rasterx.ToFixedP(x, y))
			continue
		}
		a.Line(rasterx.ToFixedP(x, y))
	}
	a.Stop(closed)
}

func rgba(c rgb) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

// drawLabel writes s centred on x, y with the built-in bitmap face.
func drawLabel(img *image.RGBA, s string, x, y float64) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(s)
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(x*64) - w/2,
		Y: fixed.Int26_6(y*64) + fixed.I(basicfont.Face7x13.Ascent/2),
	}
	d.DrawString(s)
}
