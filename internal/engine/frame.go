package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
)

// FrameRect returns the outer frame rectangle in panel coordinates.
func FrameRect(s model.PanelSettings) geom.Polygon {
	return geom.Rect(s.FrameOffX, s.FrameOffY, s.FrameOffX+s.Frame.Width, s.FrameOffY+s.Frame.Height)
}

// Rails returns the frame rails that have a thickness. A disabled frame has
// none.
func Rails(s model.PanelSettings) []geom.Polygon {
	f := s.Frame
	if !f.Enabled {
		return nil
	}
	x0, y0 := s.FrameOffX, s.FrameOffY
	x1, y1 := x0+f.Width, y0+f.Height
	var rails []geom.Polygon
	if f.Top > 0 {
		rails = append(rails, geom.Rect(x0, y0, x1, y0+f.Top))
	}
	if f.Bottom > 0 {
		rails = append(rails, geom.Rect(x0, y1-f.Bottom, x1, y1))
	}
	if f.Left > 0 {
		rails = append(rails, geom.Rect(x0, y0, x0+f.Left, y1))
	}
	if f.Right > 0 {
		rails = append(rails, geom.Rect(x1-f.Right, y0, x1, y1))
	}
	return rails
}

// tightBody fills the frame with material and cuts every board out of it,
// leaving the spacing as a gap around each board. The result covers the
// frame rectangle and every board, minus the holes; only the largest piece
// is kept so stray slivers between boards do not become substrate.
func tightBody(boards []model.Board, s model.PanelSettings, holes []geom.Polygon) (geom.Polygon, bool) {
	box := FrameRect(s).Bounds()
	for _, b := range boards {
		if bb, ok := b.BoundingBox(); ok {
			box = geom.UnionBox(box, bb)
		}
	}
	body := []geom.Polygon{geom.BoxPolygon(box)}
	spacing := s.ClampedSpacing()
	for _, b := range boards {
		for _, shape := range b.Shapes() {
			body = geom.Difference(body, geom.MitreBuffer(shape.Filled(), spacing))
		}
	}
	if len(holes) > 0 {
		body = geom.Difference(body, holes)
	}
	return geom.LargestPiece(body)
}

// FitFrame resizes the frame so it reaches the boards' right and bottom
// extent plus the right and bottom rails (and the spacing in front of a
// rail). Sizes are rounded to 0.001 mm. Boards are assumed to be aligned to
// the top left.
func FitFrame(proj *model.Project) error {
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range proj.Boards {
		box, ok := b.BoundingBox()
		if !ok {
			continue
		}
		maxX, maxY = math.Max(maxX, box.Max.X), math.Max(maxY, box.Max.Y)
	}
	if math.IsInf(maxX, -1) {
		return fmt.Errorf("fit frame: %w", model.ErrNoBoards)
	}
	s := &proj.Settings
	spacing := s.ClampedSpacing()
	gap := func(rail float64) float64 {
		if rail > 0 {
			return rail + spacing
		}
		return 0
	}
	s.Frame.Width = round3(maxX - s.FrameOffX + gap(s.Frame.Right))
	s.Frame.Height = round3(maxY - s.FrameOffY + gap(s.Frame.Bottom))
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
