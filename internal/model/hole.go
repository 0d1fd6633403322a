package model

import (
	"github.com/google/uuid"
	"github.com/piwi3910/PanelCut/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Hole is a keep-out region cut from the panel substrate. The outline is
// stored relative to its bounding box minimum; X, Y place it on the panel.
type Hole struct {
	ID      string  `json:"id"`
	Outline Outline `json:"outline"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`

	OffX float64 `json:"-"`
	OffY float64 `json:"-"`
}

// NewHole creates a hole from points given relative to the panel origin.
func NewHole(points Outline) Hole {
	min, _ := points.BoundingBox()
	return Hole{
		ID:      uuid.New().String()[:8],
		Outline: points.Translate(-min.X, -min.Y),
		X:       min.X,
		Y:       min.Y,
	}
}

// Polygon returns the hole in panel coordinates.
func (h Hole) Polygon() geom.Polygon {
	return geom.Polygon{Exterior: h.Outline.Ring()}.Translate(r2.Vec{X: h.X + h.OffX, Y: h.Y + h.OffY})
}

// BoundingBox returns the panel-space bounds of the hole.
func (h Hole) BoundingBox() (r2.Box, bool) {
	if len(h.Outline) < 3 {
		return r2.Box{}, false
	}
	return h.Polygon().Bounds(), true
}

// Contains reports whether p lies strictly inside the hole.
func (h Hole) Contains(p r2.Vec) bool {
	return h.Polygon().Contains(p)
}

// Move shifts the hole by dx, dy.
func (h *Hole) Move(dx, dy float64) {
	h.X += dx
	h.Y += dy
}

// Copy returns a deep copy of the hole.
func (h Hole) Copy() Hole {
	c := h
	c.Outline = append(Outline(nil), h.Outline...)
	return c
}

// HolePolygons returns the panel-space polygons of the holes.
func HolePolygons(holes []Hole) []geom.Polygon {
	out := make([]geom.Polygon, 0, len(holes))
	for _, h := range holes {
		if len(h.Outline) >= 3 {
			out = append(out, h.Polygon())
		}
	}
	return out
}
