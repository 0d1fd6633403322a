package model

import (
	"math"

	"github.com/piwi3910/PanelCut/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Axis classifies a cut by its direction.
type Axis int

const (
	AxisDiagonal   Axis = iota // Neither vertical nor horizontal
	AxisVertical               // Constant x
	AxisHorizontal             // Constant y
)

func (a Axis) String() string {
	switch a {
	case AxisVertical:
		return "Vertical"
	case AxisHorizontal:
		return "Horizontal"
	default:
		return "Diagonal"
	}
}

// Cut is a break-out line between a board and the material around it.
type Cut struct {
	Path      Outline `json:"path"` // Open polyline, usually two points
	Score     bool    `json:"score"`
	Perforate bool    `json:"perforate"`
}

// Ends returns the first and last point of the cut.
func (c Cut) Ends() (r2.Vec, r2.Vec) {
	if len(c.Path) == 0 {
		return r2.Vec{}, r2.Vec{}
	}
	return c.Path[0].Vec(), c.Path[len(c.Path)-1].Vec()
}

// Axis derives the direction class from the path: vertical when every point
// shares the first point's x, horizontal when every point shares its y.
func (c Cut) Axis() Axis {
	if len(c.Path) < 2 {
		return AxisDiagonal
	}
	vertical, horizontal := true, true
	x, y := c.Path[0].X, c.Path[0].Y
	for _, p := range c.Path[1:] {
		vertical = vertical && math.Abs(p.X-x) < 1e-9
		horizontal = horizontal && math.Abs(p.Y-y) < 1e-9
	}
	switch {
	case vertical && !horizontal:
		return AxisVertical
	case horizontal && !vertical:
		return AxisHorizontal
	default:
		return AxisDiagonal
	}
}

// Length returns the length of the cut path.
func (c Cut) Length() float64 {
	return geom.PathLength(c.Vecs())
}

// Vecs returns the cut path as vectors.
func (c Cut) Vecs() []r2.Vec {
	out := make([]r2.Vec, len(c.Path))
	for i, p := range c.Path {
		out[i] = p.Vec()
	}
	return out
}

// NewCut creates a cut from a polyline.
func NewCut(path []r2.Vec) Cut {
	o := make(Outline, len(path))
	for i, v := range path {
		o[i] = PointFromVec(v)
	}
	return Cut{Path: o}
}

// ConflictKind tells why a region was flagged.
type ConflictKind string

const (
	ConflictOutOfFrame ConflictKind = "out_of_frame"
	ConflictOverlap    ConflictKind = "overlap"
)

// Conflict messages, reported verbatim in the build errors.
const (
	MsgOutOfFrame = "PCB placement exceeds frame boundaries"
	MsgOverlap    = "PCB overlaps with other PCB or frame edges"
)

// Conflict is an advisory placement problem.
type Conflict struct {
	Kind    ConflictKind `json:"kind"`
	Message string       `json:"message"`
	Region  []Shape      `json:"region"`
}

// BoardReport names a board in the built panel and lists its unpopulated
// references for the selected build flags.
type BoardReport struct {
	Index int      `json:"index"` // 1-based
	ID    string   `json:"id"`
	Ident string   `json:"ident"`
	Name  string   `json:"name"` // Ident after the reference rename pattern
	DNP   []string `json:"dnp,omitempty"`
}

// BuildResult is the output of one panel build.
type BuildResult struct {
	Substrate    []Shape       `json:"substrate"`
	Tabs         []Shape       `json:"tabs"`
	Cuts         []Cut         `json:"cuts"`
	VCuts        []Cut         `json:"vcuts"`
	Perforations []Point2D     `json:"perforations"`
	Conflicts    []Conflict    `json:"conflicts"`
	Errors       []string      `json:"errors"`
	Boards       []BoardReport `json:"boards"`
	MillFillets  float64       `json:"mill_fillets"` // Inside-corner radius applied to the substrate
}

// Bounds returns the extent of the substrate.
func (r BuildResult) Bounds() (r2.Box, bool) {
	polys := make([]geom.Polygon, len(r.Substrate))
	for i, s := range r.Substrate {
		polys[i] = s.Polygon()
	}
	return geom.Bounds(polys)
}

// SubstratePolygons returns the substrate as geometry.
func (r BuildResult) SubstratePolygons() []geom.Polygon {
	polys := make([]geom.Polygon, len(r.Substrate))
	for i, s := range r.Substrate {
		polys[i] = s.Polygon()
	}
	return polys
}

// ScoreCount returns the number of score cuts after merging.
func (r BuildResult) ScoreCount() int {
	return len(r.VCuts)
}

// PerforatedCount returns the number of perforated cuts.
func (r BuildResult) PerforatedCount() int {
	n := 0
	for _, c := range r.Cuts {
		if c.Perforate {
			n++
		}
	}
	return n
}

// HasConflicts reports whether any placement conflict was found.
func (r BuildResult) HasConflicts() bool {
	return len(r.Conflicts) > 0
}
