package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// candidate is a proposed automatic tab.
type candidate struct {
	Board  int    // Index into the board list
	Point  r2.Vec // Anchor, half the spacing outside the board edge
	Inward r2.Vec // Unit direction back into the board
	// Partition counts the boards whose leading edge precedes the point on
	// the axis along the edge. Candidates sharing a gap share a partition.
	Partition int
	// Length is the edge length per candidate; finer subdivisions sort first.
	Length float64
}

// horizontal reports whether the candidate sits on a top or bottom edge.
func (c candidate) horizontal() bool {
	return c.Inward.X == 0
}

// conflictFunc decides whether c may not be accepted next to the already
// accepted candidates.
type conflictFunc func(c candidate, accepted []candidate) bool

// selectNonOverlapping greedily accepts candidates in order, skipping any
// that conflict with one accepted before it.
func selectNonOverlapping(cands []candidate, conflicts conflictFunc) []candidate {
	accepted := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if conflicts(c, accepted) {
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted
}

// tabConflicts builds the proximity rule for automatic tabs. Two candidates
// on the same axis and partition conflict when they are less than spacing
// apart across the gap and less than maxTabSpacing/3 apart along it. The rule
// only applies when the gap is no wider than a mouse bite, because only then
// do the tabs of facing edges land in the same gap. Candidates of one
// partition at the same point always conflict: facing edges propose the same
// bridge.
func tabConflicts(spacing, mbDiameter, maxTabSpacing float64) conflictFunc {
	along := maxTabSpacing / 3
	return func(c candidate, accepted []candidate) bool {
		for _, t := range accepted {
			if c.horizontal() != t.horizontal() || c.Partition != t.Partition {
				continue
			}
			if geom.Near(c.Point, t.Point, geom.Epsilon) {
				return true
			}
			if spacing > mbDiameter {
				continue
			}
			dx, dy := math.Abs(c.Point.X-t.Point.X), math.Abs(c.Point.Y-t.Point.Y)
			if c.horizontal() && dy < spacing && dx < along {
				return true
			}
			if !c.horizontal() && dx < spacing && dy < along {
				return true
			}
		}
		return false
	}
}

// neighbourBoxes returns the boxes an edge of board i can face: the other
// boards and the frame (the whole frame when tight, otherwise its rails).
func neighbourBoxes(boards []model.Board, i int, s model.PanelSettings) []r2.Box {
	var out []r2.Box
	for j, b := range boards {
		if j == i {
			continue
		}
		if box, ok := b.BoundingBox(); ok {
			out = append(out, box)
		}
	}
	f := s.Frame
	if !f.Enabled {
		return out
	}
	x0, y0 := s.FrameOffX, s.FrameOffY
	x1, y1 := x0+f.Width, y0+f.Height
	if f.Tight {
		return append(out, r2.NewBox(x0, y0, x1, y1))
	}
	if f.Top > 0 {
		out = append(out, r2.NewBox(x0, y0, x1, y0+f.Top))
	}
	if f.Bottom > 0 {
		out = append(out, r2.NewBox(x0, y1-f.Bottom, x1, y1))
	}
	if f.Left > 0 {
		out = append(out, r2.NewBox(x0, y0, x0+f.Left, y1))
	}
	if f.Right > 0 {
		out = append(out, r2.NewBox(x1-f.Right, y0, x1, y1))
	}
	return out
}

func rangesTouch(a0, a1, b0, b1 float64) bool {
	return a0 <= b1 && b0 <= a1
}

// autoCandidates proposes tabs on the bounding-box edges of every board that
// has no manual tabs. An edge gets candidates when some neighbour shares its
// row or column and the board is not the outermost one on that side.
func autoCandidates(boards []model.Board, s model.PanelSettings) []candidate {
	spacing := s.ClampedSpacing()
	if !s.AutoTab || s.MaxTabSpacing <= 0 {
		return nil
	}
	var xParts, yParts []float64
	for _, b := range boards {
		if box, ok := b.BoundingBox(); ok {
			xParts = append(xParts, box.Min.X)
			yParts = append(yParts, box.Min.Y)
		}
	}
	countBelow := func(parts []float64, v float64) int {
		n := 0
		for _, p := range parts {
			if p < v {
				n++
			}
		}
		return n
	}

	var cands []candidate
	for i, b := range boards {
		if len(b.Tabs) > 0 {
			continue
		}
		box, ok := b.BoundingBox()
		if !ok {
			continue
		}
		var rowMin, rowMax, colMin, colMax = math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
		row, col := false, false
		for _, n := range neighbourBoxes(boards, i, s) {
			if rangesTouch(n.Min.Y, n.Max.Y, box.Min.Y, box.Max.Y) {
				row = true
				rowMin, rowMax = math.Min(rowMin, n.Min.X), math.Max(rowMax, n.Max.X)
			}
			if rangesTouch(n.Min.X, n.Max.X, box.Min.X, box.Max.X) {
				col = true
				colMin, colMax = math.Min(colMin, n.Min.Y), math.Max(colMax, n.Max.Y)
			}
		}

		w, h := box.Size().X, box.Size().Y
		emitH := func(y float64, inward r2.Vec) {
			n := math.Ceil(w/s.MaxTabSpacing) + 1
			for k := 1.0; k < n; k++ {
				p := r2.Vec{X: box.Min.X + w*k/n, Y: y}
				cands = append(cands, candidate{Board: i, Point: p, Inward: inward, Partition: countBelow(xParts, p.X), Length: w / n})
			}
		}
		emitV := func(x float64, inward r2.Vec) {
			n := math.Ceil(h/s.MaxTabSpacing) + 1
			for k := 1.0; k < n; k++ {
				p := r2.Vec{X: x, Y: box.Min.Y + h*k/n}
				cands = append(cands, candidate{Board: i, Point: p, Inward: inward, Partition: countBelow(yParts, p.Y), Length: h / n})
			}
		}
		if col && box.Min.Y != colMin {
			emitH(box.Min.Y-spacing/2, r2.Vec{X: 0, Y: 1})
		}
		if col && box.Max.Y != colMax {
			emitH(box.Max.Y+spacing/2, r2.Vec{X: 0, Y: -1})
		}
		if row && box.Min.X != rowMin {
			emitV(box.Min.X-spacing/2, r2.Vec{X: 1, Y: 0})
		}
		if row && box.Max.X != rowMax {
			emitV(box.Max.X+spacing/2, r2.Vec{X: -1, Y: 0})
		}
	}
	return cands
}

// filterCandidates drops candidates inside a hole and orders the rest by
// partition, then by per-candidate edge length.
func filterCandidates(cands []candidate, holes []geom.Polygon) []candidate {
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		inside := false
		for _, h := range holes {
			if h.Contains(c.Point) {
				inside = true
				break
			}
		}
		if !inside {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Partition != out[j].Partition {
			return out[i].Partition < out[j].Partition
		}
		return out[i].Length < out[j].Length
	})
	return out
}
