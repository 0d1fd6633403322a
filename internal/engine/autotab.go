package engine

import (
	"math"

	"github.com/piwi3910/PanelCut/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// tabResult is one synthesized bridge and the boundary arc it lands on.
type tabResult struct {
	Tab  geom.Polygon
	Face []r2.Vec
}

// perpendicular returns d rotated a quarter turn.
func perpendicular(d r2.Vec) r2.Vec {
	return r2.Vec{X: d.Y, Y: -d.X}
}

// spanningPoints computes the two side origins of a tab of the given width
// centred on origin. Each side is snapped onto the board outline along the
// tab direction and then nudged just outside it. ok is false when the
// origin lies strictly inside the substrate or a side line misses the board.
func spanningPoints(substrate, board []geom.Polygon, origin, outward r2.Vec, width float64) (a, b r2.Vec, ok bool) {
	for _, p := range substrate {
		if p.Contains(origin) {
			return r2.Vec{}, r2.Vec{}, false
		}
	}
	if r2.Norm(outward) == 0 {
		return r2.Vec{}, r2.Vec{}, false
	}
	outward = r2.Unit(outward)
	eps := r2.Scale(geom.Epsilon, outward)
	origin = r2.Sub(origin, eps)
	half := r2.Scale(width/2, perpendicular(outward))

	snap := func(side r2.Vec) (r2.Vec, bool) {
		// The point of the side line nearest the origin is the one nearest
		// the side origin itself, so cast both ways and keep the shorter.
		best, bestT, found := r2.Vec{}, math.Inf(1), false
		for _, dir := range []r2.Vec{outward, r2.Scale(-1, outward)} {
			for _, p := range board {
				if h, ok := geom.RayRing(side, dir, p.Exterior, geom.MaxExtent/2); ok && h.T < bestT {
					best, bestT, found = h.Point, h.T, true
				}
			}
		}
		return r2.Add(best, r2.Scale(2, eps)), found
	}
	if a, ok = snap(r2.Add(origin, half)); !ok {
		return r2.Vec{}, r2.Vec{}, false
	}
	if b, ok = snap(r2.Sub(origin, half)); !ok {
		return r2.Vec{}, r2.Vec{}, false
	}
	return a, b, true
}

// autotabs casts both side rays into every ring of every substrate piece and
// returns a bridge for each ring both rays hit within maxDepth.
func autotabs(substrate []geom.Polygon, a, b, dir r2.Vec, maxDepth float64) []tabResult {
	if r2.Norm(dir) == 0 {
		return nil
	}
	dir = r2.Unit(dir)
	eps := r2.Scale(geom.Epsilon, dir)
	var out []tabResult
	for _, piece := range substrate {
		for _, ring := range piece.Rings() {
			ha, okA := geom.RayRing(a, dir, ring, maxDepth)
			hb, okB := geom.RayRing(b, dir, ring, maxDepth)
			if !okA || !okB {
				continue
			}
			face := geom.BiteBoundary(ring, hb, ha)
			tab := make(geom.Ring, 0, len(face)+2)
			for _, p := range face {
				tab = append(tab, r2.Add(p, eps))
			}
			tab = append(tab, a, b)
			out = append(out, tabResult{Tab: geom.Polygon{Exterior: tab.Dedupe(1e-9)}, Face: face})
		}
	}
	return out
}

// autotab returns the bridge with the smallest area, the nearest and
// tightest one.
func autotab(substrate []geom.Polygon, a, b, dir r2.Vec, maxDepth float64) (tabResult, bool) {
	tabs := autotabs(substrate, a, b, dir, maxDepth)
	if len(tabs) == 0 {
		return tabResult{}, false
	}
	best := 0
	for i := range tabs {
		if tabs[i].Tab.Area() < tabs[best].Tab.Area() {
			best = i
		}
	}
	return tabs[best], true
}

// synthesis collects the bridges and cut lines of one build.
type synthesis struct {
	substrate []geom.Polygon
	boards    [][]geom.Polygon // Shapes of every board, for the touch test
	maxDepth  float64

	tabs []geom.Polygon
	cuts [][]r2.Vec
}

// touchesBoard reports whether a face lies on some board edge.
func (s *synthesis) touchesBoard(face []r2.Vec) bool {
	for _, shapes := range s.boards {
		if geom.PathDistance(shapes, face) <= geom.Epsilon {
			return true
		}
	}
	return false
}

// bridge builds a two-sided tab at origin on the outline of board. The
// outward bridge reaches into the neighbouring material; its face becomes a
// cut only when it lands on a board. The inward bridge closes the gap back
// to the owning board and always yields a cut. Misses are silent.
func (s *synthesis) bridge(board []geom.Polygon, origin, outward r2.Vec, width float64) {
	a, b, ok := spanningPoints(s.substrate, board, origin, outward, width)
	if !ok {
		return
	}
	out, ok := autotab(s.substrate, a, b, outward, s.maxDepth)
	if !ok {
		return
	}
	s.tabs = append(s.tabs, out.Tab)
	if s.touchesBoard(out.Face) {
		s.cuts = append(s.cuts, out.Face)
	}
	in, ok := autotab(s.substrate, b, a, r2.Scale(-1, outward), s.maxDepth)
	if !ok {
		return
	}
	s.tabs = append(s.tabs, in.Tab)
	s.cuts = append(s.cuts, in.Face)
}
