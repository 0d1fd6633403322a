package engine

import (
	"math"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// enterProbe is how far a zero-distance contact is pushed along the direction
// to decide whether the shapes really block each other.
const enterProbe = 1e-6

// Distance returns the minimum Euclidean distance between two shape sets.
func Distance(a, b []geom.Polygon) float64 {
	return geom.Distance(a, b)
}

// DirectionalDistance returns how far a can travel along dir before it
// collides with b. ok is false when no collision happens within
// geom.MaxExtent. Shapes whose boundaries already touch head-on give zero;
// shapes that only slide along each other do not collide.
func DirectionalDistance(a, b []geom.Polygon, dir r2.Vec) (dist float64, ok bool) {
	if len(a) == 0 || len(b) == 0 || r2.Norm(dir) == 0 {
		return 0, false
	}
	dir = r2.Unit(dir)
	best := math.Inf(1)
	cast := func(from, into []geom.Polygon, d r2.Vec) {
		for _, p := range from {
			for _, r := range p.Rings() {
				// Edge midpoints catch head-on contacts between edges whose
				// corners coincide exactly.
				for _, e := range r.Edges() {
					for _, v := range []r2.Vec{e.A, e.Midpoint()} {
						if t, hit := castInto(v, d, into); hit && t < best {
							best = t
						}
					}
				}
			}
		}
	}
	cast(a, b, dir)
	// Vertices of b can hit the middle of an edge of a.
	cast(b, a, r2.Scale(-1, dir))
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// castInto returns the nearest collision of a ray with the shapes. Edges
// parallel to the ray are ignored, and a contact at the ray origin only
// counts when moving on would enter the shape.
func castInto(origin, dir r2.Vec, shapes []geom.Polygon) (float64, bool) {
	best := math.Inf(1)
	for _, p := range shapes {
		for _, r := range p.Rings() {
			for _, e := range r.Edges() {
				f := r2.Sub(e.B, e.A)
				den := r2.Cross(dir, f)
				if math.Abs(den) < 1e-12 {
					continue
				}
				w := r2.Sub(e.A, origin)
				t := r2.Cross(w, f) / den
				u := r2.Cross(w, dir) / den
				if t < -geom.Epsilon || t > geom.MaxExtent || u < -1e-9 || u > 1+1e-9 {
					continue
				}
				if t <= geom.Epsilon {
					if !p.Contains(r2.Add(origin, r2.Scale(enterProbe, dir))) {
						continue
					}
					t = 0
				}
				best = math.Min(best, t)
			}
		}
	}
	return best, !math.IsInf(best, 1)
}

// Overlaps reports whether two shape sets share more than a negligible area.
// Touching boundaries do not overlap.
func Overlaps(a, b []geom.Polygon) bool {
	return geom.IntersectionArea(a, b) > geom.AreaEpsilon
}

// BoardDistance is the Euclidean distance between two placed boards.
func BoardDistance(a, b model.Board) float64 {
	return Distance(a.Shapes(), b.Shapes())
}

// BoardDirectionalDistance is DirectionalDistance between two placed boards.
func BoardDirectionalDistance(a, b model.Board, dir r2.Vec) (float64, bool) {
	return DirectionalDistance(a.Shapes(), b.Shapes(), dir)
}
