package geom

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r2"
)

// Hit is a ray/ring intersection.
type Hit struct {
	Point r2.Vec
	// T is the distance travelled along the (unit) ray direction.
	T float64
	// Edge is the index of the ring edge that was hit and U the parameter
	// along that edge.
	Edge int
	U    float64
}

// RayRing returns the nearest intersection of the ray origin+t*dir
// (0 <= t <= maxDist) with the ring. dir need not be normalised.
func RayRing(origin, dir r2.Vec, r Ring, maxDist float64) (Hit, bool) {
	if r2.Norm(dir) == 0 {
		return Hit{}, false
	}
	dir = r2.Unit(dir)
	best := Hit{T: math.Inf(1)}
	found := false
	for i, e := range r.Edges() {
		t, u, ok := rayHit(origin, dir, e)
		if !ok || t > maxDist {
			continue
		}
		if t < best.T {
			best = Hit{Point: r2.Add(origin, r2.Scale(t, dir)), T: t, Edge: i, U: u}
			found = true
		}
	}
	return best, found
}

// RayPolygons casts a ray against every ring of every polygon and returns the
// nearest hit.
func RayPolygons(origin, dir r2.Vec, polys []Polygon, maxDist float64) (r2.Vec, bool) {
	var best r2.Vec
	bestT := math.Inf(1)
	found := false
	for _, p := range polys {
		for _, r := range p.Rings() {
			if h, ok := RayRing(origin, dir, r, maxDist); ok && h.T < bestT {
				best, bestT, found = h.Point, h.T, true
			}
		}
	}
	return best, found
}

// rayHit intersects the unit ray with a segment. Collinear overlaps report the
// nearer segment end in front of the origin.
func rayHit(origin, dir r2.Vec, e Segment) (t, u float64, ok bool) {
	f := r2.Sub(e.B, e.A)
	den := r2.Cross(dir, f)
	w := r2.Sub(e.A, origin)
	if math.Abs(den) < 1e-12 {
		if math.Abs(r2.Cross(dir, w)) > 1e-9 {
			return 0, 0, false
		}
		ta := r2.Dot(w, dir)
		tb := r2.Dot(r2.Sub(e.B, origin), dir)
		switch {
		case ta < 0 && tb < 0:
			return 0, 0, false
		case (ta < 0) != (tb < 0):
			return 0, -ta / (tb - ta), true
		case ta <= tb:
			return ta, 0, true
		default:
			return tb, 1, true
		}
	}
	t = r2.Cross(w, f) / den
	u = r2.Cross(w, dir) / den
	if t < 0 || u < -1e-12 || u > 1+1e-12 {
		return 0, 0, false
	}
	return t, math.Max(0, math.Min(1, u)), true
}

// BiteBoundary returns the part of the ring boundary from hit a to hit b,
// walking in the ring's own vertex order. With normalized rings this keeps
// the material on the left of the path.
func BiteBoundary(r Ring, a, b Hit) []r2.Vec {
	n := len(r)
	if n < 2 {
		return []r2.Vec{a.Point, b.Point}
	}
	path := []r2.Vec{a.Point}
	if a.Edge != b.Edge || a.U > b.U {
		i := (a.Edge + 1) % n
		for k := 0; k < n; k++ {
			path = append(path, r[i])
			if i == b.Edge {
				break
			}
			i = (i + 1) % n
		}
	}
	path = append(path, b.Point)
	return dedupePath(path, 1e-9)
}

func dedupePath(path []r2.Vec, tol float64) []r2.Vec {
	out := make([]r2.Vec, 0, len(path))
	for _, p := range path {
		if len(out) > 0 && Near(p, out[len(out)-1], tol) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortFloats(v []float64) {
	sort.Float64s(v)
}
