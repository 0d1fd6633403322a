package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const filletSegments = 8

// FilletConcave rounds the inside corners of the polygon set with the given
// radius, as a router bit of that radius would leave them. Corners whose
// adjacent edges are too short for the radius are left sharp.
func FilletConcave(polys []Polygon, radius float64) []Polygon {
	if radius <= 0 || len(polys) == 0 {
		return polys
	}
	var patches []Polygon
	for _, p := range polys {
		p = p.Normalized()
		for _, r := range p.Rings() {
			patches = append(patches, filletPatches(r.Dedupe(1e-9), radius)...)
		}
	}
	if len(patches) == 0 {
		return polys
	}
	return Union(polys, UnionAll(patches))
}

func filletPatches(r Ring, radius float64) []Polygon {
	n := len(r)
	if n < 3 {
		return nil
	}
	var out []Polygon
	for i := 0; i < n; i++ {
		prev, v, next := r[(i-1+n)%n], r[i], r[(i+1)%n]
		e1, e2 := r2.Sub(v, prev), r2.Sub(next, v)
		l1, l2 := r2.Norm(e1), r2.Norm(e2)
		if l1 < 1e-12 || l2 < 1e-12 || r2.Cross(e1, e2) >= -1e-12 {
			continue
		}
		u1, u2 := r2.Scale(1/l1, e1), r2.Scale(1/l2, e2)
		turn := math.Acos(math.Max(-1, math.Min(1, r2.Dot(u1, u2))))
		gap := math.Pi - turn
		if gap < 1e-6 {
			continue
		}
		t := radius / math.Tan(gap/2)
		if t > l1 || t > l2 {
			continue
		}
		bis := r2.Sub(u2, u1)
		if r2.Norm(bis) < 1e-12 {
			continue
		}
		c := r2.Add(v, r2.Scale(radius/math.Sin(gap/2), r2.Unit(bis)))
		t1 := r2.Sub(v, r2.Scale(t, u1))
		t2 := r2.Add(v, r2.Scale(t, u2))
		a0 := math.Atan2(t1.Y-c.Y, t1.X-c.X)
		a1 := math.Atan2(t2.Y-c.Y, t2.X-c.X)
		ring := Ring{v}
		ring = append(ring, arcPoints(c, radius, a0, a1, filletSegments)...)
		out = append(out, Polygon{Exterior: ring})
	}
	return out
}
