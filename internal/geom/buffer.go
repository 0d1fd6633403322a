package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// mitreLimit caps the mitre length as a multiple of the buffer distance;
// sharper corners are bevelled.
const mitreLimit = 5.0

// MitreBuffer grows the polygon outward by d with mitred corners. Holes
// shrink by the same amount. A non-positive distance returns the polygon
// unchanged.
func MitreBuffer(p Polygon, d float64) []Polygon {
	p = p.Normalized()
	if d <= 0 {
		return []Polygon{p}
	}
	pieces := []Polygon{p}
	for _, r := range p.Rings() {
		r = r.Dedupe(1e-9)
		n := len(r)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			a, b := r[i], r[(i+1)%n]
			nrm := outwardNormal(a, b)
			if nrm == (r2.Vec{}) {
				continue
			}
			off := r2.Scale(d, nrm)
			pieces = append(pieces, Polygon{Exterior: Ring{a, r2.Add(a, off), r2.Add(b, off), b}})
		}
		for i := 0; i < n; i++ {
			prev, v, next := r[(i-1+n)%n], r[i], r[(i+1)%n]
			e1, e2 := r2.Sub(v, prev), r2.Sub(next, v)
			if r2.Cross(e1, e2) <= 1e-12 {
				continue
			}
			n1, n2 := outwardNormal(prev, v), outwardNormal(v, next)
			p1, p2 := r2.Add(v, r2.Scale(d, n1)), r2.Add(v, r2.Scale(d, n2))
			k := 1 + r2.Dot(n1, n2)
			if k > 1e-9 {
				m := r2.Add(v, r2.Scale(d/k, r2.Add(n1, n2)))
				if r2.Norm(r2.Sub(m, v)) <= mitreLimit*d {
					pieces = append(pieces, Polygon{Exterior: Ring{v, p1, m, p2}})
					continue
				}
			}
			pieces = append(pieces, Polygon{Exterior: Ring{v, p1, p2}})
		}
	}
	return UnionAll(pieces)
}

// outwardNormal returns the unit normal pointing away from the material of a
// normalised ring edge.
func outwardNormal(a, b r2.Vec) r2.Vec {
	e := r2.Sub(b, a)
	l := r2.Norm(e)
	if l < 1e-12 {
		return r2.Vec{}
	}
	return r2.Vec{X: e.Y / l, Y: -e.X / l}
}

// arcPoints samples the short arc around c from angle a0 to a1.
func arcPoints(c r2.Vec, radius, a0, a1 float64, segments int) []r2.Vec {
	sweep := a1 - a0
	for sweep > math.Pi {
		sweep -= 2 * math.Pi
	}
	for sweep < -math.Pi {
		sweep += 2 * math.Pi
	}
	pts := make([]r2.Vec, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := a0 + sweep*float64(i)/float64(segments)
		pts = append(pts, r2.Vec{X: c.X + radius*math.Cos(a), Y: c.Y + radius*math.Sin(a)})
	}
	return pts
}
