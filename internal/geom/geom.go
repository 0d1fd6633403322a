// Package geom provides the 2-D primitives used by the panel engine: rings,
// polygons with holes, boolean operations, distances, ray casting and
// buffering. Coordinates are millimetres in a y-down panel space.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// Epsilon is the shape tolerance used when nudging and snapping points.
	Epsilon = 0.001
	// AreaEpsilon is the smallest area treated as real overlap.
	AreaEpsilon = 1e-6
	// MaxExtent bounds every ray cast and directional query.
	MaxExtent = 10000.0
)

// Ring is a closed sequence of vertices; the last vertex connects back to
// the first and is not repeated.
type Ring []r2.Vec

// Polygon is an outer ring with optional holes.
type Polygon struct {
	Exterior Ring
	Holes    []Ring
}

// Segment is a straight line between two points.
type Segment struct {
	A, B r2.Vec
}

// Rect returns the axis-aligned rectangle spanning the two corners.
func Rect(x1, y1, x2, y2 float64) Polygon {
	b := r2.NewBox(x1, y1, x2, y2)
	return Polygon{Exterior: Ring{
		b.Min,
		{X: b.Max.X, Y: b.Min.Y},
		b.Max,
		{X: b.Min.X, Y: b.Max.Y},
	}}
}

// BoxPolygon converts a bounding box to a rectangle polygon.
func BoxPolygon(b r2.Box) Polygon {
	return Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}

// SignedArea returns the shoelace area; positive for counter-clockwise
// rings in a y-up frame.
func (r Ring) SignedArea() float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var a float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return a / 2
}

// Area returns the absolute enclosed area.
func (r Ring) Area() float64 {
	return math.Abs(r.SignedArea())
}

// Length returns the perimeter.
func (r Ring) Length() float64 {
	var l float64
	for _, s := range r.Edges() {
		l += s.Length()
	}
	return l
}

// Edges returns the closed list of edges; edge i runs from r[i] to r[i+1].
func (r Ring) Edges() []Segment {
	n := len(r)
	if n < 2 {
		return nil
	}
	edges := make([]Segment, n)
	for i := 0; i < n; i++ {
		edges[i] = Segment{A: r[i], B: r[(i+1)%n]}
	}
	return edges
}

// Bounds returns the bounding box of the ring.
func (r Ring) Bounds() r2.Box {
	if len(r) == 0 {
		return r2.Box{}
	}
	b := r2.Box{Min: r[0], Max: r[0]}
	for _, p := range r[1:] {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
	}
	return b
}

// Contains reports whether p is strictly inside the ring (even-odd rule).
// Points on the boundary are not contained.
func (r Ring) Contains(p r2.Vec) bool {
	if len(r) < 3 || r.OnBoundary(p, 1e-9) {
		return false
	}
	inside := false
	n := len(r)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := r[i], r[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// OnBoundary reports whether p lies within tol of any edge.
func (r Ring) OnBoundary(p r2.Vec, tol float64) bool {
	for _, e := range r.Edges() {
		if PointSegmentDistance(p, e) <= tol {
			return true
		}
	}
	return false
}

// Translate shifts all vertices by d.
func (r Ring) Translate(d r2.Vec) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = r2.Add(p, d)
	}
	return out
}

// Rotate rotates all vertices by alpha radians around origin.
func (r Ring) Rotate(alpha float64, origin r2.Vec) Ring {
	if alpha == 0 {
		return r.Clone()
	}
	rot := r2.NewRotation(alpha, origin)
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = rot.Rotate(p)
	}
	return out
}

// Reverse returns the ring with opposite orientation.
func (r Ring) Reverse() Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// Clone returns a copy of the ring.
func (r Ring) Clone() Ring {
	out := make(Ring, len(r))
	copy(out, r)
	return out
}

// Dedupe drops consecutive vertices closer than tol, including a closing
// duplicate of the first vertex.
func (r Ring) Dedupe(tol float64) Ring {
	out := make(Ring, 0, len(r))
	for _, p := range r {
		if len(out) > 0 && r2.Norm(r2.Sub(p, out[len(out)-1])) <= tol {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && r2.Norm(r2.Sub(out[0], out[len(out)-1])) <= tol {
		out = out[:len(out)-1]
	}
	return out
}

// Oriented returns the ring with a positive signed area when ccw is true,
// negative otherwise.
func (r Ring) Oriented(ccw bool) Ring {
	if (r.SignedArea() > 0) != ccw {
		return r.Reverse()
	}
	return r
}

// Rings returns the exterior followed by the holes.
func (p Polygon) Rings() []Ring {
	rings := make([]Ring, 0, 1+len(p.Holes))
	rings = append(rings, p.Exterior)
	return append(rings, p.Holes...)
}

// Area returns the exterior area minus the hole areas.
func (p Polygon) Area() float64 {
	a := p.Exterior.Area()
	for _, h := range p.Holes {
		a -= h.Area()
	}
	return a
}

// Bounds returns the bounding box of the exterior.
func (p Polygon) Bounds() r2.Box {
	return p.Exterior.Bounds()
}

// Contains reports whether pt is inside the exterior and not inside any hole.
func (p Polygon) Contains(pt r2.Vec) bool {
	if !p.Exterior.Contains(pt) {
		return false
	}
	for _, h := range p.Holes {
		if h.Contains(pt) || h.OnBoundary(pt, 1e-9) {
			return false
		}
	}
	return true
}

// Covers reports whether pt is inside the polygon or on its boundary.
func (p Polygon) Covers(pt r2.Vec, tol float64) bool {
	if p.Contains(pt) {
		return true
	}
	for _, r := range p.Rings() {
		if r.OnBoundary(pt, tol) {
			return true
		}
	}
	return false
}

// Translate shifts the polygon by d.
func (p Polygon) Translate(d r2.Vec) Polygon {
	out := Polygon{Exterior: p.Exterior.Translate(d)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, h.Translate(d))
	}
	return out
}

// Rotate rotates the polygon by alpha radians around origin.
func (p Polygon) Rotate(alpha float64, origin r2.Vec) Polygon {
	out := Polygon{Exterior: p.Exterior.Rotate(alpha, origin)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, h.Rotate(alpha, origin))
	}
	return out
}

// Normalized orients the exterior counter-clockwise and holes clockwise.
func (p Polygon) Normalized() Polygon {
	out := Polygon{Exterior: p.Exterior.Oriented(true)}
	for _, h := range p.Holes {
		out.Holes = append(out.Holes, h.Oriented(false))
	}
	return out
}

// Filled returns the polygon without its holes.
func (p Polygon) Filled() Polygon {
	return Polygon{Exterior: p.Exterior.Clone()}
}

// Length returns the segment length.
func (s Segment) Length() float64 {
	return r2.Norm(r2.Sub(s.B, s.A))
}

// Midpoint returns the centre of the segment.
func (s Segment) Midpoint() r2.Vec {
	return r2.Scale(0.5, r2.Add(s.A, s.B))
}

// Dir returns the unit direction from A to B, or the zero vector.
func (s Segment) Dir() r2.Vec {
	d := r2.Sub(s.B, s.A)
	if r2.Norm(d) < 1e-12 {
		return r2.Vec{}
	}
	return r2.Unit(d)
}

// At returns A + t*(B-A).
func (s Segment) At(t float64) r2.Vec {
	return r2.Add(s.A, r2.Scale(t, r2.Sub(s.B, s.A)))
}

// Bounds of a set of polygons. ok is false when the set has no vertices.
func Bounds(polys []Polygon) (b r2.Box, ok bool) {
	for _, p := range polys {
		if len(p.Exterior) == 0 {
			continue
		}
		pb := p.Bounds()
		if !ok {
			b, ok = pb, true
			continue
		}
		b = UnionBox(b, pb)
	}
	return b, ok
}

// UnionBox returns the box enclosing both boxes. Unlike r2.Box.Union it keeps
// zero-width boxes.
func UnionBox(a, b r2.Box) r2.Box {
	return r2.Box{
		Min: r2.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y)},
		Max: r2.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y)},
	}
}

// BoxesOverlap reports whether the two boxes share a region of positive area.
func BoxesOverlap(a, b r2.Box) bool {
	w := math.Min(a.Max.X, b.Max.X) - math.Max(a.Min.X, b.Min.X)
	h := math.Min(a.Max.Y, b.Max.Y) - math.Max(a.Min.Y, b.Min.Y)
	return w > 0 && h > 0
}

// TotalArea sums the area of the polygons.
func TotalArea(polys []Polygon) float64 {
	var a float64
	for _, p := range polys {
		a += p.Area()
	}
	return a
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Near reports whether two points are within tol of each other.
func Near(a, b r2.Vec, tol float64) bool {
	return r2.Norm(r2.Sub(a, b)) <= tol
}

// PathLength returns the length of an open polyline.
func PathLength(path []r2.Vec) float64 {
	var l float64
	for i := 1; i < len(path); i++ {
		l += r2.Norm(r2.Sub(path[i], path[i-1]))
	}
	return l
}

// Interpolate returns the point at distance d along an open polyline.
func Interpolate(path []r2.Vec, d float64) r2.Vec {
	if len(path) == 0 {
		return r2.Vec{}
	}
	if d <= 0 {
		return path[0]
	}
	for i := 1; i < len(path); i++ {
		seg := Segment{A: path[i-1], B: path[i]}
		l := seg.Length()
		if d <= l {
			if l == 0 {
				return seg.A
			}
			return seg.At(d / l)
		}
		d -= l
	}
	return path[len(path)-1]
}
