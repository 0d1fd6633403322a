package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ClosestOnSegment returns the point of s nearest to p.
func ClosestOnSegment(p r2.Vec, s Segment) r2.Vec {
	d := r2.Sub(s.B, s.A)
	l2 := r2.Dot(d, d)
	if l2 == 0 {
		return s.A
	}
	t := r2.Dot(r2.Sub(p, s.A), d) / l2
	t = math.Max(0, math.Min(1, t))
	return s.At(t)
}

// PointSegmentDistance returns the distance from p to s.
func PointSegmentDistance(p r2.Vec, s Segment) float64 {
	return r2.Norm(r2.Sub(p, ClosestOnSegment(p, s)))
}

// SegmentsIntersect reports whether two segments touch or cross.
func SegmentsIntersect(s1, s2 Segment) bool {
	d1 := orient(s2.A, s2.B, s1.A)
	d2 := orient(s2.A, s2.B, s1.B)
	d3 := orient(s1.A, s1.B, s2.A)
	d4 := orient(s1.A, s1.B, s2.B)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	const tol = 1e-12
	return (math.Abs(d1) <= tol && onSegment(s2, s1.A)) ||
		(math.Abs(d2) <= tol && onSegment(s2, s1.B)) ||
		(math.Abs(d3) <= tol && onSegment(s1, s2.A)) ||
		(math.Abs(d4) <= tol && onSegment(s1, s2.B))
}

// SegmentDistance returns the minimum distance between two segments.
func SegmentDistance(s1, s2 Segment) float64 {
	if SegmentsIntersect(s1, s2) {
		return 0
	}
	return math.Min(
		math.Min(PointSegmentDistance(s1.A, s2), PointSegmentDistance(s1.B, s2)),
		math.Min(PointSegmentDistance(s2.A, s1), PointSegmentDistance(s2.B, s1)),
	)
}

// Distance returns the minimum Euclidean distance between two polygon sets;
// zero when they touch, overlap or one contains the other.
func Distance(a, b []Polygon) float64 {
	if len(a) == 0 || len(b) == 0 {
		return math.Inf(1)
	}
	for _, pa := range a {
		for _, pb := range b {
			if len(pb.Exterior) > 0 && pa.Covers(pb.Exterior[0], 0) {
				return 0
			}
			if len(pa.Exterior) > 0 && pb.Covers(pa.Exterior[0], 0) {
				return 0
			}
		}
	}
	best := math.Inf(1)
	for _, pa := range a {
		for _, ra := range pa.Rings() {
			for _, ea := range ra.Edges() {
				for _, pb := range b {
					for _, rb := range pb.Rings() {
						for _, eb := range rb.Edges() {
							if d := SegmentDistance(ea, eb); d < best {
								best = d
								if best == 0 {
									return 0
								}
							}
						}
					}
				}
			}
		}
	}
	return best
}

// PathDistance returns the distance between a polygon set and an open
// polyline.
func PathDistance(polys []Polygon, path []r2.Vec) float64 {
	best := math.Inf(1)
	if len(path) == 0 {
		return best
	}
	for _, p := range polys {
		if p.Covers(path[0], 0) {
			return 0
		}
	}
	for i := 1; i < len(path); i++ {
		s := Segment{A: path[i-1], B: path[i]}
		for _, p := range polys {
			for _, r := range p.Rings() {
				for _, e := range r.Edges() {
					best = math.Min(best, SegmentDistance(s, e))
				}
			}
		}
	}
	if len(path) == 1 {
		for _, p := range polys {
			for _, r := range p.Rings() {
				for _, e := range r.Edges() {
					best = math.Min(best, PointSegmentDistance(path[0], e))
				}
			}
		}
	}
	return best
}

// ClosestOnRing returns the point of the ring nearest to p, the index of the
// edge it lies on and its distance.
func ClosestOnRing(p r2.Vec, r Ring) (r2.Vec, int, float64) {
	best, bestEdge, bestDist := r2.Vec{}, -1, math.Inf(1)
	for i, e := range r.Edges() {
		q := ClosestOnSegment(p, e)
		if d := r2.Norm(r2.Sub(p, q)); d < bestDist {
			best, bestEdge, bestDist = q, i, d
		}
	}
	return best, bestEdge, bestDist
}

// CollinearOverlap returns the length over which two segments lie on top of
// each other; zero unless they are collinear within tol.
func CollinearOverlap(s1, s2 Segment, tol float64) float64 {
	d := s1.Dir()
	if d == (r2.Vec{}) {
		return 0
	}
	if math.Abs(r2.Cross(d, r2.Sub(s2.A, s1.A))) > tol ||
		math.Abs(r2.Cross(d, r2.Sub(s2.B, s1.A))) > tol {
		return 0
	}
	a0, a1 := 0.0, s1.Length()
	b0 := r2.Dot(r2.Sub(s2.A, s1.A), d)
	b1 := r2.Dot(r2.Sub(s2.B, s1.A), d)
	if b0 > b1 {
		b0, b1 = b1, b0
	}
	return math.Max(0, math.Min(a1, b1)-math.Max(a0, b0))
}

// OverlapLength returns the length of s that lies inside or on the boundary
// of p.
func OverlapLength(s Segment, p Polygon, tol float64) float64 {
	ts := []float64{0, 1}
	for _, r := range p.Rings() {
		for _, e := range r.Edges() {
			if t, ok := segmentParam(s, e); ok {
				ts = append(ts, t)
			}
			ts = append(ts, projectParam(s, e.A), projectParam(s, e.B))
		}
	}
	ts = clampSorted(ts)
	var total float64
	for i := 1; i < len(ts); i++ {
		mid := s.At((ts[i-1] + ts[i]) / 2)
		if p.Covers(mid, tol) {
			total += (ts[i] - ts[i-1]) * s.Length()
		}
	}
	return total
}

// RingCoversSegment reports whether s lies along the boundary of r.
func RingCoversSegment(r Ring, s Segment, tol float64) bool {
	for _, t := range []float64{0, 0.25, 0.5, 0.75, 1} {
		if !r.OnBoundary(s.At(t), tol) {
			return false
		}
	}
	return true
}

func orient(a, b, c r2.Vec) float64 {
	return r2.Cross(r2.Sub(b, a), r2.Sub(c, a))
}

func onSegment(s Segment, p r2.Vec) bool {
	return p.X >= math.Min(s.A.X, s.B.X)-1e-12 && p.X <= math.Max(s.A.X, s.B.X)+1e-12 &&
		p.Y >= math.Min(s.A.Y, s.B.Y)-1e-12 && p.Y <= math.Max(s.A.Y, s.B.Y)+1e-12
}

// segmentParam returns the parameter along s where e crosses it.
func segmentParam(s, e Segment) (float64, bool) {
	d := r2.Sub(s.B, s.A)
	f := r2.Sub(e.B, e.A)
	den := r2.Cross(d, f)
	if math.Abs(den) < 1e-12 {
		return 0, false
	}
	w := r2.Sub(e.A, s.A)
	t := r2.Cross(w, f) / den
	u := r2.Cross(w, d) / den
	if u < 0 || u > 1 || t < 0 || t > 1 {
		return 0, false
	}
	return t, true
}

func projectParam(s Segment, p r2.Vec) float64 {
	d := r2.Sub(s.B, s.A)
	l2 := r2.Dot(d, d)
	if l2 == 0 {
		return 0
	}
	return r2.Dot(r2.Sub(p, s.A), d) / l2
}

func clampSorted(ts []float64) []float64 {
	out := make([]float64, 0, len(ts))
	for _, t := range ts {
		if t >= 0 && t <= 1 {
			out = append(out, t)
		}
	}
	sortFloats(out)
	uniq := out[:0]
	for _, t := range out {
		if len(uniq) == 0 || t-uniq[len(uniq)-1] > 1e-12 {
			uniq = append(uniq, t)
		}
	}
	return uniq
}
