package geom

import (
	"sort"

	polyclip "github.com/ctessum/polyclip-go"
	"gonum.org/v1/gonum/spatial/r2"
)

// Union returns the union of two polygon sets.
func Union(a, b []Polygon) []Polygon {
	return construct(a, b, polyclip.UNION)
}

// Intersection returns the region covered by both polygon sets.
func Intersection(a, b []Polygon) []Polygon {
	return construct(a, b, polyclip.INTERSECTION)
}

// Difference returns the region of a not covered by b.
func Difference(a, b []Polygon) []Polygon {
	return construct(a, b, polyclip.DIFFERENCE)
}

// UnionAll merges every polygon into a set of disjoint polygons. Pieces are
// merged pairwise so each boolean step works on similarly sized inputs.
func UnionAll(polys []Polygon) []Polygon {
	sets := make([][]Polygon, 0, len(polys))
	for _, p := range polys {
		if len(p.Exterior) >= 3 && p.Area() > AreaEpsilon {
			sets = append(sets, []Polygon{p})
		}
	}
	if len(sets) == 0 {
		return nil
	}
	if len(sets) == 1 {
		return construct(sets[0], nil, polyclip.UNION)
	}
	for len(sets) > 1 {
		next := make([][]Polygon, 0, (len(sets)+1)/2)
		for i := 0; i < len(sets); i += 2 {
			if i+1 == len(sets) {
				next = append(next, sets[i])
				continue
			}
			next = append(next, Union(sets[i], sets[i+1]))
		}
		sets = next
	}
	return sets[0]
}

// IntersectionArea returns the area shared by a and b.
func IntersectionArea(a, b []Polygon) float64 {
	ba, okA := Bounds(a)
	bb, okB := Bounds(b)
	if !okA || !okB || !BoxesOverlap(ba, bb) {
		return 0
	}
	return TotalArea(Intersection(a, b))
}

// LargestPiece returns the polygon with the greatest area.
func LargestPiece(polys []Polygon) (Polygon, bool) {
	if len(polys) == 0 {
		return Polygon{}, false
	}
	best := 0
	for i := range polys {
		if polys[i].Area() > polys[best].Area() {
			best = i
		}
	}
	return polys[best], true
}

func construct(a, b []Polygon, op polyclip.Op) []Polygon {
	subject := toClip(a)
	clipping := toClip(b)
	switch {
	case len(subject) == 0 && len(clipping) == 0:
		return nil
	case len(subject) == 0:
		if op == polyclip.UNION {
			return fromClip(clipping)
		}
		return nil
	case len(clipping) == 0:
		if op == polyclip.INTERSECTION {
			return nil
		}
		return fromClip(subject)
	}
	return fromClip(subject.Construct(op, clipping))
}

func toClip(polys []Polygon) polyclip.Polygon {
	var out polyclip.Polygon
	for _, p := range polys {
		for _, ring := range p.Rings() {
			ring = ring.Dedupe(1e-9)
			if len(ring) < 3 || ring.Area() <= 0 {
				continue
			}
			c := make(polyclip.Contour, len(ring))
			for i, v := range ring {
				c[i] = polyclip.Point{X: v.X, Y: v.Y}
			}
			out = append(out, c)
		}
	}
	return out
}

// fromClip rebuilds polygons with holes from the flat contour list that
// polyclip produces. A contour nested inside an even number of others is an
// exterior; an odd nesting depth makes it a hole of the smallest enclosing
// exterior.
func fromClip(pc polyclip.Polygon) []Polygon {
	var rings []Ring
	for _, c := range pc {
		r := make(Ring, len(c))
		for i, p := range c {
			r[i] = r2.Vec{X: p.X, Y: p.Y}
		}
		r = r.Dedupe(1e-9)
		if len(r) < 3 || r.Area() <= AreaEpsilon {
			continue
		}
		rings = append(rings, r)
	}
	return assemble(rings)
}

func assemble(rings []Ring) []Polygon {
	sort.SliceStable(rings, func(i, j int) bool {
		return rings[i].Area() > rings[j].Area()
	})
	depth := make([]int, len(rings))
	parent := make([]int, len(rings))
	for i := range rings {
		parent[i] = -1
		for j := 0; j < i; j++ {
			if ringInside(rings[i], rings[j]) {
				depth[i]++
				parent[i] = j
			}
		}
	}

	var polys []Polygon
	index := make(map[int]int)
	for i, r := range rings {
		if depth[i]%2 == 0 {
			index[i] = len(polys)
			polys = append(polys, Polygon{Exterior: r.Oriented(true)})
		}
	}
	for i, r := range rings {
		if depth[i]%2 == 1 && parent[i] >= 0 {
			if k, ok := index[parent[i]]; ok {
				polys[k].Holes = append(polys[k].Holes, r.Oriented(false))
			}
		}
	}
	return polys
}

// ringInside reports whether inner lies inside outer. Boolean results never
// cross, so any vertex off the outer boundary decides.
func ringInside(inner, outer Ring) bool {
	if inner.Area() > outer.Area() {
		return false
	}
	for _, p := range inner {
		if outer.OnBoundary(p, 1e-9) {
			continue
		}
		return outer.Contains(p)
	}
	return outer.Contains(Segment{A: inner[0], B: inner[1]}.Midpoint())
}
