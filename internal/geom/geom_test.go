package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func square(x, y, size float64) Polygon {
	return Rect(x, y, x+size, y+size)
}

// ─── Ring Tests ─────────────────────────────────────────

func TestRing_AreaAndOrientation(t *testing.T) {
	r := square(0, 0, 10).Exterior
	assert.InDelta(t, 100.0, r.Area(), 1e-9)
	assert.Greater(t, r.Oriented(true).SignedArea(), 0.0)
	assert.Less(t, r.Oriented(false).SignedArea(), 0.0)
	assert.InDelta(t, 40.0, r.Length(), 1e-9)
}

func TestRing_ContainsExcludesBoundary(t *testing.T) {
	r := square(0, 0, 10).Exterior
	assert.True(t, r.Contains(r2.Vec{X: 5, Y: 5}))
	assert.False(t, r.Contains(r2.Vec{X: 10, Y: 5}))
	assert.False(t, r.Contains(r2.Vec{X: 11, Y: 5}))
	assert.True(t, r.OnBoundary(r2.Vec{X: 10, Y: 5}, 1e-9))
}

func TestRing_Dedupe(t *testing.T) {
	r := Ring{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0}}
	assert.Len(t, r.Dedupe(1e-9), 3)
}

func TestPolygon_ContainsRespectsHoles(t *testing.T) {
	p := square(0, 0, 10)
	p.Holes = []Ring{square(4, 4, 2).Exterior}
	assert.True(t, p.Contains(r2.Vec{X: 1, Y: 1}))
	assert.False(t, p.Contains(r2.Vec{X: 5, Y: 5}))
	assert.False(t, p.Contains(r2.Vec{X: 4, Y: 5}), "hole boundary is not inside")
	assert.InDelta(t, 96.0, p.Area(), 1e-9)
}

func TestPolygon_Rotate(t *testing.T) {
	p := Rect(0, 0, 10, 2).Rotate(Radians(90), r2.Vec{})
	b := p.Bounds()
	assert.InDelta(t, 2.0, b.Size().X, 1e-9)
	assert.InDelta(t, 10.0, b.Size().Y, 1e-9)
}

func TestInterpolate(t *testing.T) {
	path := []r2.Vec{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}
	assert.InDelta(t, 20.0, PathLength(path), 1e-9)
	p := Interpolate(path, 15)
	assert.InDelta(t, 10.0, p.X, 1e-9)
	assert.InDelta(t, 5.0, p.Y, 1e-9)
	assert.Equal(t, path[2], Interpolate(path, 50))
}

// ─── Boolean Tests ──────────────────────────────────────

func TestUnion_Overlapping(t *testing.T) {
	u := Union([]Polygon{square(0, 0, 10)}, []Polygon{square(5, 0, 10)})
	require.Len(t, u, 1)
	assert.InDelta(t, 150.0, TotalArea(u), 1e-6)
}

func TestUnion_Disjoint(t *testing.T) {
	u := UnionAll([]Polygon{square(0, 0, 10), square(20, 0, 10), square(40, 0, 5)})
	assert.Len(t, u, 3)
	assert.InDelta(t, 225.0, TotalArea(u), 1e-6)
}

func TestDifference_MakesHole(t *testing.T) {
	d := Difference([]Polygon{square(0, 0, 10)}, []Polygon{square(3, 3, 4)})
	require.Len(t, d, 1)
	assert.Len(t, d[0].Holes, 1)
	assert.InDelta(t, 84.0, d[0].Area(), 1e-6)
	assert.False(t, d[0].Contains(r2.Vec{X: 5, Y: 5}))
}

func TestIntersectionArea_TouchingIsZero(t *testing.T) {
	a := []Polygon{square(0, 0, 10)}
	assert.InDelta(t, 0.0, IntersectionArea(a, []Polygon{square(10, 0, 10)}), AreaEpsilon)
	assert.InDelta(t, 10.0, IntersectionArea(a, []Polygon{square(9, 0, 10)}), 1e-6)
}

func TestLargestPiece(t *testing.T) {
	p, ok := LargestPiece([]Polygon{square(0, 0, 1), square(5, 5, 3)})
	require.True(t, ok)
	assert.InDelta(t, 9.0, p.Area(), 1e-9)
	_, ok = LargestPiece(nil)
	assert.False(t, ok)
}

// ─── Distance Tests ─────────────────────────────────────

func TestDistance(t *testing.T) {
	a := []Polygon{square(0, 0, 10)}
	assert.InDelta(t, 5.0, Distance(a, []Polygon{square(15, 0, 10)}), 1e-9)
	assert.InDelta(t, 0.0, Distance(a, []Polygon{square(10, 0, 10)}), 1e-9)
	assert.InDelta(t, 0.0, Distance(a, []Polygon{square(2, 2, 2)}), 1e-9, "contained")
	assert.InDelta(t, math.Sqrt(2), Distance(a, []Polygon{square(11, 11, 1)}), 1e-9)
}

func TestCollinearOverlap(t *testing.T) {
	s1 := Segment{A: r2.Vec{X: 0, Y: 0}, B: r2.Vec{X: 10, Y: 0}}
	assert.InDelta(t, 5.0, CollinearOverlap(s1, Segment{A: r2.Vec{X: 5, Y: 0}, B: r2.Vec{X: 20, Y: 0}}, 1e-9), 1e-9)
	assert.InDelta(t, 0.0, CollinearOverlap(s1, Segment{A: r2.Vec{X: 5, Y: 1}, B: r2.Vec{X: 20, Y: 1}}, 1e-9), 1e-9)
	assert.InDelta(t, 0.0, CollinearOverlap(s1, Segment{A: r2.Vec{X: 10, Y: 0}, B: r2.Vec{X: 20, Y: 0}}, 1e-9), 1e-9)
}

func TestOverlapLength(t *testing.T) {
	s := Segment{A: r2.Vec{X: -5, Y: 5}, B: r2.Vec{X: 15, Y: 5}}
	assert.InDelta(t, 10.0, OverlapLength(s, square(0, 0, 10), 1e-9), 1e-9)
}

// ─── Ray Tests ──────────────────────────────────────────

func TestRayRing_NearestHit(t *testing.T) {
	r := square(0, 0, 10).Exterior
	h, ok := RayRing(r2.Vec{X: 5, Y: -5}, r2.Vec{X: 0, Y: 1}, r, MaxExtent)
	require.True(t, ok)
	assert.InDelta(t, 5.0, h.T, 1e-9)
	assert.InDelta(t, 0.0, h.Point.Y, 1e-9)

	_, ok = RayRing(r2.Vec{X: 5, Y: -5}, r2.Vec{X: 0, Y: -1}, r, MaxExtent)
	assert.False(t, ok)

	_, ok = RayRing(r2.Vec{X: 5, Y: -5}, r2.Vec{X: 0, Y: 1}, r, 2)
	assert.False(t, ok, "beyond max distance")
}

func TestBiteBoundary_FollowsRingOrder(t *testing.T) {
	r := square(0, 0, 10).Exterior
	a, ok := RayRing(r2.Vec{X: 4, Y: -1}, r2.Vec{X: 0, Y: 1}, r, MaxExtent)
	require.True(t, ok)
	b, ok := RayRing(r2.Vec{X: 6, Y: -1}, r2.Vec{X: 0, Y: 1}, r, MaxExtent)
	require.True(t, ok)

	path := BiteBoundary(r, a, b)
	require.Len(t, path, 2)
	assert.InDelta(t, 2.0, PathLength(path), 1e-9)

	// Against the ring order the walk goes all the way round.
	path = BiteBoundary(r, b, a)
	require.Len(t, path, 6)
	assert.InDelta(t, 38.0, PathLength(path), 1e-9)
	assert.Equal(t, r2.Vec{X: 10, Y: 0}, path[1])
	assert.Equal(t, r2.Vec{X: 0, Y: 0}, path[4])
}

func TestBiteBoundary_ClockwiseHole(t *testing.T) {
	hole := square(0, 0, 10).Exterior.Oriented(false)
	a, ok := RayRing(r2.Vec{X: 5, Y: 4}, r2.Vec{X: 1, Y: 0}, hole, MaxExtent)
	require.True(t, ok)
	b, ok := RayRing(r2.Vec{X: 5, Y: 6}, r2.Vec{X: 1, Y: 0}, hole, MaxExtent)
	require.True(t, ok)

	// The right wall of a clockwise hole runs downwards, so b to a is
	// the short way.
	path := BiteBoundary(hole, b, a)
	require.Len(t, path, 2)
	assert.InDelta(t, 2.0, PathLength(path), 1e-9)
	assert.InDelta(t, 38.0, PathLength(BiteBoundary(hole, a, b)), 1e-9)
}

func TestBiteBoundary_AcrossCorner(t *testing.T) {
	r := square(0, 0, 10).Exterior
	a, ok := RayRing(r2.Vec{X: 9, Y: -1}, r2.Vec{X: 0, Y: 1}, r, MaxExtent)
	require.True(t, ok)
	b, ok := RayRing(r2.Vec{X: 11, Y: 1}, r2.Vec{X: -1, Y: 0}, r, MaxExtent)
	require.True(t, ok)

	path := BiteBoundary(r, a, b)
	require.Len(t, path, 3)
	assert.InDelta(t, 2.0, PathLength(path), 1e-9)
	assert.InDelta(t, 10.0, path[1].X, 1e-9)
	assert.InDelta(t, 0.0, path[1].Y, 1e-9)
}

// ─── Buffer Tests ───────────────────────────────────────

func TestMitreBuffer_SquareKeepsCorners(t *testing.T) {
	out := MitreBuffer(square(0, 0, 10), 1)
	require.Len(t, out, 1)
	assert.InDelta(t, 144.0, out[0].Area(), 1e-6)
	b := out[0].Bounds()
	assert.InDelta(t, -1.0, b.Min.X, 1e-9)
	assert.InDelta(t, 11.0, b.Max.Y, 1e-9)
}

func TestMitreBuffer_ZeroDistance(t *testing.T) {
	out := MitreBuffer(square(0, 0, 10), 0)
	require.Len(t, out, 1)
	assert.InDelta(t, 100.0, out[0].Area(), 1e-9)
}

// ─── Fillet Tests ───────────────────────────────────────

func TestFilletConcave_FillsInsideCorner(t *testing.T) {
	// L-shape with one reflex corner at (5,5).
	l := Polygon{Exterior: Ring{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5}, {X: 5, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 10},
	}}
	out := FilletConcave([]Polygon{l}, 1)
	require.Len(t, out, 1)
	added := out[0].Area() - l.Area()
	want := 1 - math.Pi/4
	assert.InDelta(t, want, added, 0.02)
}

func TestFilletConcave_ConvexUnchanged(t *testing.T) {
	out := FilletConcave([]Polygon{square(0, 0, 10)}, 1)
	require.Len(t, out, 1)
	assert.InDelta(t, 100.0, out[0].Area(), 1e-9)
}
