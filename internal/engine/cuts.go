package engine

import (
	"math"
	"sort"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"
)

// sortCuts orders cuts by their bounds (min x, min y, max x, max y) so the
// classification and merge see them in a stable order.
func sortCuts(cuts []model.Cut) {
	bounds := func(c model.Cut) [4]float64 {
		b := geom.Ring(c.Vecs()).Bounds()
		return [4]float64{b.Min.X, b.Min.Y, b.Max.X, b.Max.Y}
	}
	sort.SliceStable(cuts, func(i, j int) bool {
		a, b := bounds(cuts[i]), bounds(cuts[j])
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
}

// scoreSafe reports whether an axis-aligned cut can be scored: its line must
// not run through the inside of any board's bounding box.
func scoreSafe(c model.Cut, boxes []r2.Box) bool {
	p, _ := c.Ends()
	for _, b := range boxes {
		switch c.Axis() {
		case model.AxisVertical:
			if b.Min.X+geom.Epsilon < p.X && p.X < b.Max.X-geom.Epsilon {
				return false
			}
		case model.AxisHorizontal:
			if b.Min.Y+geom.Epsilon < p.Y && p.Y < b.Max.Y-geom.Epsilon {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Classify assigns score and perforation treatment to every cut according to
// the cut method. Cuts that get neither are dropped.
func Classify(cuts []model.Cut, boxes []r2.Box, method model.CutMethod) []model.Cut {
	out := make([]model.Cut, 0, len(cuts))
	for _, c := range cuts {
		switch method {
		case model.CutMouseBites:
			c.Score, c.Perforate = false, true
		case model.CutVCutUnsafe:
			c.Score, c.Perforate = true, false
		default:
			if c.Axis() == model.AxisDiagonal {
				// Score lines are axis-only.
				c.Score, c.Perforate = false, method != model.CutVCutOrSkip
				break
			}
			safe := scoreSafe(c, boxes)
			c.Score = safe
			c.Perforate = (!safe || method == model.CutVCutAndMB) && method != model.CutVCutOrSkip
		}
		if c.Score || c.Perforate {
			out = append(out, c)
		}
	}
	return out
}

// Perforate places mouse-bite holes along a line shifted sideways by offset
// (positive to the left of the direction of travel). The holes are spread
// evenly so the first and last sit on the line ends; a line shorter than the
// spacing gets one hole at its middle.
func Perforate(line []r2.Vec, spacing, offset float64) []r2.Vec {
	if len(line) < 2 || spacing <= 0 {
		return nil
	}
	path := offsetPath(line, offset)
	length := geom.PathLength(path)
	count := int(length/spacing) + 1
	if count == 1 {
		return []r2.Vec{geom.Interpolate(path, length/2)}
	}
	step := length / float64(count-1)
	return lo.Times(count, func(i int) r2.Vec {
		return geom.Interpolate(path, float64(i)*step)
	})
}

// offsetPath shifts every vertex along the left normal of its segment.
func offsetPath(path []r2.Vec, offset float64) []r2.Vec {
	if offset == 0 {
		return path
	}
	out := make([]r2.Vec, len(path))
	for i := range path {
		j := i
		if j == len(path)-1 {
			j--
		}
		d := geom.Segment{A: path[j], B: path[j+1]}.Dir()
		out[i] = r2.Add(path[i], r2.Scale(offset, r2.Vec{X: -d.Y, Y: d.X}))
	}
	return out
}

// normalizeCut orients a cut so it runs towards increasing y, then towards
// increasing x.
func normalizeCut(c model.Cut) model.Cut {
	a, b := c.Ends()
	if a.Y > b.Y {
		c.Path = lo.Reverse(append(model.Outline(nil), c.Path...))
		a, b = b, a
	}
	if a.X > b.X {
		c.Path = lo.Reverse(append(model.Outline(nil), c.Path...))
	}
	return c
}

// groupCoordinates clusters values by single linkage: a value joins the
// first group holding a member within threshold. It returns each group's
// mean in order of creation.
func groupCoordinates(values []float64, threshold float64) []float64 {
	var groups [][]float64
	for _, v := range values {
		joined := false
		for gi, g := range groups {
			if lo.SomeBy(g, func(m float64) bool { return math.Abs(v-m) <= threshold+geom.Epsilon }) {
				if !lo.Contains(g, v) {
					groups[gi] = append(g, v)
				}
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, []float64{v})
		}
	}
	return lo.Map(groups, func(g []float64, _ int) float64 { return stat.Mean(g, nil) })
}

// MergeVCuts replaces the score cuts with one full-span cut per cluster of
// nearly equal coordinates. Horizontal cuts span bounds in x and come first,
// vertical cuts span it in y.
func MergeVCuts(cuts []model.Cut, threshold float64, bounds r2.Box) []model.Cut {
	var hs, vs []float64
	for _, c := range cuts {
		a, _ := c.Ends()
		switch c.Axis() {
		case model.AxisHorizontal:
			hs = append(hs, a.Y)
		case model.AxisVertical:
			vs = append(vs, a.X)
		}
	}
	var out []model.Cut
	for _, y := range groupCoordinates(hs, threshold) {
		c := model.NewCut([]r2.Vec{{X: bounds.Min.X, Y: y}, {X: bounds.Max.X, Y: y}})
		c.Score = true
		out = append(out, c)
	}
	for _, x := range groupCoordinates(vs, threshold) {
		c := model.NewCut([]r2.Vec{{X: x, Y: bounds.Min.Y}, {X: x, Y: bounds.Max.Y}})
		c.Score = true
		out = append(out, c)
	}
	return out
}
