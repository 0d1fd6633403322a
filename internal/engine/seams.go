package engine

import (
	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// seamCuts returns the cuts of a panel without spacing, where boards butt
// against each other and the frame. In a tight frame every board edge is a
// seam except those lying on a hole. Otherwise an edge is a seam where it
// runs along a rail or along an edge of a board placed before it.
func seamCuts(boards []model.Board, s model.PanelSettings, holes []geom.Polygon) [][]r2.Vec {
	var cuts [][]r2.Vec
	if s.Frame.Enabled && s.Frame.Tight {
		for _, b := range boards {
			for _, shape := range b.Shapes() {
				for _, e := range shape.Exterior.Edges() {
					if e.Length() == 0 {
						continue
					}
					onHole := false
					for _, h := range holes {
						if geom.RingCoversSegment(h.Exterior, e, geom.Epsilon) {
							onHole = true
							break
						}
					}
					if !onHole {
						cuts = append(cuts, []r2.Vec{e.A, e.B})
					}
				}
			}
		}
		return cuts
	}

	rails := Rails(s)
	var seen []geom.Segment
	for _, b := range boards {
		for _, shape := range b.Shapes() {
			for _, e := range shape.Exterior.Edges() {
				if e.Length() == 0 {
					continue
				}
				adjacent := false
				for _, r := range rails {
					if geom.OverlapLength(e, r, geom.Epsilon) > geom.Epsilon {
						adjacent = true
						break
					}
				}
				if !adjacent {
					for _, prev := range seen {
						if geom.CollinearOverlap(e, prev, geom.Epsilon) > geom.Epsilon {
							adjacent = true
							break
						}
					}
				}
				seen = append(seen, e)
				if adjacent {
					cuts = append(cuts, []r2.Vec{e.A, e.B})
				}
			}
		}
	}
	return cuts
}
