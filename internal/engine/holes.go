package engine

import (
	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
)

// gapFillers returns the substrate that is neither board nor rail material,
// such as the body of a tight frame, as new holes. Adding them and building
// again clears that material from the panel.
func gapFillers(substrate []geom.Polygon, boards []model.Board, s model.PanelSettings) []model.Hole {
	loose := Rails(s)
	for _, b := range boards {
		loose = append(loose, b.Shapes()...)
	}
	diffs := geom.Difference(substrate, geom.UnionAll(loose))
	var holes []model.Hole
	for _, d := range diffs {
		if d.Area() <= geom.AreaEpsilon {
			continue
		}
		h := model.NewHole(model.OutlineFromRing(d.Exterior).Translate(-s.FrameOffX, -s.FrameOffY))
		h.OffX, h.OffY = s.FrameOffX, s.FrameOffY
		holes = append(holes, h)
	}
	return holes
}
