package engine

import (
	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
)

// DetectConflicts finds boards outside the frame and boards overlapping each
// other or the rails. The frame check only applies to an enabled frame that
// is not tight. Conflicts are advisory: they are returned with their error
// messages and never block a build.
func DetectConflicts(boards []model.Board, s model.PanelSettings) ([]model.Conflict, []string) {
	var conflicts []model.Conflict
	var errs []string

	shapes := make([][]geom.Polygon, 0, len(boards)+1)
	var all []geom.Polygon
	for _, b := range boards {
		u := geom.UnionAll(b.Shapes())
		if len(u) == 0 {
			continue
		}
		shapes = append(shapes, u)
		all = append(all, u...)
	}

	if s.Frame.Enabled && !s.Frame.Tight && len(all) > 0 {
		outside := geom.Difference(all, []geom.Polygon{FrameRect(s)})
		if geom.TotalArea(outside) > geom.AreaEpsilon {
			conflicts = append(conflicts, model.Conflict{
				Kind:    model.ConflictOutOfFrame,
				Message: model.MsgOutOfFrame,
				Region:  model.ShapesFromPolygons(outside),
			})
			errs = append(errs, model.MsgOutOfFrame)
		}
	}

	if rails := geom.UnionAll(Rails(s)); len(rails) > 0 {
		shapes = append(shapes, rails)
	}
	overlapped := false
	for i, a := range shapes {
		for _, b := range shapes[i+1:] {
			if !Overlaps(a, b) {
				continue
			}
			conflicts = append(conflicts, model.Conflict{
				Kind:    model.ConflictOverlap,
				Message: model.MsgOverlap,
				Region:  model.ShapesFromPolygons(geom.Intersection(a, b)),
			})
			overlapped = true
		}
	}
	if overlapped {
		errs = append(errs, model.MsgOverlap)
	}
	return conflicts, errs
}
