package engine

import (
	"fmt"

	"github.com/piwi3910/PanelCut/internal/buildexpr"
	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Panelizer builds a panel from placed boards and holes.
type Panelizer struct {
	Settings model.PanelSettings
}

func New(settings model.PanelSettings) *Panelizer {
	return &Panelizer{Settings: settings}
}

// BuildOptions selects how a panel is built.
type BuildOptions struct {
	// Export builds the panel for output: mill fillets are only applied when
	// the settings ask for them on export.
	Export bool
}

// layout is the panel material before tabs are added.
type layout struct {
	rails     []geom.Polygon
	holes     []geom.Polygon
	substrate []geom.Polygon
	shapes    [][]geom.Polygon // Per board
}

// lay places rails, boards and, for a tight frame, the frame body.
func (p *Panelizer) lay(boards []model.Board, holes []model.Hole) layout {
	l := layout{
		rails: Rails(p.Settings),
		holes: model.HolePolygons(holes),
	}
	pieces := append([]geom.Polygon(nil), l.rails...)
	for _, b := range boards {
		shapes := b.Shapes()
		l.shapes = append(l.shapes, shapes)
		pieces = append(pieces, shapes...)
	}
	if f := p.Settings.Frame; f.Enabled && f.Tight {
		if body, ok := tightBody(boards, p.Settings, l.holes); ok {
			pieces = append(pieces, body)
		}
	}
	l.substrate = geom.UnionAll(pieces)
	for i := range l.substrate {
		l.substrate[i] = l.substrate[i].Normalized()
	}
	return l
}

// Build runs one full build pass. An invalid rename pattern blocks the build
// and returns an error wrapping model.ErrInvalidPattern. Without boards the
// result is empty. Everything else (missed tabs, conflicts) degrades into a
// partial result.
func (p *Panelizer) Build(boards []model.Board, holes []model.Hole, opts BuildOptions) (model.BuildResult, error) {
	if err := p.Settings.Validate(); err != nil {
		return model.BuildResult{}, fmt.Errorf("build: %w", err)
	}
	if len(boards) == 0 {
		return model.BuildResult{}, nil
	}
	s := p.Settings
	spacing := s.ClampedSpacing()
	l := p.lay(boards, holes)

	syn := &synthesis{
		substrate: l.substrate,
		boards:    l.shapes,
		maxDepth:  s.TabMaxDepth,
	}
	p.manualTabs(syn, boards)
	p.autoTabs(syn, boards, l.holes)
	if spacing == 0 {
		syn.cuts = append(syn.cuts, seamCuts(boards, s, l.holes)...)
	}

	substrate := geom.UnionAll(append(append([]geom.Polygon(nil), l.substrate...), syn.tabs...))

	var res model.BuildResult
	res.Conflicts, res.Errors = DetectConflicts(boards, s)

	if s.MillFillets > 0 && (!opts.Export || s.ExportMillFillets) {
		substrate = geom.FilletConcave(substrate, s.MillFillets)
		res.MillFillets = s.MillFillets
	}
	res.Substrate = model.ShapesFromPolygons(substrate)
	res.Tabs = model.ShapesFromPolygons(syn.tabs)

	cuts := lo.Map(syn.cuts, func(c []r2.Vec, _ int) model.Cut { return model.NewCut(c) })
	sortCuts(cuts)
	boxes := lo.FilterMap(boards, func(b model.Board, _ int) (r2.Box, bool) { return b.BoundingBox() })
	res.Cuts = Classify(cuts, boxes, s.CutMethod)

	var scores []model.Cut
	for _, c := range res.Cuts {
		if c.Perforate {
			for _, pt := range Perforate(c.Vecs(), s.MouseBiteSpacing-geom.Epsilon, s.MouseBiteOffset) {
				res.Perforations = append(res.Perforations, model.PointFromVec(pt))
			}
		}
		if c.Score {
			scores = append(scores, normalizeCut(c))
		}
	}
	if bounds, ok := geom.Bounds(substrate); ok && s.MergeVCuts {
		scores = MergeVCuts(scores, s.MergeVCutsThreshold, bounds)
	}
	res.VCuts = scores
	res.Boards = p.reports(boards)
	return res, nil
}

// manualTabs bridges every stored tab of every board.
func (p *Panelizer) manualTabs(syn *synthesis, boards []model.Board) {
	for i, b := range boards {
		shapes := syn.boards[i]
		for _, arrow := range b.GlobalTabs() {
			outward, ok := tabOutward(shapes, arrow)
			if !ok {
				continue
			}
			syn.bridge(shapes, arrow.Touch, outward, arrow.Width)
		}
	}
}

// tabOutward decides which way a manual tab leaves the board material. An
// anchor outside points away from its touch point, an anchor inside points
// through it. An anchor on the outline uses the tab direction, or the edge
// normal for closest tabs, turned so it leaves the material.
func tabOutward(shapes []geom.Polygon, arrow model.TabArrow) (r2.Vec, bool) {
	inside := func(v r2.Vec) bool {
		return lo.SomeBy(shapes, func(s geom.Polygon) bool { return s.Contains(v) })
	}
	if d := r2.Sub(arrow.Touch, arrow.Anchor); r2.Norm(d) > geom.Epsilon {
		if inside(arrow.Anchor) {
			return d, true
		}
		return r2.Scale(-1, d), true
	}
	dir := arrow.Dir
	if dir == (r2.Vec{}) {
		dir = edgeNormal(shapes, arrow.Touch)
		if dir == (r2.Vec{}) {
			return r2.Vec{}, false
		}
	}
	if inside(r2.Add(arrow.Touch, r2.Scale(geom.Epsilon, dir))) {
		dir = r2.Scale(-1, dir)
	}
	return dir, true
}

// edgeNormal returns a unit normal of the outline edge nearest p.
func edgeNormal(shapes []geom.Polygon, p r2.Vec) r2.Vec {
	var best geom.Segment
	bestDist := -1.0
	for _, s := range shapes {
		for _, r := range s.Rings() {
			_, idx, d := geom.ClosestOnRing(p, r)
			if idx >= 0 && (bestDist < 0 || d < bestDist) {
				best, bestDist = r.Edges()[idx], d
			}
		}
	}
	if bestDist < 0 {
		return r2.Vec{}
	}
	return perpendicular(best.Dir())
}

// autoTabs bridges the accepted automatic candidates.
func (p *Panelizer) autoTabs(syn *synthesis, boards []model.Board, holes []geom.Polygon) {
	s := p.Settings
	cands := filterCandidates(autoCandidates(boards, s), holes)
	accepted := selectNonOverlapping(cands, tabConflicts(s.ClampedSpacing(), s.MouseBiteDiameter, s.MaxTabSpacing))
	for _, c := range accepted {
		syn.bridge(syn.boards[c.Board], c.Point, r2.Scale(-1, c.Inward), s.TabWidth)
	}
}

// reports names every board and lists the references its build flags leave
// unpopulated. References are renamed when the panel holds several boards.
func (p *Panelizer) reports(boards []model.Board) []model.BoardReport {
	multiple := len(boards) > 1
	name := func(n int, orig string) string {
		if !multiple {
			return orig
		}
		return model.Rename(p.Settings.RefRenamePattern, n, orig)
	}
	out := make([]model.BoardReport, 0, len(boards))
	for i, b := range boards {
		n := i + 1
		r := model.BoardReport{Index: n, ID: b.ID, Ident: b.Ident, Name: name(n, b.Ident)}
		flags := b.BuildFlags()
		for _, a := range b.Annotations {
			e, err := buildexpr.Parse(a.BuildExpr)
			if err != nil || e.Eval(flags) {
				continue
			}
			r.DNP = append(r.DNP, name(n, a.Ref))
		}
		out = append(out, r)
	}
	return out
}

// GenerateHoles builds the panel and returns the material that is neither
// board nor rail (the body of a tight frame, for instance) as new holes.
func (p *Panelizer) GenerateHoles(boards []model.Board, holes []model.Hole) ([]model.Hole, error) {
	if err := p.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("generate holes: %w", err)
	}
	if len(boards) == 0 {
		return nil, nil
	}
	l := p.lay(boards, holes)
	return gapFillers(l.substrate, boards, p.Settings), nil
}

// BuildProject builds the project's panel with its own settings.
func BuildProject(proj *model.Project, opts BuildOptions) (model.BuildResult, error) {
	return New(proj.Settings).Build(proj.Boards, proj.Holes, opts)
}

// GenerateProjectHoles appends the gap-filler holes to the project and
// builds it again.
func GenerateProjectHoles(proj *model.Project) (model.BuildResult, error) {
	holes, err := New(proj.Settings).GenerateHoles(proj.Boards, proj.Holes)
	if err != nil {
		return model.BuildResult{}, err
	}
	proj.Holes = append(proj.Holes, holes...)
	return BuildProject(proj, BuildOptions{})
}
