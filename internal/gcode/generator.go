package gcode

import (
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/PanelCut/internal/geom"
	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Generator produces GCode that drills the perforations of a built panel
// and routes its outline and slots. Machine coordinates mirror the panel's
// y axis, so Y grows upwards from the panel origin.
type Generator struct {
	Machine       model.MachineSettings
	DrillDiameter float64
	profile       model.GCodeProfile
}

func New(settings model.PanelSettings) *Generator {
	drill := settings.Machine.DrillDiameter
	if drill <= 0 {
		drill = settings.MouseBiteDiameter
	}
	return &Generator{
		Machine:       settings.Machine,
		DrillDiameter: drill,
		profile:       model.GetProfile(settings.Machine.GCodeProfile),
	}
}

// Toolpath is one closed route of the tool centre, in panel coordinates.
type Toolpath struct {
	Ring   geom.Ring
	Inside bool // Routes a slot inside the panel
}

// Generate produces the program for a built panel.
func (g *Generator) Generate(name string, res model.BuildResult) string {
	var b strings.Builder

	paths, _ := Toolpaths(res, g.Machine.ToolDiameter)
	g.writeHeader(&b, name, res, len(paths))

	if len(res.Perforations) > 0 {
		g.writeDrilling(&b, res.Perforations)
		if len(paths) > 0 {
			g.writeToolChange(&b)
		}
	}

	for i, tp := range paths {
		g.writeRoute(&b, tp, i+1)
	}

	g.writeFooter(&b)
	return b.String()
}

// Toolpaths offsets the substrate by the tool radius: the outline grows and
// every slot shrinks. Slots narrower than the tool vanish; their count is
// returned as skipped.
func Toolpaths(res model.BuildResult, toolDiameter float64) ([]Toolpath, int) {
	r := toolDiameter / 2
	var paths []Toolpath
	skipped := 0
	for _, s := range res.Substrate {
		poly := s.Polygon()
		grown := geom.MitreBuffer(poly, r)
		for _, p := range grown {
			paths = append(paths, Toolpath{Ring: p.Exterior})
			for _, h := range p.Holes {
				paths = append(paths, Toolpath{Ring: h, Inside: true})
			}
		}
		for _, h := range poly.Holes {
			if !slotReachable(h, grown) {
				skipped++
			}
		}
	}
	return paths, skipped
}

// slotReachable reports whether any hole of the offset substrate lies in
// the slot h.
func slotReachable(h geom.Ring, grown []geom.Polygon) bool {
	for _, p := range grown {
		for _, gh := range p.Holes {
			if len(gh) > 0 && h.Contains(centroid(gh)) {
				return true
			}
		}
	}
	return false
}

func centroid(r geom.Ring) r2.Vec {
	var c r2.Vec
	for _, p := range r {
		c = r2.Add(c, p)
	}
	return r2.Scale(1/float64(len(r)), c)
}

func (g *Generator) writeHeader(b *strings.Builder, name string, res model.BuildResult, routes int) {
	p := g.profile
	m := g.Machine

	b.WriteString(g.comment(fmt.Sprintf("PanelCut GCode - %s", name)))
	if box, ok := res.Bounds(); ok {
		size := box.Size()
		b.WriteString(g.comment(fmt.Sprintf("Panel: %.1f x %.1f mm", size.X, size.Y)))
	}
	b.WriteString(g.comment(fmt.Sprintf("Boards: %d, Perforations: %d, Routes: %d", len(res.Boards), len(res.Perforations), routes)))
	b.WriteString(g.comment(fmt.Sprintf("Tool: %.1fmm, Drill: %.2fmm, Feed: %.0f mm/min, Plunge: %.0f mm/min",
		m.ToolDiameter, g.DrillDiameter, m.FeedRate, m.PlungeRate)))
	b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %.1fmm passes", m.CutDepth, m.PassDepth)))
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", m.SpindleSpeed))
	}

	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(m.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Machine.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// writeDrilling drills every perforation through the panel, nearest hole
// first. Profiles with a drill cycle use it; others plunge and retract.
func (g *Generator) writeDrilling(b *strings.Builder, holes []model.Point2D) {
	p := g.profile
	m := g.Machine
	order := DrillOrder(holes)

	b.WriteString(g.comment(fmt.Sprintf("--- Perforations: %d holes, %.2fmm drill ---", len(order), g.DrillDiameter)))

	if p.DrillCycle != "" {
		for i, h := range order {
			if i == 0 {
				b.WriteString(fmt.Sprintf("%s X%s Y%s Z%s R%s F%s\n", p.DrillCycle,
					g.format(h.X), g.format(-h.Y), g.format(-m.CutDepth),
					g.format(m.SafeZ), g.format(m.PlungeRate)))
				continue
			}
			b.WriteString(fmt.Sprintf("X%s Y%s\n", g.format(h.X), g.format(-h.Y)))
		}
		if p.CancelCycle != "" {
			b.WriteString(p.CancelCycle + "\n")
		}
		b.WriteString("\n")
		return
	}

	for _, h := range order {
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(h.X), g.format(-h.Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(-m.CutDepth), g.format(m.PlungeRate)))
		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(m.SafeZ)))
	}
	b.WriteString("\n")
}

// writeToolChange stops the spindle and pauses for the router bit.
func (g *Generator) writeToolChange(b *strings.Builder) {
	p := g.profile
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Machine.SafeZ)))
	if p.SpindleStop != "" {
		b.WriteString(p.SpindleStop + "\n")
	}
	b.WriteString(g.comment(fmt.Sprintf("Tool change: %.1fmm end mill", g.Machine.ToolDiameter)))
	b.WriteString("M0\n")
	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Machine.SpindleSpeed))
	}
	b.WriteString("\n")
}

// writeRoute cuts one closed toolpath in passes.
func (g *Generator) writeRoute(b *strings.Builder, tp Toolpath, n int) {
	m := g.Machine
	pts := g.machineRing(tp)
	if len(pts) < 3 {
		b.WriteString(g.comment("WARNING: toolpath has fewer than 3 points, skipping"))
		return
	}

	kind := "outline"
	if tp.Inside {
		kind = "slot"
	}
	b.WriteString(g.comment(fmt.Sprintf("--- Route %d: %s, %.1fmm ---", n, kind, tp.Ring.Length())))

	numPasses := 1
	if m.PassDepth > 0 {
		numPasses = int(math.Ceil(m.CutDepth / m.PassDepth))
	}

	for pass := 1; pass <= numPasses; pass++ {
		depth := float64(pass) * m.PassDepth
		if depth > m.CutDepth || m.PassDepth <= 0 {
			depth = m.CutDepth
		}

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, numPasses, depth)))

		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", g.profile.RapidMove, g.format(pts[0].X), g.format(pts[0].Y)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", g.profile.FeedMove, g.format(-depth), g.format(m.PlungeRate)))

		for i := 1; i < len(pts); i++ {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
				g.format(pts[i].X), g.format(pts[i].Y), g.format(m.FeedRate)))
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", g.profile.FeedMove,
			g.format(pts[0].X), g.format(pts[0].Y), g.format(m.FeedRate)))

		b.WriteString(fmt.Sprintf("%s Z%s\n", g.profile.RapidMove, g.format(m.SafeZ)))
	}

	b.WriteString("\n")
}

// machineRing mirrors the toolpath into machine coordinates and orients it
// for the milling direction: with a clockwise spindle, climb milling runs
// outlines clockwise and slots counter-clockwise.
func (g *Generator) machineRing(tp Toolpath) geom.Ring {
	r := make(geom.Ring, 0, len(tp.Ring))
	for _, p := range tp.Ring.Dedupe(1e-6) {
		r = append(r, r2.Vec{X: p.X, Y: -p.Y})
	}
	ccw := tp.Inside == g.Machine.UseClimb
	return r.Oriented(ccw)
}

// DrillOrder sorts the holes nearest-first, starting from the origin.
func DrillOrder(holes []model.Point2D) []model.Point2D {
	left := append([]model.Point2D(nil), holes...)
	out := make([]model.Point2D, 0, len(holes))
	cur := r2.Vec{}
	for len(left) > 0 {
		best, bestD := 0, math.Inf(1)
		for i, h := range left {
			if d := r2.Norm2(r2.Sub(h.Vec(), cur)); d < bestD {
				best, bestD = i, d
			}
		}
		out = append(out, left[best])
		cur = left[best].Vec()
		left = append(left[:best], left[best+1:]...)
	}
	return out
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	s := fmt.Sprintf(format, v)
	if strings.Trim(s, "-0.") == "" {
		// No negative zero
		s = strings.TrimPrefix(s, "-")
	}
	return s
}
