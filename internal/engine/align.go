package engine

import (
	"sort"

	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// Side is the panel edge boards are stacked against.
type Side int

const (
	SideTop Side = iota
	SideBottom
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideTop:
		return "top"
	case SideBottom:
		return "bottom"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return "unknown"
}

// ParseSide maps "top", "bottom", "left" or "right" to a Side.
func ParseSide(s string) (Side, bool) {
	for _, side := range []Side{SideTop, SideBottom, SideLeft, SideRight} {
		if side.String() == s {
			return side, true
		}
	}
	return SideTop, false
}

// axis expresses one side in key space, where boards always travel towards
// smaller keys. Top and left use the coordinate as key, bottom and right its
// negation, so one stacking routine serves all four sides.
type axis struct {
	dir   r2.Vec
	key   func(v float64) float64
	lead  func(b r2.Box) float64 // Key of the leading edge
	trail func(b r2.Box) float64 // Key of the trailing edge
	size  func(b r2.Box) float64
	set   func(b *model.Board, key float64)
	// Own margin on the leading side, and the margin of a board we stack
	// against on the side facing us.
	leadMargin  func(b *model.Board) float64
	trailMargin func(b *model.Board) float64
}

func axisFor(side Side) axis {
	switch side {
	case SideBottom:
		return axis{
			dir:         r2.Vec{X: 0, Y: 1},
			key:         func(v float64) float64 { return -v },
			lead:        func(b r2.Box) float64 { return -b.Max.Y },
			trail:       func(b r2.Box) float64 { return -b.Min.Y },
			size:        func(b r2.Box) float64 { return b.Size().Y },
			set:         func(b *model.Board, k float64) { b.SetBottom(-k) },
			leadMargin:  func(b *model.Board) float64 { return b.MarginBottom },
			trailMargin: func(b *model.Board) float64 { return b.MarginTop },
		}
	case SideLeft:
		return axis{
			dir:         r2.Vec{X: -1, Y: 0},
			key:         func(v float64) float64 { return v },
			lead:        func(b r2.Box) float64 { return b.Min.X },
			trail:       func(b r2.Box) float64 { return b.Max.X },
			size:        func(b r2.Box) float64 { return b.Size().X },
			set:         func(b *model.Board, k float64) { b.SetLeft(k) },
			leadMargin:  func(b *model.Board) float64 { return b.MarginLeft },
			trailMargin: func(b *model.Board) float64 { return b.MarginRight },
		}
	case SideRight:
		return axis{
			dir:         r2.Vec{X: 1, Y: 0},
			key:         func(v float64) float64 { return -v },
			lead:        func(b r2.Box) float64 { return -b.Max.X },
			trail:       func(b r2.Box) float64 { return -b.Min.X },
			size:        func(b r2.Box) float64 { return b.Size().X },
			set:         func(b *model.Board, k float64) { b.SetRight(-k) },
			leadMargin:  func(b *model.Board) float64 { return b.MarginRight },
			trailMargin: func(b *model.Board) float64 { return b.MarginLeft },
		}
	default:
		return axis{
			dir:         r2.Vec{X: 0, Y: -1},
			key:         func(v float64) float64 { return v },
			lead:        func(b r2.Box) float64 { return b.Min.Y },
			trail:       func(b r2.Box) float64 { return b.Max.Y },
			size:        func(b r2.Box) float64 { return b.Size().Y },
			set:         func(b *model.Board, k float64) { b.SetTop(k) },
			leadMargin:  func(b *model.Board) float64 { return b.MarginTop },
			trailMargin: func(b *model.Board) float64 { return b.MarginBottom },
		}
	}
}

// innerEdge returns the frame's inner edge for a side: the rail plus the
// spacing when the rail exists, the bare frame edge otherwise.
func innerEdge(s model.PanelSettings, side Side) float64 {
	f := s.Frame
	rail := func(v float64) float64 {
		if !f.Enabled || v <= 0 {
			return 0
		}
		return v + s.ClampedSpacing()
	}
	switch side {
	case SideBottom:
		return s.FrameOffY + f.Height - rail(f.Bottom)
	case SideLeft:
		return s.FrameOffX + rail(f.Left)
	case SideRight:
		return s.FrameOffX + f.Width - rail(f.Right)
	default:
		return s.FrameOffY + rail(f.Top)
	}
}

// Align stacks boards against one side of the panel. With target nil every
// board is aligned in order of its leading edge; otherwise only target moves
// and it snaps into the nearest free slot towards the side. Boards without
// usable outlines are left alone. Align never fails.
func Align(proj *model.Project, side Side, target *model.Board) {
	ax := axisFor(side)
	spacing := proj.Settings.ClampedSpacing()
	limit := ax.key(innerEdge(proj.Settings, side))

	var todo []*model.Board
	for i := range proj.Boards {
		if _, ok := proj.Boards[i].BoundingBox(); ok {
			todo = append(todo, &proj.Boards[i])
		}
	}
	if len(todo) == 0 {
		return
	}
	leadOf := func(b *model.Board) float64 {
		box, _ := b.BoundingBox()
		return ax.lead(box)
	}
	sort.SliceStable(todo, func(i, j int) bool { return leadOf(todo[i]) < leadOf(todo[j]) })

	start, end := 0, len(todo)
	var slots []float64
	if target != nil {
		start = -1
		for i, b := range todo {
			if b.ID == target.ID {
				start = i
				break
			}
		}
		if start < 0 {
			return
		}
		end = start + 1
		tbox, _ := todo[start].BoundingBox()
		slots = []float64{limit}
		for _, b := range todo {
			box, _ := b.BoundingBox()
			slots = append(slots, ax.lead(box), ax.trail(box)+spacing, ax.trail(box)-ax.size(tbox))
		}
		sort.Float64s(slots)
	}

	for i := start; i < end; i++ {
		p := todo[i]
		lead := leadOf(p)

		contact, hit := 0.0, false
		margin := 0.0
		for _, d := range todo[:i] {
			dist, ok := BoardDirectionalDistance(*p, *d, ax.dir)
			if !ok {
				continue
			}
			if t := lead - dist; !hit || t > contact {
				contact, hit = t, true
				margin = ax.trailMargin(d)
			}
		}
		if m := ax.leadMargin(p); m > margin {
			margin = m
		}

		if target != nil {
			ax.set(p, pickSlot(slots, lead, contact, hit)+margin)
			continue
		}
		if !hit {
			// Boards behind this one move by the same amount so they do not
			// end up overlapping it.
			offset := limit - lead
			for _, o := range todo[i+1:] {
				if dist, ok := BoardDirectionalDistance(*o, *p, ax.dir); ok && dist > 0 {
					ax.set(o, leadOf(o)+offset+margin)
				}
			}
			ax.set(p, limit+margin)
			continue
		}
		k := contact + spacing
		if limit > k {
			k = limit
		}
		ax.set(p, k+margin)
	}
}

// pickSlot returns the nearest slot key in front of lead. With a contact it
// never passes the contact key.
func pickSlot(slots []float64, lead, contact float64, hit bool) float64 {
	best, found := 0.0, false
	for _, y := range slots {
		if y < lead && (!hit || y >= contact) {
			best, found = y, true
		}
	}
	switch {
	case found:
		return best
	case hit:
		return contact
	default:
		return slots[0]
	}
}

// AlignTop stacks boards against the top of the panel.
func AlignTop(proj *model.Project, target *model.Board) { Align(proj, SideTop, target) }

// AlignBottom stacks boards against the bottom of the panel.
func AlignBottom(proj *model.Project, target *model.Board) { Align(proj, SideBottom, target) }

// AlignLeft stacks boards against the left of the panel.
func AlignLeft(proj *model.Project, target *model.Board) { Align(proj, SideLeft, target) }

// AlignRight stacks boards against the right of the panel.
func AlignRight(proj *model.Project, target *model.Board) { Align(proj, SideRight, target) }
