package model

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/piwi3910/PanelCut/internal/buildexpr"
	"github.com/piwi3910/PanelCut/internal/geom"
	"gonum.org/v1/gonum/spatial/r2"
)

// Tab is a manual tab anchor in board-local coordinates.
type Tab struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Closest   bool    `json:"closest"`   // Reach for the closest point of the outline
	Direction float64 `json:"direction"` // Degrees; 0 points up (-y), clockwise on screen
}

// TabArrow is a manual tab resolved in panel coordinates: it runs from the
// anchor to the point where it touches the board outline.
type TabArrow struct {
	Anchor r2.Vec
	Touch  r2.Vec
	Width  float64
	// Dir is the unit tab direction for explicit tabs, zero for closest tabs.
	Dir r2.Vec
}

// Annotation is a component reference with the build expression that decides
// whether it is populated.
type Annotation struct {
	Ref       string `json:"ref"`
	BuildExpr string `json:"buildexpr"`
}

// Board is one circuit board placed on the panel.
type Board struct {
	ID       string  `json:"id"`
	Ident    string  `json:"ident"`
	File     string  `json:"file,omitempty"`
	Outlines []Shape `json:"outlines"` // Local frame, immutable after load

	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"` // Degrees

	// Panel origin, copied from the settings by Project.Attach.
	OffX float64 `json:"-"`
	OffY float64 `json:"-"`

	MarginTop    float64 `json:"margin_top"`
	MarginBottom float64 `json:"margin_bottom"`
	MarginLeft   float64 `json:"margin_left"`
	MarginRight  float64 `json:"margin_right"`

	Tabs []Tab `json:"tabs"`

	Annotations []Annotation `json:"annotations,omitempty"`
	AvailFlags  []string     `json:"avail_flags,omitempty"`
	Flags       []string     `json:"flags,omitempty"`

	Errors []string `json:"-"` // Load-time problems, advisory
}

// NewBoard creates a board at the origin with a fresh ID.
func NewBoard(ident, file string, outlines []Shape) Board {
	return Board{
		ID:       uuid.New().String()[:8],
		Ident:    ident,
		File:     file,
		Outlines: outlines,
		Tabs:     []Tab{},
	}
}

// SetAnnotations stores the build annotations, derives the available flags
// and records invalid expressions as board errors.
func (b *Board) SetAnnotations(ann []Annotation) {
	b.Annotations = ann
	b.ValidateAnnotations()
}

// ValidateAnnotations recomputes AvailFlags and the annotation errors.
func (b *Board) ValidateAnnotations() {
	seen := map[string]bool{}
	for _, a := range b.Annotations {
		e, err := buildexpr.Parse(a.BuildExpr)
		if err != nil {
			b.Errors = append(b.Errors, fmt.Sprintf("%s: Invalid buildexpr %q", a.Ref, a.BuildExpr))
			continue
		}
		for _, id := range buildexpr.Identifiers(e) {
			seen[id] = true
		}
	}
	b.AvailFlags = b.AvailFlags[:0]
	for f := range seen {
		b.AvailFlags = append(b.AvailFlags, f)
	}
	sort.Strings(b.AvailFlags)
}

// Transform maps a local polygon into panel coordinates.
func (b Board) Transform(p geom.Polygon) geom.Polygon {
	return p.Rotate(-geom.Radians(math.Mod(b.Rotation, 360)), r2.Vec{}).Translate(b.origin())
}

// TransformPoint maps a local point into panel coordinates.
func (b Board) TransformPoint(p r2.Vec) r2.Vec {
	return r2.Add(r2.Rotate(p, -geom.Radians(math.Mod(b.Rotation, 360)), r2.Vec{}), b.origin())
}

func (b Board) origin() r2.Vec {
	return r2.Vec{X: b.X + b.OffX, Y: b.Y + b.OffY}
}

// Shapes returns the board outlines in panel coordinates.
func (b Board) Shapes() []geom.Polygon {
	out := make([]geom.Polygon, 0, len(b.Outlines))
	for _, s := range b.Outlines {
		if len(s.Exterior) < 3 {
			continue
		}
		out = append(out, b.Transform(s.Polygon()))
	}
	return out
}

// BoundingBox returns the panel-space bounds of the board. ok is false for a
// board without usable outlines.
func (b Board) BoundingBox() (box r2.Box, ok bool) {
	return geom.Bounds(b.Shapes())
}

// Contains reports whether p lies inside any outline piece.
func (b Board) Contains(p r2.Vec) bool {
	for _, s := range b.Shapes() {
		if s.Contains(p) {
			return true
		}
	}
	return false
}

// Width returns the width of the rotated board.
func (b Board) Width() float64 {
	box, _ := b.BoundingBox()
	return box.Size().X
}

// Height returns the height of the rotated board.
func (b Board) Height() float64 {
	box, _ := b.BoundingBox()
	return box.Size().Y
}

// SetTop moves the board so its top edge sits at y.
func (b *Board) SetTop(y float64) {
	if box, ok := b.BoundingBox(); ok {
		b.Y += y - box.Min.Y
	}
}

// SetBottom moves the board so its bottom edge sits at y.
func (b *Board) SetBottom(y float64) {
	if box, ok := b.BoundingBox(); ok {
		b.Y += y - box.Max.Y
	}
}

// SetLeft moves the board so its left edge sits at x.
func (b *Board) SetLeft(x float64) {
	if box, ok := b.BoundingBox(); ok {
		b.X += x - box.Min.X
	}
}

// SetRight moves the board so its right edge sits at x.
func (b *Board) SetRight(x float64) {
	if box, ok := b.BoundingBox(); ok {
		b.X += x - box.Max.X
	}
}

// Center returns the centre of the bounding box.
func (b Board) Center() r2.Vec {
	box, _ := b.BoundingBox()
	return box.Center()
}

// SetCenter moves the board so its bounding box is centred on c.
func (b *Board) SetCenter(c r2.Vec) {
	cur := b.Center()
	b.X += c.X - cur.X
	b.Y += c.Y - cur.Y
}

// RotateBy turns the board clockwise on screen by deg, keeping its centre.
func (b *Board) RotateBy(deg float64) {
	c := b.Center()
	b.Rotation = math.Mod(b.Rotation+deg, 360)
	if b.Rotation < 0 {
		b.Rotation += 360
	}
	b.SetCenter(c)
}

// Move shifts the board by dx, dy.
func (b *Board) Move(dx, dy float64) {
	b.X += dx
	b.Y += dy
}

// Clone returns a new board sharing the outlines, placed at 0,0 with the same
// rotation, its own copy of the tabs and a new ID.
func (b Board) Clone() Board {
	c := b.Copy()
	c.ID = uuid.New().String()[:8]
	c.X, c.Y = 0, 0
	return c
}

// Copy returns a deep copy of the mutable parts of the board. Outlines are
// shared because they never change after load.
func (b Board) Copy() Board {
	c := b
	c.Tabs = append([]Tab(nil), b.Tabs...)
	c.Annotations = append([]Annotation(nil), b.Annotations...)
	c.AvailFlags = append([]string(nil), b.AvailFlags...)
	c.Flags = append([]string(nil), b.Flags...)
	c.Errors = append([]string(nil), b.Errors...)
	return c
}

// AddTab adds a closest-point tab anchored at a panel-space point.
func (b *Board) AddTab(x, y, width float64) {
	local := r2.Rotate(r2.Sub(r2.Vec{X: x, Y: y}, b.origin()), geom.Radians(b.Rotation), r2.Vec{})
	b.Tabs = append(b.Tabs, Tab{
		X:       local.X,
		Y:       local.Y,
		Width:   width,
		Closest: true,
	})
}

// RemoveTab deletes the tab at index i.
func (b *Board) RemoveTab(i int) error {
	if i < 0 || i >= len(b.Tabs) {
		return fmt.Errorf("tab %d: %w", i, ErrNotFound)
	}
	b.Tabs = append(b.Tabs[:i], b.Tabs[i+1:]...)
	return nil
}

// GlobalTabs resolves the manual tabs in panel coordinates. Closest tabs
// reach for the nearest point of any outline; explicit tabs shoot along
// their direction (or against it when the anchor sits past the outline).
// Tabs that touch nothing are skipped.
func (b Board) GlobalTabs() []TabArrow {
	shapes := b.Shapes()
	if len(shapes) == 0 {
		return nil
	}
	var out []TabArrow
	for _, t := range b.Tabs {
		p := b.TransformPoint(r2.Vec{X: t.X, Y: t.Y})
		if t.Closest {
			best, bestDist := r2.Vec{}, math.Inf(1)
			for _, s := range shapes {
				q, _, d := geom.ClosestOnRing(p, s.Exterior)
				if d < bestDist {
					best, bestDist = q, d
				}
			}
			out = append(out, TabArrow{Anchor: p, Touch: best, Width: t.Width})
			continue
		}
		dir := TabDirection(t.Direction)
		touch, ok := geom.RayPolygons(p, dir, shapes, geom.MaxExtent)
		if !ok {
			touch, ok = geom.RayPolygons(p, r2.Scale(-1, dir), shapes, geom.MaxExtent)
		}
		if !ok {
			continue
		}
		out = append(out, TabArrow{Anchor: p, Touch: touch, Width: t.Width, Dir: dir})
	}
	return out
}

// TabDirection returns the unit vector of a tab direction in degrees.
func TabDirection(deg float64) r2.Vec {
	return r2.Rotate(r2.Vec{X: 0, Y: -1}, geom.Radians(deg), r2.Vec{})
}

// BuildFlags returns the selected flags as a set.
func (b Board) BuildFlags() map[string]bool {
	set := make(map[string]bool, len(b.Flags))
	for _, f := range b.Flags {
		set[f] = true
	}
	return set
}
