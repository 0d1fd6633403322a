package model

import "gonum.org/v1/gonum/spatial/r2"

// Selectable is anything the user can pick on the panel.
type Selectable interface {
	Contains(p r2.Vec) bool
	BoundingBox() (r2.Box, bool)
}

// SelectionKind tags what a Selection refers to.
type SelectionKind int

const (
	SelectNone SelectionKind = iota
	SelectBoard
	SelectHole
)

// Selection refers to one board or hole by index.
type Selection struct {
	Kind  SelectionKind
	Index int
}

// Resolve returns the selected item, or nil when the selection is empty or
// out of range.
func (s Selection) Resolve(p Project) Selectable {
	switch s.Kind {
	case SelectBoard:
		if s.Index >= 0 && s.Index < len(p.Boards) {
			return p.Boards[s.Index]
		}
	case SelectHole:
		if s.Index >= 0 && s.Index < len(p.Holes) {
			return p.Holes[s.Index]
		}
	}
	return nil
}

// SelectAt picks the item under p. Boards win over holes; later items win
// over earlier ones, matching draw order.
func SelectAt(proj Project, p r2.Vec) Selection {
	for i := len(proj.Boards) - 1; i >= 0; i-- {
		if proj.Boards[i].Contains(p) {
			return Selection{Kind: SelectBoard, Index: i}
		}
	}
	for i := len(proj.Holes) - 1; i >= 0; i-- {
		if proj.Holes[i].Contains(p) {
			return Selection{Kind: SelectHole, Index: i}
		}
	}
	return Selection{}
}
