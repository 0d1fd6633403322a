package controller

import (
	"testing"

	"github.com/piwi3910/PanelCut/internal/model"
)

func projectWith(n int) model.Project {
	p := model.NewProject()
	for i := 0; i < n; i++ {
		p.Boards = append(p.Boards, model.NewBoard("b", "", nil))
	}
	return p
}

func TestNewHistory(t *testing.T) {
	h := NewHistory()
	if h.maxDepth != defaultMaxDepth {
		t.Errorf("expected maxDepth %d, got %d", defaultMaxDepth, h.maxDepth)
	}
	if h.CanUndo() || h.CanRedo() {
		t.Error("new history should have nothing to undo or redo")
	}
}

func TestUndoRedo(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(projectWith(0), "empty"))
	h.Push(MakeSnapshot(projectWith(1), "one board"))

	restored, ok := h.Undo(MakeSnapshot(projectWith(2), "two boards"))
	if !ok {
		t.Fatal("undo should succeed")
	}
	if len(restored.Project.Boards) != 1 {
		t.Errorf("expected 1 board, got %d", len(restored.Project.Boards))
	}

	redone, ok := h.Redo(restored)
	if !ok {
		t.Fatal("redo should succeed")
	}
	if len(redone.Project.Boards) != 2 {
		t.Errorf("expected 2 boards after redo, got %d", len(redone.Project.Boards))
	}
}

func TestPushClearsRedo(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(projectWith(0), "empty"))
	if _, ok := h.Undo(MakeSnapshot(projectWith(1), "one")); !ok {
		t.Fatal("undo should succeed")
	}
	h.Push(MakeSnapshot(projectWith(0), "new action"))
	if h.CanRedo() {
		t.Error("redo stack should be cleared after push")
	}
}

func TestMaxDepth(t *testing.T) {
	h := &History{maxDepth: 3}
	for i := 0; i < 5; i++ {
		h.Push(MakeSnapshot(projectWith(i), ""))
	}
	if len(h.undoStack) != 3 {
		t.Errorf("expected undo stack length 3, got %d", len(h.undoStack))
	}
	if n := len(h.undoStack[0].Project.Boards); n != 2 {
		t.Errorf("oldest snapshots should be dropped first, got %d boards", n)
	}
}

func TestUndoRedoEmpty(t *testing.T) {
	h := NewHistory()
	if _, ok := h.Undo(MakeSnapshot(projectWith(0), "")); ok {
		t.Error("undo on empty history should return false")
	}
	if _, ok := h.Redo(MakeSnapshot(projectWith(0), "")); ok {
		t.Error("redo on empty history should return false")
	}
}

func TestClear(t *testing.T) {
	h := NewHistory()
	h.Push(MakeSnapshot(projectWith(0), "a"))
	h.Push(MakeSnapshot(projectWith(1), "b"))
	h.Undo(MakeSnapshot(projectWith(2), "current"))

	h.Clear()
	if h.CanUndo() || h.CanRedo() {
		t.Error("after clear, should not be able to undo or redo")
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	p := projectWith(1)
	p.Boards[0].Tabs = append(p.Boards[0].Tabs, model.Tab{X: 1, Y: 2, Width: 3})
	snap := MakeSnapshot(p, "test")

	p.Boards[0].X = 99
	p.Boards[0].Tabs[0].X = 99

	if snap.Project.Boards[0].X != 0 {
		t.Error("snapshot boards should be independent of the project")
	}
	if snap.Project.Boards[0].Tabs[0].X != 1 {
		t.Error("snapshot tabs should be independent of the project")
	}
}
