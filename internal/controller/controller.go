// Package controller owns the panel state. Every edit goes through it and
// schedules a rebuild on a single builder goroutine.
package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/piwi3910/PanelCut/internal/engine"
	"github.com/piwi3910/PanelCut/internal/model"
	"gonum.org/v1/gonum/spatial/r2"
)

// BuildFunc builds a project snapshot.
type BuildFunc func(proj model.Project) (model.BuildResult, error)

func defaultBuild(proj model.Project) (model.BuildResult, error) {
	return engine.BuildProject(&proj, engine.BuildOptions{})
}

// Controller serialises edits to a project and keeps its build result
// current. Builds run on deep copies, so edits never wait for a build.
type Controller struct {
	mu        sync.Mutex
	project   model.Project
	result    *model.BuildResult
	buildErr  error
	selection model.Selection
	history   *History

	// gen counts edits; built is the edit count the last finished build saw.
	gen   uint64
	built uint64
	done  chan struct{} // Closed and replaced after every build

	requests chan struct{}
	build    BuildFunc
	log      logger.Logger
}

// New creates a controller for proj. Call Run to start building.
func New(proj model.Project) *Controller {
	proj.Attach()
	return &Controller{
		project:  proj,
		history:  NewHistory(),
		done:     make(chan struct{}),
		requests: make(chan struct{}, 1),
		build:    defaultBuild,
		log:      logger.GetLogger("panel"),
	}
}

// WithBuildFunc replaces the engine call, for tests and previews.
func (c *Controller) WithBuildFunc(fn BuildFunc) *Controller {
	c.build = fn
	return c
}

// Run consumes rebuild requests until ctx is cancelled. Requests that arrive
// while one is pending coalesce into a single build; a request made during a
// build causes exactly one more build with the latest state.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.requests:
			c.rebuild()
		}
	}
}

// Rebuild schedules a build without changing anything.
func (c *Controller) Rebuild() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	c.request()
}

func (c *Controller) request() {
	select {
	case c.requests <- struct{}{}:
	default:
	}
}

func (c *Controller) rebuild() {
	c.mu.Lock()
	snap := c.project.Clone()
	gen := c.gen
	c.mu.Unlock()

	start := time.Now()
	c.log.Debugf("building panel: %d boards, %d holes", len(snap.Boards), len(snap.Holes))
	res, err := c.build(snap)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// The previous result stays valid.
		c.buildErr = err
		c.log.Warnf("build blocked: %v", err)
	} else {
		c.buildErr = nil
		c.result = &res
		for _, msg := range res.Errors {
			c.log.Warnf("%s", msg)
		}
		c.log.Debugf("panel built in %s: %d tabs, %d cuts, %d v-cuts, %d perforations",
			time.Since(start), len(res.Tabs), len(res.Cuts), len(res.VCuts), len(res.Perforations))
	}
	if gen > c.built {
		c.built = gen
	}
	close(c.done)
	c.done = make(chan struct{})
}

// Wait blocks until a build covering every edit made before the call has
// finished, or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	target := c.gen
	c.mu.Unlock()
	for {
		c.mu.Lock()
		if c.built >= target {
			c.mu.Unlock()
			return nil
		}
		done := c.done
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
		}
	}
}

// Project returns a deep copy of the current project with the last result.
func (c *Controller) Project() model.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.project.Clone()
	if c.result != nil {
		res := *c.result
		p.Result = &res
	}
	return p
}

// Result returns the last successful build and the error of the most recent
// build attempt. The result is nil before the first successful build.
func (c *Controller) Result() (*model.BuildResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.result == nil {
		return nil, c.buildErr
	}
	res := *c.result
	return &res, c.buildErr
}

// mutate applies fn under the lock. A successful edit is recorded in the
// history and schedules a rebuild; a failed one leaves no trace, so fn must
// check before it changes anything.
func (c *Controller) mutate(label string, fn func(p *model.Project) error) error {
	c.mu.Lock()
	before := MakeSnapshot(c.project, label)
	if err := fn(&c.project); err != nil {
		c.mu.Unlock()
		return err
	}
	c.project.Attach()
	c.history.Push(before)
	c.gen++
	c.mu.Unlock()
	c.request()
	return nil
}

// Load replaces the project and forgets the history.
func (c *Controller) Load(proj model.Project) {
	c.mu.Lock()
	c.project = proj.Clone()
	c.project.Attach()
	c.result = nil
	c.buildErr = nil
	c.selection = model.Selection{}
	c.history.Clear()
	c.gen++
	c.mu.Unlock()
	c.request()
}

func boardIndex(p *model.Project, id string) (int, error) {
	for i := range p.Boards {
		if p.Boards[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("board %s: %w", id, model.ErrNotFound)
}

func holeIndex(p *model.Project, id string) (int, error) {
	for i := range p.Holes {
		if p.Holes[i].ID == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("hole %s: %w", id, model.ErrNotFound)
}

// AddBoard appends a board to the panel.
func (c *Controller) AddBoard(b model.Board) error {
	return c.mutate("Add Board", func(p *model.Project) error {
		p.Boards = append(p.Boards, b.Copy())
		return nil
	})
}

// RemoveBoard deletes the board with the given ID.
func (c *Controller) RemoveBoard(id string) error {
	return c.mutate("Remove Board", func(p *model.Project) error {
		i, err := boardIndex(p, id)
		if err != nil {
			return err
		}
		p.Boards = append(p.Boards[:i], p.Boards[i+1:]...)
		c.selection = model.Selection{}
		return nil
	})
}

// CloneBoard adds a copy of a board at the panel origin and returns its ID.
func (c *Controller) CloneBoard(id string) (string, error) {
	var newID string
	err := c.mutate("Clone Board", func(p *model.Project) error {
		i, err := boardIndex(p, id)
		if err != nil {
			return err
		}
		clone := p.Boards[i].Clone()
		newID = clone.ID
		p.Boards = append(p.Boards, clone)
		return nil
	})
	return newID, err
}

// MoveBoard shifts a board by dx, dy.
func (c *Controller) MoveBoard(id string, dx, dy float64) error {
	return c.mutate("Move Board", func(p *model.Project) error {
		i, err := boardIndex(p, id)
		if err != nil {
			return err
		}
		p.Boards[i].Move(dx, dy)
		return nil
	})
}

// RotateBoard turns a board by deg about its centre.
func (c *Controller) RotateBoard(id string, deg float64) error {
	return c.mutate("Rotate Board", func(p *model.Project) error {
		i, err := boardIndex(p, id)
		if err != nil {
			return err
		}
		p.Boards[i].RotateBy(deg)
		return nil
	})
}

// SetBoardFlags selects the build flags of a board.
func (c *Controller) SetBoardFlags(id string, flags []string) error {
	return c.mutate("Set Flags", func(p *model.Project) error {
		i, err := boardIndex(p, id)
		if err != nil {
			return err
		}
		p.Boards[i].Flags = append([]string(nil), flags...)
		return nil
	})
}

// AddTab adds a closest-point tab to a board at a panel-space point, using
// the configured tab width.
func (c *Controller) AddTab(id string, at r2.Vec) error {
	return c.mutate("Add Tab", func(p *model.Project) error {
		i, err := boardIndex(p, id)
		if err != nil {
			return err
		}
		p.Boards[i].AddTab(at.X, at.Y, p.Settings.TabWidth)
		return nil
	})
}

// RemoveTab deletes tab n of a board.
func (c *Controller) RemoveTab(id string, n int) error {
	return c.mutate("Remove Tab", func(p *model.Project) error {
		i, err := boardIndex(p, id)
		if err != nil {
			return err
		}
		return p.Boards[i].RemoveTab(n)
	})
}

// AddHole appends a keep-out hole.
func (c *Controller) AddHole(h model.Hole) error {
	return c.mutate("Add Hole", func(p *model.Project) error {
		p.Holes = append(p.Holes, h.Copy())
		return nil
	})
}

// RemoveHole deletes the hole with the given ID.
func (c *Controller) RemoveHole(id string) error {
	return c.mutate("Remove Hole", func(p *model.Project) error {
		i, err := holeIndex(p, id)
		if err != nil {
			return err
		}
		p.Holes = append(p.Holes[:i], p.Holes[i+1:]...)
		c.selection = model.Selection{}
		return nil
	})
}

// MoveHole shifts a hole by dx, dy.
func (c *Controller) MoveHole(id string, dx, dy float64) error {
	return c.mutate("Move Hole", func(p *model.Project) error {
		i, err := holeIndex(p, id)
		if err != nil {
			return err
		}
		p.Holes[i].Move(dx, dy)
		return nil
	})
}

// UpdateSettings edits the panel settings. Invalid rename patterns are
// accepted here and block the following builds until fixed.
func (c *Controller) UpdateSettings(fn func(s *model.PanelSettings)) error {
	return c.mutate("Settings", func(p *model.Project) error {
		fn(&p.Settings)
		return nil
	})
}

// Align stacks boards against a side. With an empty targetID every board
// moves; otherwise only that board does.
func (c *Controller) Align(side engine.Side, targetID string) error {
	return c.mutate("Align "+side.String(), func(p *model.Project) error {
		var target *model.Board
		if targetID != "" {
			i, err := boardIndex(p, targetID)
			if err != nil {
				return err
			}
			target = &p.Boards[i]
		}
		engine.Align(p, side, target)
		return nil
	})
}

// FitFrame resizes the frame around the boards.
func (c *Controller) FitFrame() error {
	return c.mutate("Fit Frame", func(p *model.Project) error {
		// FitFrame only writes the frame once it knows there are boards.
		return engine.FitFrame(p)
	})
}

// GenerateHoles turns loose substrate into holes and rebuilds. It returns
// the number of holes added.
func (c *Controller) GenerateHoles() (int, error) {
	var n int
	err := c.mutate("Generate Holes", func(p *model.Project) error {
		holes, err := engine.New(p.Settings).GenerateHoles(p.Boards, p.Holes)
		if err != nil {
			return err
		}
		n = len(holes)
		p.Holes = append(p.Holes, holes...)
		return nil
	})
	return n, err
}

// Undo restores the state before the last edit. It reports false when there
// is nothing to undo.
func (c *Controller) Undo() bool {
	return c.restore(c.history.Undo)
}

// Redo reapplies the last undone edit.
func (c *Controller) Redo() bool {
	return c.restore(c.history.Redo)
}

func (c *Controller) restore(step func(Snapshot) (Snapshot, bool)) bool {
	c.mu.Lock()
	snap, ok := step(MakeSnapshot(c.project, ""))
	if !ok {
		c.mu.Unlock()
		return false
	}
	c.project = snap.Project
	c.project.Attach()
	c.selection = model.Selection{}
	c.gen++
	c.mu.Unlock()
	c.log.Debugf("restored %q", snap.Label)
	c.request()
	return true
}

// CanUndo reports whether there is an edit to undo.
func (c *Controller) CanUndo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanUndo()
}

// CanRedo reports whether there is an undone edit to reapply.
func (c *Controller) CanRedo() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.CanRedo()
}

// SelectAt selects the board or hole under a panel-space point.
func (c *Controller) SelectAt(pt r2.Vec) model.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = model.SelectAt(c.project, pt)
	return c.selection
}

// Selection returns the current selection.
func (c *Controller) Selection() model.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}
