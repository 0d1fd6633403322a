package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/piwi3910/PanelCut/internal/controller"
	"github.com/piwi3910/PanelCut/internal/model"
	"github.com/piwi3910/PanelCut/internal/project"
)

// buildTimeout bounds how long a command waits for the panel to build.
const buildTimeout = 2 * time.Minute

// session is one project file opened for editing. Edits go through the
// controller, which rebuilds the panel in the background.
type session struct {
	path   string
	ctl    *controller.Controller
	cancel context.CancelFunc
}

// openSession loads the project at path and starts its builder.
func openSession(ctx context.Context, path string) (*session, error) {
	loaded, err := project.LoadProject(path)
	if err != nil {
		return nil, err
	}
	for _, w := range loaded.Warnings {
		logger.Warnf("%s", w)
	}
	for _, b := range loaded.Project.Boards {
		for _, e := range b.Errors {
			logger.Warnf("%s: %s", b.Ident, e)
		}
	}
	if err := project.RegisterCustomProfiles(profilesPath()); err != nil {
		logger.Warnf("custom profiles: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &session{
		path:   path,
		ctl:    controller.New(loaded.Project),
		cancel: cancel,
	}
	go func() {
		_ = s.ctl.Run(ctx)
	}()
	s.ctl.Rebuild()
	return s, nil
}

// Close stops the builder.
func (s *session) Close() {
	s.cancel()
}

// wait blocks until the edits made so far are built.
func (s *session) wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, buildTimeout)
	defer cancel()
	if err := s.ctl.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for build: %w", err)
	}
	return nil
}

// built returns the project with its build result once the edits made so
// far are built. A blocked build is an error.
func (s *session) built(ctx context.Context) (model.Project, error) {
	if err := s.wait(ctx); err != nil {
		return model.Project{}, err
	}
	if _, err := s.ctl.Result(); err != nil {
		return model.Project{}, err
	}
	return s.ctl.Project(), nil
}

// save writes the project back to its file and records it as recent. The
// project is saved even when its build is blocked, so a bad setting can be
// fixed with another edit.
func (s *session) save(ctx context.Context) (model.Project, error) {
	if err := s.wait(ctx); err != nil {
		return model.Project{}, err
	}
	if _, err := s.ctl.Result(); err != nil {
		logger.Warnf("%v", err)
	}
	proj := s.ctl.Project()
	if err := project.SaveProject(s.path, proj); err != nil {
		return proj, err
	}
	if err := project.TouchRecent(configPath(), s.path); err != nil {
		logger.Warnf("recent projects: %v", err)
	}
	logger.Infof("saved %s", s.path)
	return proj, nil
}

// boardID resolves a board reference: a board ID or a 1-based index.
func boardID(proj model.Project, ref string) (string, error) {
	for _, b := range proj.Boards {
		if b.ID == ref {
			return b.ID, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(proj.Boards) {
		return proj.Boards[n-1].ID, nil
	}
	return "", fmt.Errorf("board %q: %w", ref, model.ErrNotFound)
}

// editProject opens path, applies edit and saves the result.
func editProject(ctx context.Context, path string, edit func(s *session) error) (model.Project, error) {
	s, err := openSession(ctx, path)
	if err != nil {
		return model.Project{}, err
	}
	defer s.Close()
	if err := edit(s); err != nil {
		return model.Project{}, err
	}
	return s.save(ctx)
}
