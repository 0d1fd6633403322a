package model

import "errors"

var (
	// ErrInvalidPattern is returned for a rename pattern with unknown fields
	// or unbalanced braces. It blocks the build.
	ErrInvalidPattern = errors.New("invalid rename pattern")
	// ErrNoBoards is returned by operations that need at least one board.
	ErrNoBoards = errors.New("panel has no boards")
	// ErrNotFound is returned when a board, hole or tab does not exist.
	ErrNotFound = errors.New("not found")
)
