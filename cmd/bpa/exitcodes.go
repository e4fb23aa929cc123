package main

import (
	"errors"

	"github.com/matsen/blueprint/internal/blueprint"
	"github.com/matsen/blueprint/internal/instrument"
	"github.com/matsen/blueprint/internal/structure"
)

const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (bad config file, no workspace)
	ExitDataError   = 3 // Data error (malformed blueprint or input file)
	ExitNotFound    = 4 // Root entry node or requested node not found
)

// codedError carries an explicit exit code.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

// withCode attaches an exit code to err.
func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

// exitCodeFor maps an error returned by a command to its exit code.
func exitCodeFor(err error) int {
	var ce *codedError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ce):
		return ce.code
	case errors.Is(err, blueprint.ErrMalformed), errors.Is(err, instrument.ErrNoEventColumn):
		return ExitDataError
	case errors.Is(err, structure.ErrRootNotFound):
		return ExitNotFound
	default:
		return ExitError
	}
}
