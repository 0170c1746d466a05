package main

import (
	"errors"
	"fmt"

	"github.com/frederic-klein/e3spec/internal/build"
	"github.com/frederic-klein/e3spec/internal/reconcile"
	"github.com/frederic-klein/e3spec/internal/spec"
)

// Exit statuses.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitValidation  = 2
	ExitOrdering    = 3
	ExitEnvironment = 4
	ExitAborted     = 5
)

// ExitError signals a non-zero exit code without calling os.Exit in RunE.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classify wraps err in an ExitError carrying the status for its kind.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var (
		exitErr     *ExitError
		orderingErr *build.OrderingError
		envErr      *reconcile.EnvironmentError
	)
	switch {
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, spec.ErrValidation):
		return &ExitError{Code: ExitValidation, Err: err}
	case errors.As(err, &orderingErr):
		return &ExitError{Code: ExitOrdering, Err: err}
	case errors.As(err, &envErr):
		return &ExitError{Code: ExitEnvironment, Err: err}
	case errors.Is(err, build.ErrAborted):
		return &ExitError{Code: ExitAborted, Err: err}
	default:
		return &ExitError{Code: ExitFailure, Err: err}
	}
}
