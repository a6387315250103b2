package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the referenced build record does not exist.
	ErrNotFound = errors.New("build not found")
	// ErrTerminalState is returned when a guarded write targets a published build.
	ErrTerminalState = errors.New("build is in a terminal state")
)

// StoreError wraps a storage backend failure with the operation and the
// build it concerned.
type StoreError struct {
	Op      string
	BuildID string
	Err     error
}

func (e *StoreError) Error() string {
	if e.BuildID == "" {
		return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.BuildID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err denotes a missing build record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func wrap(op, buildID string, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return &StoreError{Op: op, BuildID: buildID, Err: err}
}
