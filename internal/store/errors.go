package store

import (
	"errors"
	"fmt"
)

// Error kinds returned by store operations. Every returned error wraps exactly one of them.
var (
	// ErrValidation: bad input shape or range.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound: a referenced id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the requested transition does not fit the current state.
	ErrConflict = errors.New("conflict")
	// ErrStorage: the database failed; the in-flight transaction was rolled back.
	ErrStorage = errors.New("storage failure")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func conflictError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// storageError wraps a driver error so both errors.Is(err, ErrStorage) and the
// driver error itself stay reachable.
func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
