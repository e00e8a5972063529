package track

import (
	"errors"
	"fmt"
)

// ErrBorrowConflict is returned when a borrow overlaps an outstanding
// borrow that it is not compatible with. It signals a programming error:
// the operation is aborted and must not be retried blindly.
var ErrBorrowConflict = errors.New("track: borrow conflict")

// ConflictError describes a failed borrow.
type ConflictError struct {
	// Path is the level at which the conflict was detected.
	Path Path

	// Requested is the access mode that was refused.
	Requested Mode

	// State is the access state held at Path when the request was made
	// (for example "exclusive" or "shared-2").
	State string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("track: borrow conflict at %s: %s access requested while %s",
		e.Path, e.Requested, e.State)
}

// Unwrap returns ErrBorrowConflict for errors.Is support.
func (e *ConflictError) Unwrap() error {
	return ErrBorrowConflict
}

// ErrInvalidPath is returned by ParsePath for malformed input.
var ErrInvalidPath = errors.New("track: invalid path")
