package library

import "errors"

var (
	// ErrNotFound indicates the requested entity doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation, including an id
	// already claimed by another kind in the shared namespace.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a foreign key or check constraint violation.
	ErrConstraint = errors.New("constraint violation")

	// ErrInvalidTransition indicates a disallowed upload status change.
	ErrInvalidTransition = errors.New("invalid upload status transition")
)
