package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert is rejected by a dedupe-key
	// uniqueness constraint. Callers treat it as "operation already
	// completed", never as a failure.
	ErrDuplicate = errors.New("duplicate: operation already applied")

	// ErrConflict is returned when an optimistic concurrency check fails
	ErrConflict = errors.New("conflict: entity was modified by another writer")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)
