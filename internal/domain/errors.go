package domain

import "errors"

// Error kinds returned by the store and service layers. Callers match them with errors.Is.
var (
	// ErrNotFound reports that a row required by the operation does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports a uniqueness or foreign-key violation on write.
	ErrConflict = errors.New("conflict")
	// ErrInvalidArgument reports missing or invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStorage reports a connectivity or query execution failure.
	ErrStorage = errors.New("storage error")
)
