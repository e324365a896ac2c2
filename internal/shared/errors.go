package shared

import "errors"

var (
	// ErrNotFound indicates the requested entity is absent from the store.
	ErrNotFound = errors.New("not found")
	// ErrForbidden covers both ownership and state-precondition violations.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated indicates the caller identity could not be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrConflict indicates a duplicate creation.
	ErrConflict = errors.New("conflict")
)
