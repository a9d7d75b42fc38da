package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a shape definition is not found.
	ErrNotFound = errors.New("shape definition not found")
)
