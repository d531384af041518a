package domain

import "errors"

var (
	// ErrValidation marks entries rejected before they reach storage.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks lookups that matched no routing log entry.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks failures coming from the persistence layer.
	ErrStorage = errors.New("storage error")
)
