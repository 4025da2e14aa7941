package services

import "errors"

// Error taxonomy. Handlers map these to HTTP statuses: validation → 400,
// not found → 404, persistence → 500.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")
)
