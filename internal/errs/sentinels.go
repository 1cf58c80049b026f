// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across storage/repository/service layers.
var (
	// ErrNotFound indicates the requested key or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a creation intent is missing required fields.
	ErrValidation = errors.New("validation")

	// ErrUnsupportedBackend indicates an unknown storage backend name in config.
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)
