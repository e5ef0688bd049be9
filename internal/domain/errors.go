package domain

import "errors"

// Domain errors represent error conditions in the recbatch domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidPolicy is returned when a policy limit is not positive.
	ErrInvalidPolicy = errors.New("recbatch: invalid policy")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("recbatch: invalid configuration")
)
