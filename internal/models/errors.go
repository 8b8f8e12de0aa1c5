package models

import "errors"

// Error kinds surfaced to the CLI. None are recovered or retried internally;
// retry is the caller's responsibility.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrBackendUnavailable   = errors.New("backend unavailable")
	ErrEmptyIndex           = errors.New("index is empty")
	ErrGenerationFailed     = errors.New("generation failed")
)
