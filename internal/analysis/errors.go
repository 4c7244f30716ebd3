package analysis

import "errors"

// Common errors returned by Analyzer implementations.
var (
	// ErrInvalidConfig is returned when the analyzer configuration is
	// invalid. Checked once at construction, never retried.
	ErrInvalidConfig = errors.New("invalid analyzer configuration")

	// ErrTransient is returned when a known-recoverable upstream
	// condition (rate limited, temporarily unavailable) persists after
	// all retry attempts are exhausted.
	ErrTransient = errors.New("transient analysis failure")

	// ErrService is returned for any other upstream failure. Not retried.
	ErrService = errors.New("analysis service error")

	// ErrInvalidResponse is returned when the upstream result is empty
	// or cannot be parsed. Not retried.
	ErrInvalidResponse = errors.New("invalid response from analysis service")
)
