package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrUnsupportedFileKind is returned when a file is neither a
	// supported image nor a supported audio type.
	ErrUnsupportedFileKind = errors.New("unsupported file kind")

	// ErrEmptyBatch is returned when a batch contains no files.
	ErrEmptyBatch = errors.New("batch contains no files")

	// ErrBatchTooLarge is returned when a batch exceeds MaxBatchFiles.
	ErrBatchTooLarge = errors.New("batch exceeds maximum file count")

	// ErrInvalidTransition is returned when a job status change would
	// violate the accepted -> processing -> terminal state machine.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrEmptyCallbackURL is returned when a webhook job has no callback URL.
	ErrEmptyCallbackURL = errors.New("callback URL cannot be empty")

	// ErrNoJobFiles is returned when a webhook job has no file references.
	ErrNoJobFiles = errors.New("job must reference at least one file")
)

// MaxBatchFiles is the upper bound on files per batch request. Requests
// exceeding it are rejected before any upstream call.
const MaxBatchFiles = 20
