package api

import (
	"errors"
	"net/http"

	"github.com/mfeller/metagen-api/internal/analysis"
	"github.com/mfeller/metagen-api/internal/domain"
	"github.com/mfeller/metagen-api/internal/filecheck"
)

// MapErrorToStatusCode maps pipeline errors to HTTP status codes for the
// single-file endpoints. Batch endpoints never use it: there a per-file
// failure is embedded in a 200 response instead.
func MapErrorToStatusCode(err error) int {
	switch {
	// Payload too large gets its dedicated status code.
	case errors.Is(err, filecheck.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge

	// Unprocessable content: the request was well-formed but the file
	// cannot be analyzed.
	case errors.Is(err, filecheck.ErrUnsupportedImageType),
		errors.Is(err, filecheck.ErrUnsupportedAudioType),
		errors.Is(err, filecheck.ErrAudioTooLong),
		errors.Is(err, domain.ErrUnsupportedFileKind),
		errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrBatchTooLarge):
		return http.StatusUnprocessableEntity

	// Upstream trouble is a gateway problem from the caller's view.
	case errors.Is(err, analysis.ErrTransient),
		errors.Is(err, analysis.ErrService),
		errors.Is(err, analysis.ErrInvalidResponse):
		return http.StatusBadGateway

	// Misconfiguration is ours alone.
	case errors.Is(err, analysis.ErrInvalidConfig):
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// GetSafeErrorMessage returns a user-facing message for err. Validation
// errors carry actionable detail; everything else is sanitized so
// internal specifics never leak to clients.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, filecheck.ErrImageTooLarge),
		errors.Is(err, filecheck.ErrUnsupportedImageType),
		errors.Is(err, filecheck.ErrUnsupportedAudioType),
		errors.Is(err, filecheck.ErrAudioTooLong),
		errors.Is(err, domain.ErrEmptyBatch),
		errors.Is(err, domain.ErrBatchTooLarge):
		return err.Error()
	case errors.Is(err, analysis.ErrTransient):
		return "The analysis service is temporarily overloaded, please retry later"
	case errors.Is(err, analysis.ErrService),
		errors.Is(err, analysis.ErrInvalidResponse):
		return "The analysis service returned an unusable response"
	case errors.Is(err, analysis.ErrInvalidConfig):
		return "The analysis service is not configured"
	}
	return "An unexpected error occurred"
}
