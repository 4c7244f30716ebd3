package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mfeller/metagen-api/internal/api/shared"
	"github.com/mfeller/metagen-api/internal/dispatch"
	"github.com/mfeller/metagen-api/internal/domain"
	"github.com/mfeller/metagen-api/internal/service"
)

// MediaHandler serves the synchronous analysis endpoints.
type MediaHandler struct {
	media      service.MediaService
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(media service.MediaService, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *MediaHandler {
	return &MediaHandler{
		media:      media,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// AnalyzeBatch handles POST /api/v1/analyze requests. The whole batch is
// validated up front; afterwards individual failures are embedded in a
// 200 response so one bad file never voids its siblings' results.
func (h *MediaHandler) AnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	requests, err := parseBatchFiles(r)
	if err != nil {
		h.respondBatchParseError(w, r, err)
		return
	}

	resp, err := h.dispatcher.Dispatch(r.Context(), requests)
	if err != nil {
		// Bounds were already checked during parsing, so any error here
		// is unexpected.
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			domain.ErrCodeInternal, "Failed to process batch", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// AnalyzeImage handles POST /api/v1/analyze/image requests.
func (h *MediaHandler) AnalyzeImage(w http.ResponseWriter, r *http.Request) {
	name, declaredMIME, payload, err := parseSingleFile(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			domain.ErrCodeValidation, "Invalid multipart request", err)
		return
	}

	meta, err := h.media.AnalyzeImage(r.Context(), name, declaredMIME, payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			service.ClassifyError(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, meta)
}

// AnalyzeAudio handles POST /api/v1/analyze/audio requests.
func (h *MediaHandler) AnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	name, declaredMIME, payload, err := parseSingleFile(r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			domain.ErrCodeValidation, "Invalid multipart request", err)
		return
	}

	meta, err := h.media.AnalyzeAudio(r.Context(), name, declaredMIME, payload)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err),
			service.ClassifyError(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, meta)
}

func (h *MediaHandler) respondBatchParseError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyBatch):
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity,
			domain.ErrCodeValidation, "At least one file is required")
	case errors.Is(err, domain.ErrBatchTooLarge):
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity,
			domain.ErrCodeValidation, err.Error())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest,
			domain.ErrCodeValidation, "Invalid multipart request", err)
	}
}
