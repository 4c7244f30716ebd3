package api

import (
	"errors"
	"net/http"

	"github.com/mfeller/metagen-api/internal/api/shared"
	"github.com/mfeller/metagen-api/internal/domain"
	"github.com/mfeller/metagen-api/internal/job"
)

// JobSubmitter accepts jobs for background processing.
type JobSubmitter interface {
	Submit(j *domain.WebhookJob) error
}

// WebhookHandler serves the asynchronous analysis endpoint.
type WebhookHandler struct {
	runner JobSubmitter
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(runner JobSubmitter) *WebhookHandler {
	return &WebhookHandler{runner: runner}
}

// Submit handles POST /api/v1/webhook/analyze requests. A 202 response
// promises only that the job was queued; results arrive at the callback
// URL once processing finishes.
func (h *WebhookHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req WebhookAnalyzeRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			domain.ErrCodeValidation, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity,
			domain.ErrCodeValidation, "Validation error: "+err.Error())
		return
	}

	files := make([]domain.FileRef, len(req.Files))
	for i, f := range req.Files {
		files[i] = domain.FileRef{
			URL:         f.URL,
			Kind:        fileKindFrom(f.FileType),
			ReferenceID: f.ReferenceID,
		}
	}

	// The caller's own correlation value wins; fall back to the trace ID
	// so the callback always carries some request identifier.
	requestID := req.RequestID
	if requestID == "" {
		requestID = shared.GetTraceID(r.Context())
	}

	j, err := domain.NewWebhookJob(files, req.CallbackURL, requestID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusUnprocessableEntity,
			domain.ErrCodeValidation, err.Error())
		return
	}

	if err := h.runner.Submit(j); err != nil {
		if errors.Is(err, job.ErrQueueFull) {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable,
				domain.ErrCodeInternal, "Job queue is full, retry later", err)
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			domain.ErrCodeInternal, "Failed to accept job", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, WebhookAcceptedResponse{
		JobID:      j.ID.String(),
		Status:     string(j.Status),
		TotalFiles: len(j.Files),
	})
}

// fileKindFrom maps the declared file type to its kind. An empty value
// defers classification until the file is downloaded.
func fileKindFrom(declared string) domain.FileKind {
	switch declared {
	case "image":
		return domain.FileKindImage
	case "audio":
		return domain.FileKindAudio
	}
	return domain.FileKindUnknown
}
