package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the processing state of a webhook job.
type JobStatus string

// Possible job status values. Transitions are monotonic:
// accepted -> processing -> one of the terminal states.
const (
	JobStatusAccepted   JobStatus = "accepted"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusPartial    JobStatus = "partial"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusPartial, JobStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is legal.
// No state is ever revisited.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusAccepted:
		return next == JobStatusProcessing
	case JobStatusProcessing:
		return next.Terminal()
	}
	return false
}

// FileRef points at a remotely hosted file to be downloaded and analyzed.
type FileRef struct {
	URL         string   `json:"url"`
	Kind        FileKind `json:"file_type"`
	ReferenceID string   `json:"reference_id,omitempty"`
}

// WebhookJob is one accepted asynchronous analysis request. It is created
// on submission, mutated only by the job runner, and discarded after the
// callback delivery attempt. There is no persistence: a process crash
// mid-job loses the job.
type WebhookJob struct {
	ID          uuid.UUID
	Files       []FileRef
	CallbackURL string
	RequestID   string
	Status      JobStatus
	CreatedAt   time.Time
}

// NewWebhookJob creates an accepted job for the given file references.
func NewWebhookJob(files []FileRef, callbackURL, requestID string) (*WebhookJob, error) {
	if len(files) == 0 {
		return nil, ErrNoJobFiles
	}
	if callbackURL == "" {
		return nil, ErrEmptyCallbackURL
	}
	return &WebhookJob{
		ID:          uuid.New(),
		Files:       files,
		CallbackURL: callbackURL,
		RequestID:   requestID,
		Status:      JobStatusAccepted,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// Transition moves the job to the next status, enforcing monotonicity.
func (j *WebhookJob) Transition(next JobStatus) error {
	if !j.Status.CanTransition(next) {
		return ErrInvalidTransition
	}
	j.Status = next
	return nil
}

// WebhookFileResult is a FileResult enriched with the originating file
// reference, as delivered in the callback payload.
type WebhookFileResult struct {
	ReferenceID string `json:"reference_id,omitempty"`
	FileURL     string `json:"file_url"`
	FileResult
}

// CallbackPayload is the body POSTed to the caller's callback URL once a
// job reaches a terminal state.
type CallbackPayload struct {
	JobID            string              `json:"job_id"`
	Status           JobStatus           `json:"status"`
	Results          []WebhookFileResult `json:"results"`
	TotalFiles       int                 `json:"total_files"`
	Successful       int                 `json:"successful"`
	Failed           int                 `json:"failed"`
	ProcessingTimeMS int64               `json:"processing_time_ms"`
	CompletedAt      time.Time           `json:"completed_at"`
}

// TerminalStatusFor derives the job's end state from its results:
// all success -> completed, mixed -> partial, all error -> failed.
func TerminalStatusFor(successful, failed int) JobStatus {
	switch {
	case failed == 0:
		return JobStatusCompleted
	case successful == 0:
		return JobStatusFailed
	}
	return JobStatusPartial
}
