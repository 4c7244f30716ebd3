package api

// Common request/response structures

// FileRefRequest is one remotely hosted file in a webhook submission.
type FileRefRequest struct {
	URL         string `json:"url"          validate:"required,url"`
	FileType    string `json:"file_type"    validate:"omitempty,oneof=image audio"`
	ReferenceID string `json:"reference_id" validate:"omitempty,max=256"`
}

// WebhookAnalyzeRequest defines the payload for the asynchronous
// analysis endpoint.
type WebhookAnalyzeRequest struct {
	Files       []FileRefRequest `json:"files"        validate:"required,min=1,max=20,dive"`
	CallbackURL string           `json:"callback_url" validate:"required,url"`
	RequestID   string           `json:"request_id"   validate:"omitempty,max=256"`
}

// WebhookAcceptedResponse acknowledges an accepted job. Results arrive
// later at the callback URL; the job ID correlates the two.
type WebhookAcceptedResponse struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	TotalFiles int    `json:"total_files"`
}

// HealthResponse reports process liveness or readiness.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds,omitempty"`
}
