package domain

// ResultStatus marks a FileResult as success or error.
type ResultStatus string

// Possible per-file result statuses.
const (
	ResultStatusSuccess ResultStatus = "success"
	ResultStatusError   ResultStatus = "error"
)

// FileResult is the outcome for a single file in a batch. Exactly one of
// the metadata fields or Error is set, matching Status. Index always
// equals the originating AnalysisRequest.Index.
type FileResult struct {
	FileName string         `json:"file_name"`
	Index    int            `json:"file_index"`
	Status   ResultStatus   `json:"status"`
	Kind     FileKind       `json:"file_type"`
	Image    *ImageMetadata `json:"metadata,omitempty"`
	Audio    *AudioMetadata `json:"audio_metadata,omitempty"`
	Error    *AnalysisError `json:"error,omitempty"`
}

// SuccessResult builds a success FileResult for an image or audio file.
// Exactly one of image/audio must be non-nil.
func SuccessResult(req AnalysisRequest, image *ImageMetadata, audio *AudioMetadata) FileResult {
	return FileResult{
		FileName: req.FileName,
		Index:    req.Index,
		Status:   ResultStatusSuccess,
		Kind:     req.Kind,
		Image:    image,
		Audio:    audio,
	}
}

// ErrorResult builds an error FileResult carrying the given code and message.
func ErrorResult(req AnalysisRequest, code, message string) FileResult {
	return FileResult{
		FileName: req.FileName,
		Index:    req.Index,
		Status:   ResultStatusError,
		Kind:     req.Kind,
		Error:    &AnalysisError{Code: code, Message: message},
	}
}

// BatchResponse aggregates the ordered results of one dispatch call.
type BatchResponse struct {
	Results               []FileResult `json:"results"`
	TotalFiles            int          `json:"total_files"`
	Successful            int          `json:"successful"`
	Failed                int          `json:"failed"`
	TotalProcessingTimeMS int64        `json:"total_processing_time_ms"`
}

// NewBatchResponse derives the aggregate counts from the result slice.
// Successful and Failed are never tracked independently; computing them
// here keeps them free of concurrent-increment races by construction.
func NewBatchResponse(results []FileResult, elapsedMS int64) *BatchResponse {
	successful := 0
	for _, r := range results {
		if r.Status == ResultStatusSuccess {
			successful++
		}
	}
	return &BatchResponse{
		Results:               results,
		TotalFiles:            len(results),
		Successful:            successful,
		Failed:                len(results) - successful,
		TotalProcessingTimeMS: elapsedMS,
	}
}
