package domain

// FileKind classifies a file for analysis routing.
type FileKind string

// Supported file kinds.
const (
	FileKindImage   FileKind = "image"
	FileKindAudio   FileKind = "audio"
	FileKindUnknown FileKind = "unknown"
)

// AnalysisRequest is one file queued for analysis. It is immutable once
// created and owned exclusively by the dispatch call processing it.
type AnalysisRequest struct {
	// Index is the position of the file in the originating batch. It is
	// carried through the pipeline so results can be re-ordered into
	// input order regardless of completion order.
	Index    int
	FileName string
	Payload  []byte
	MIMEType string
	Kind     FileKind
}

// ImageAnalysis is the normalized AI result for an image. All fields are
// plain strings; upstream value-wrapper shapes never leave the analyzer.
type ImageAnalysis struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Caption     string   `json:"caption"`
}

// AudioAnalysis is the normalized AI result for an audio file.
type AudioAnalysis struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Summary     string   `json:"summary"`
}

// Analysis error codes carried in AnalysisError.Code.
const (
	ErrCodeMissingConfig      = "MISSING_CONFIG"
	ErrCodeMaxRetriesExceeded = "MAX_RETRIES_EXCEEDED"
	ErrCodeEmptyResult        = "EMPTY_RESULT"
	ErrCodeInvalidResponse    = "INVALID_RESPONSE"
	ErrCodeUnsupportedType    = "UNSUPPORTED_TYPE"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeDownload           = "DOWNLOAD_ERROR"
	ErrCodeSLATimeout         = "SLA_TIMEOUT"
	ErrCodeUpstream           = "UPSTREAM_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// AnalysisError is the structured, user-visible form of a per-file
// failure. Code is machine-readable; Message is human-readable.
type AnalysisError struct {
	Code    string `json:"error_code"`
	Message string `json:"detail"`
}

// ImageMetadata is the complete per-file result for an image, combining
// the AI analysis with file facts and EXIF data.
type ImageMetadata struct {
	FileName         string         `json:"file_name"`
	FileSize         int            `json:"file_size"`
	MIMEType         string         `json:"mime_type"`
	Description      string         `json:"description"`
	Keywords         []string       `json:"keywords"`
	Caption          string         `json:"caption"`
	EXIF             map[string]any `json:"exif"`
	ProcessingTimeMS int64          `json:"processing_time_ms"`
}

// AudioMetadata is the complete per-file result for an audio file.
// DurationSeconds is nil when the duration could not be determined.
type AudioMetadata struct {
	FileName         string   `json:"file_name"`
	FileSize         int      `json:"file_size"`
	MIMEType         string   `json:"mime_type"`
	Description      string   `json:"description"`
	Keywords         []string `json:"keywords"`
	Summary          string   `json:"summary"`
	DurationSeconds  *float64 `json:"duration_seconds"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
}
