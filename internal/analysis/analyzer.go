package analysis

import (
	"context"

	"github.com/mfeller/metagen-api/internal/domain"
)

// Analyzer extracts structured metadata from a single media file by
// calling the upstream AI service. Implementations classify and retry
// transient upstream failures internally; callers see either a normalized
// result or one of the sentinel errors from errors.go.
type Analyzer interface {
	// AnalyzeImage analyzes one image and returns normalized metadata.
	AnalyzeImage(ctx context.Context, payload []byte, mimeType string) (*domain.ImageAnalysis, error)

	// AnalyzeAudio analyzes one audio file and returns normalized metadata.
	AnalyzeAudio(ctx context.Context, payload []byte, mimeType string) (*domain.AudioAnalysis, error)
}
