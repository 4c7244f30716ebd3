package analysis

import (
	"context"
	"fmt"

	"github.com/mfeller/metagen-api/internal/domain"
)

// Unconfigured returns an Analyzer for use when no upstream credentials
// are available. Every call fails with ErrInvalidConfig so requests
// surface the missing configuration instead of the process refusing to
// start.
func Unconfigured() Analyzer {
	return unconfiguredAnalyzer{}
}

type unconfiguredAnalyzer struct{}

func (unconfiguredAnalyzer) AnalyzeImage(context.Context, []byte, string) (*domain.ImageAnalysis, error) {
	return nil, fmt.Errorf("%w: gemini API key is not configured", ErrInvalidConfig)
}

func (unconfiguredAnalyzer) AnalyzeAudio(context.Context, []byte, string) (*domain.AudioAnalysis, error) {
	return nil, fmt.Errorf("%w: gemini API key is not configured", ErrInvalidConfig)
}
