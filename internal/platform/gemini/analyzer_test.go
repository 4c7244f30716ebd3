package gemini

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/mfeller/metagen-api/internal/analysis"
	"github.com/mfeller/metagen-api/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testConfig() config.AnalyzerConfig {
	return config.AnalyzerConfig{
		GeminiAPIKey: "test-key",
		ModelName:    "gemini-2.5-flash",
		MaxAttempts:  3,
		RetryDelay:   time.Second,
	}
}

// recordingSleeper records requested delays without actually sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

// textResponse builds an upstream response carrying the given text part.
func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

const imageJSON = `{"description":"Ein Sonnenuntergang am Meer","keywords":["Sonnenuntergang","Meer","Abendrot"],"caption":"Sonnenuntergang am Meer"}`

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AnalyzerConfig
	}{
		{"missing api key", config.AnalyzerConfig{ModelName: "m"}},
		{"missing model name", config.AnalyzerConfig{GeminiAPIKey: "k"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(testLogger(), tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, analysis.ErrInvalidConfig)
		})
	}
}

func TestNewRejectsNilLogger(t *testing.T) {
	_, err := New(nil, testConfig())
	require.Error(t, err)
}

func TestAnalyzeImageSuccess(t *testing.T) {
	calls := 0
	a, err := New(testLogger(), testConfig(),
		WithSleeper(&recordingSleeper{}),
		WithGenerateFunc(func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			calls++
			return textResponse(imageJSON), nil
		}))
	require.NoError(t, err)

	result, err := a.AnalyzeImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "Ein Sonnenuntergang am Meer", result.Description)
	assert.Equal(t, []string{"Sonnenuntergang", "Meer", "Abendrot"}, result.Keywords)
	assert.Equal(t, "Sonnenuntergang am Meer", result.Caption)
}

func TestAnalyzeImageRetriesTransientThenSucceeds(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	a, err := New(testLogger(), testConfig(),
		WithSleeper(sleeper),
		WithGenerateFunc(func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			calls++
			if calls <= 2 {
				return nil, genai.APIError{Code: 429, Message: "rate limited"}
			}
			return textResponse(imageJSON), nil
		}))
	require.NoError(t, err)

	result, err := a.AnalyzeImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	require.NoError(t, err)
	assert.NotNil(t, result)
	// Two failures mean exactly two backoff sleeps: 1s then 2s.
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays)
}

func TestAnalyzeImageExhaustsRetries(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	a, err := New(testLogger(), testConfig(),
		WithSleeper(sleeper),
		WithGenerateFunc(func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, genai.APIError{Code: 503, Message: "temporarily unavailable"}
		}))
	require.NoError(t, err)

	_, err = a.AnalyzeImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrTransient)
	// Exactly 3 attempts, no 4th; sleeps only between attempts.
	assert.Equal(t, 3, calls)
	assert.Len(t, sleeper.delays, 2)
}

func TestAnalyzeImageFatalErrorNotRetried(t *testing.T) {
	calls := 0
	a, err := New(testLogger(), testConfig(),
		WithSleeper(&recordingSleeper{}),
		WithGenerateFunc(func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, genai.APIError{Code: 400, Message: "bad request"}
		}))
	require.NoError(t, err)

	_, err = a.AnalyzeImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrService)
	assert.Equal(t, 1, calls)
}

func TestAnalyzeImageEmptyResponse(t *testing.T) {
	a, err := New(testLogger(), testConfig(),
		WithGenerateFunc(func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			return &genai.GenerateContentResponse{}, nil
		}))
	require.NoError(t, err)

	_, err = a.AnalyzeImage(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrInvalidResponse)
}

func TestAnalyzeAudioSuccess(t *testing.T) {
	audioJSON := `{"description":"Ein Interview ueber Stadtplanung","keywords":["Interview","Stadtplanung"],"summary":"Ein Gespraech ueber Stadtplanung. Es folgen Details."}`
	a, err := New(testLogger(), testConfig(),
		WithGenerateFunc(func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			return textResponse(audioJSON), nil
		}))
	require.NoError(t, err)

	result, err := a.AnalyzeAudio(context.Background(), []byte("RIFF"), "audio/wav")

	require.NoError(t, err)
	assert.Equal(t, "Ein Interview ueber Stadtplanung", result.Description)
	// Summary is truncated to its first sentence.
	assert.Equal(t, "Ein Gespraech ueber Stadtplanung.", result.Summary)
}

func TestAnalyzeCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a, err := New(testLogger(), testConfig(),
		WithGenerateFunc(func(ctx context.Context, model string, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
			cancel()
			return nil, genai.APIError{Code: 429, Message: "rate limited"}
		}))
	require.NoError(t, err)

	start := time.Now()
	_, err = a.AnalyzeImage(ctx, []byte{0xFF, 0xD8}, "image/jpeg")

	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrTransient)
	assert.Less(t, time.Since(start), time.Second)
}
