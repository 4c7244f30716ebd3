// Package service contains the per-file processing pipeline shared by the
// synchronous batch endpoint and the asynchronous job runner.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mfeller/metagen-api/internal/analysis"
	"github.com/mfeller/metagen-api/internal/domain"
	"github.com/mfeller/metagen-api/internal/filecheck"
)

// MediaService runs one file through validation, AI analysis, and
// metadata assembly.
type MediaService interface {
	// AnalyzeImage validates an image payload and returns its full
	// metadata, including EXIF data extracted locally.
	AnalyzeImage(ctx context.Context, fileName, declaredMIME string, payload []byte) (*domain.ImageMetadata, error)

	// AnalyzeAudio validates an audio payload and returns its full
	// metadata, including the locally probed duration when available.
	AnalyzeAudio(ctx context.Context, fileName, declaredMIME string, payload []byte) (*domain.AudioMetadata, error)

	// ProcessFile routes a request to the matching pipeline and folds any
	// failure into an error result. It never returns an error: per-file
	// failures must stay contained to the file they belong to.
	ProcessFile(ctx context.Context, req domain.AnalysisRequest) domain.FileResult
}

type mediaServiceImpl struct {
	analyzer analysis.Analyzer
	logger   *slog.Logger
}

// NewMediaService creates the shared media pipeline.
func NewMediaService(analyzer analysis.Analyzer, logger *slog.Logger) (MediaService, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &mediaServiceImpl{analyzer: analyzer, logger: logger}, nil
}

func (s *mediaServiceImpl) AnalyzeImage(ctx context.Context, fileName, declaredMIME string, payload []byte) (*domain.ImageMetadata, error) {
	start := time.Now()

	if err := filecheck.ValidateImageSize(len(payload)); err != nil {
		return nil, err
	}
	mime, err := filecheck.ValidateImage(declaredMIME, payload)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.AnalyzeImage(ctx, payload, mime)
	if err != nil {
		return nil, fmt.Errorf("analyzing image %q: %w", fileName, err)
	}

	return &domain.ImageMetadata{
		FileName:         fileName,
		FileSize:         len(payload),
		MIMEType:         mime,
		Description:      result.Description,
		Keywords:         result.Keywords,
		Caption:          result.Caption,
		EXIF:             filecheck.ExtractEXIF(payload),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

func (s *mediaServiceImpl) AnalyzeAudio(ctx context.Context, fileName, declaredMIME string, payload []byte) (*domain.AudioMetadata, error) {
	start := time.Now()

	mime, duration, err := filecheck.ValidateAudio(declaredMIME, payload)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.AnalyzeAudio(ctx, payload, mime)
	if err != nil {
		return nil, fmt.Errorf("analyzing audio %q: %w", fileName, err)
	}

	return &domain.AudioMetadata{
		FileName:         fileName,
		FileSize:         len(payload),
		MIMEType:         mime,
		Description:      result.Description,
		Keywords:         result.Keywords,
		Summary:          result.Summary,
		DurationSeconds:  duration,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

func (s *mediaServiceImpl) ProcessFile(ctx context.Context, req domain.AnalysisRequest) domain.FileResult {
	switch req.Kind {
	case domain.FileKindImage:
		meta, err := s.AnalyzeImage(ctx, req.FileName, req.MIMEType, req.Payload)
		if err != nil {
			s.logFailure(ctx, req, err)
			return domain.ErrorResult(req, ClassifyError(err), err.Error())
		}
		return domain.SuccessResult(req, meta, nil)

	case domain.FileKindAudio:
		meta, err := s.AnalyzeAudio(ctx, req.FileName, req.MIMEType, req.Payload)
		if err != nil {
			s.logFailure(ctx, req, err)
			return domain.ErrorResult(req, ClassifyError(err), err.Error())
		}
		return domain.SuccessResult(req, nil, meta)
	}

	return domain.ErrorResult(req, domain.ErrCodeUnsupportedType,
		fmt.Sprintf("file %q is neither a supported image nor a supported audio type", req.FileName))
}

func (s *mediaServiceImpl) logFailure(ctx context.Context, req domain.AnalysisRequest, err error) {
	s.logger.WarnContext(ctx, "file processing failed",
		"file_name", req.FileName,
		"file_index", req.Index,
		"file_kind", req.Kind,
		"error_code", ClassifyError(err),
		"error", err)
}

// ClassifyError maps a pipeline error to its stable error code. Handlers
// use the same mapping to pick HTTP status codes, so a given failure
// always surfaces under one code regardless of the entry point.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, filecheck.ErrUnsupportedImageType),
		errors.Is(err, filecheck.ErrUnsupportedAudioType),
		errors.Is(err, domain.ErrUnsupportedFileKind):
		return domain.ErrCodeUnsupportedType
	case errors.Is(err, filecheck.ErrImageTooLarge),
		errors.Is(err, filecheck.ErrAudioTooLong):
		return domain.ErrCodeValidation
	case errors.Is(err, analysis.ErrInvalidConfig):
		return domain.ErrCodeMissingConfig
	case errors.Is(err, analysis.ErrTransient):
		return domain.ErrCodeMaxRetriesExceeded
	case errors.Is(err, analysis.ErrInvalidResponse):
		// The analyzer embeds the narrower code for empty upstream replies.
		if strings.Contains(err.Error(), domain.ErrCodeEmptyResult) {
			return domain.ErrCodeEmptyResult
		}
		return domain.ErrCodeInvalidResponse
	case errors.Is(err, analysis.ErrService):
		return domain.ErrCodeUpstream
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrCodeSLATimeout
	}
	return domain.ErrCodeInternal
}
