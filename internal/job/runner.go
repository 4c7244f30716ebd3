// Package job processes accepted webhook jobs in the background and
// delivers their results to caller-provided callback URLs.
//
// Jobs live in memory only. A process crash loses queued and in-flight
// jobs; callers that need durability must resubmit when no callback
// arrives.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/mfeller/metagen-api/internal/config"
	"github.com/mfeller/metagen-api/internal/dispatch"
	"github.com/mfeller/metagen-api/internal/domain"
	"github.com/mfeller/metagen-api/internal/filecheck"
	"github.com/mfeller/metagen-api/internal/service"
)

// ErrQueueFull is returned by Submit when the job queue has no room.
// Callers surface it as a retry-later condition.
var ErrQueueFull = errors.New("job queue is full")

// Deliverer posts a terminal job payload to a callback URL.
type Deliverer interface {
	Deliver(ctx context.Context, url, requestID string, payload any) error
}

// Runner owns the webhook job queue and its worker pool. Workers pull
// jobs off the queue, process every referenced file under the per-file
// deadline, and hand the aggregated result to the deliverer.
type Runner struct {
	pipeline    service.MediaService
	downloader  *Downloader
	deliverer   Deliverer
	cfg         config.WebhookConfig
	concurrency int

	jobChan    chan *domain.WebhookJob
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewRunner creates a Runner. concurrency bounds simultaneous file
// processing within one job, mirroring the synchronous batch limit.
func NewRunner(
	pipeline service.MediaService,
	downloader *Downloader,
	deliverer Deliverer,
	cfg config.WebhookConfig,
	concurrency int,
	logger *slog.Logger,
) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		pipeline:    pipeline,
		downloader:  downloader,
		deliverer:   deliverer,
		cfg:         cfg,
		concurrency: concurrency,
		jobChan:     make(chan *domain.WebhookJob, cfg.QueueSize),
		ctx:         ctx,
		cancelFunc:  cancel,
		logger:      logger,
	}
}

// Submit enqueues an accepted job without blocking. When the queue is
// full the job is rejected with ErrQueueFull rather than queued
// unboundedly.
func (r *Runner) Submit(job *domain.WebhookJob) error {
	select {
	case r.jobChan <- job:
		r.logger.Info("job accepted",
			"job_id", job.ID,
			"file_count", len(job.Files),
			"queued", len(r.jobChan))
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	for i := 0; i < r.cfg.Workers; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
}

// Stop shuts the runner down, waiting for in-flight jobs to finish.
// Jobs still queued are dropped; their callbacks never fire.
func (r *Runner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	close(r.jobChan)
}

func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting job worker", "worker_id", id)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping job worker", "worker_id", id)
			return
		case job, ok := <-r.jobChan:
			if !ok {
				return
			}
			r.processJob(job, id)
		}
	}
}

// processJob runs one job end to end. The context is detached from the
// submitting request on purpose: accepting a job promises processing
// that outlives the HTTP exchange.
func (r *Runner) processJob(job *domain.WebhookJob, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"job_id", job.ID,
		"request_id", job.RequestID,
		"worker_id", workerID,
	)

	start := time.Now()
	if err := job.Transition(domain.JobStatusProcessing); err != nil {
		logger.Error("job in unexpected state, dropping", "status", job.Status, "error", err)
		return
	}
	logger.Info("processing job", "file_count", len(job.Files))

	requests := make([]domain.AnalysisRequest, len(job.Files))
	for i, ref := range job.Files {
		requests[i] = domain.AnalysisRequest{
			Index:    i,
			FileName: fileNameFromURL(ref.URL),
			Kind:     ref.Kind,
		}
	}

	d := dispatch.New(r.fileProcessor(job.Files), r.concurrency, logger)
	resp, err := d.Dispatch(ctx, requests)
	if err != nil {
		// Size bounds were checked at submission, so this is a bug, not
		// a caller error. Fail the job and still deliver the callback.
		logger.Error("job dispatch rejected", "error", err)
		_ = job.Transition(domain.JobStatusFailed)
		r.deliver(ctx, job, nil, &domain.BatchResponse{}, start)
		return
	}

	status := domain.TerminalStatusFor(resp.Successful, resp.Failed)
	if err := job.Transition(status); err != nil {
		logger.Error("failed to finalize job status", "status", status, "error", err)
		return
	}

	logger.Info("job finished",
		"status", status,
		"successful", resp.Successful,
		"failed", resp.Failed,
		"elapsed_ms", time.Since(start).Milliseconds())

	r.deliver(ctx, job, resp.Results, resp, start)
}

// fileProcessor adapts the shared media pipeline to one job's file
// references: each file is downloaded, then analyzed, all under a single
// per-file deadline.
func (r *Runner) fileProcessor(refs []domain.FileRef) dispatch.ProcessFunc {
	return func(ctx context.Context, req domain.AnalysisRequest) domain.FileResult {
		ref := refs[req.Index]

		slaCtx, cancel := context.WithTimeout(ctx, r.cfg.FileSLA)
		defer cancel()

		payload, declaredMIME, err := r.downloader.Fetch(slaCtx, ref.URL)
		if err != nil {
			if slaCtx.Err() != nil {
				return r.slaResult(req)
			}
			if errors.Is(err, ErrDownloadTooLarge) {
				return domain.ErrorResult(req, domain.ErrCodeValidation, err.Error())
			}
			return domain.ErrorResult(req, domain.ErrCodeDownload, err.Error())
		}

		req.Payload = payload
		req.MIMEType = declaredMIME
		if req.Kind != domain.FileKindImage && req.Kind != domain.FileKindAudio {
			req.Kind = filecheck.DetectKind(declaredMIME, payload)
		}

		result := r.pipeline.ProcessFile(slaCtx, req)
		if result.Status == domain.ResultStatusError && slaCtx.Err() != nil {
			// The pipeline failed because the deadline fired underneath
			// it; report the deadline, not the secondary symptom.
			return r.slaResult(req)
		}
		return result
	}
}

func (r *Runner) slaResult(req domain.AnalysisRequest) domain.FileResult {
	return domain.ErrorResult(req, domain.ErrCodeSLATimeout,
		fmt.Sprintf("processing %q exceeded the %s per-file deadline", req.FileName, r.cfg.FileSLA))
}

func (r *Runner) deliver(ctx context.Context, job *domain.WebhookJob, results []domain.FileResult, resp *domain.BatchResponse, start time.Time) {
	webhookResults := make([]domain.WebhookFileResult, len(results))
	for i, res := range results {
		ref := job.Files[res.Index]
		webhookResults[i] = domain.WebhookFileResult{
			ReferenceID: ref.ReferenceID,
			FileURL:     ref.URL,
			FileResult:  res,
		}
	}

	payload := domain.CallbackPayload{
		JobID:            job.ID.String(),
		Status:           job.Status,
		Results:          webhookResults,
		TotalFiles:       len(job.Files),
		Successful:       resp.Successful,
		Failed:           resp.Failed,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		CompletedAt:      time.Now().UTC(),
	}

	// Delivery is single-attempt and best-effort; the deliverer already
	// logged any failure.
	_ = r.deliverer.Deliver(ctx, job.CallbackURL, job.RequestID, payload)
}

// fileNameFromURL derives a display name for a remote file from the last
// path segment of its URL.
func fileNameFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Path == "" || u.Path == "/" {
		return raw
	}
	return path.Base(u.Path)
}
