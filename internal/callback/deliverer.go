// Package callback delivers terminal job results to caller-provided URLs.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds a delivery attempt when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// correlationHeader carries the originating request ID so the receiver
// can match the callback to its submission.
const correlationHeader = "X-Correlation-ID"

// Deliverer POSTs callback payloads. Delivery is strictly best-effort:
// exactly one attempt per job, failures are logged and swallowed, and a
// non-2xx response is treated the same as a transport error. Receivers
// that need reliable delivery must poll or resubmit on their side.
type Deliverer struct {
	client *http.Client
	logger *slog.Logger
}

// NewDeliverer creates a Deliverer whose attempts are bounded by timeout.
func NewDeliverer(timeout time.Duration, logger *slog.Logger) *Deliverer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Deliverer{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Deliver POSTs payload as JSON to url, once. The returned error is
// informational only; callers are expected to discard it.
func (d *Deliverer) Deliver(ctx context.Context, url, requestID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to encode callback payload",
			"callback_url", url,
			"error", err)
		return fmt.Errorf("encoding callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		d.logger.ErrorContext(ctx, "failed to build callback request",
			"callback_url", url,
			"error", err)
		return fmt.Errorf("building callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(correlationHeader, requestID)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.WarnContext(ctx, "callback delivery failed",
			"callback_url", url,
			"error", err)
		return fmt.Errorf("delivering callback: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.logger.WarnContext(ctx, "callback rejected by receiver",
			"callback_url", url,
			"status", resp.StatusCode)
		return fmt.Errorf("callback receiver returned status %d", resp.StatusCode)
	}

	d.logger.InfoContext(ctx, "callback delivered",
		"callback_url", url,
		"status", resp.StatusCode)
	return nil
}
