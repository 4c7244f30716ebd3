package job

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrDownloadTooLarge is returned when a remote file exceeds the
// configured size cap.
var ErrDownloadTooLarge = errors.New("remote file exceeds maximum download size")

// Downloader fetches remotely hosted files for webhook jobs. Every fetch
// is bounded both in time and in bytes read.
type Downloader struct {
	client  *http.Client
	maxSize int64
}

// NewDownloader creates a Downloader with the given per-fetch timeout and
// size cap.
func NewDownloader(timeout time.Duration, maxSize int64) *Downloader {
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		maxSize: maxSize,
	}
}

// Fetch downloads the file at url and returns its bytes and the MIME type
// the server declared, which may be empty.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("building download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("downloading %s: server returned status %d", url, resp.StatusCode)
	}
	if resp.ContentLength > d.maxSize {
		return nil, "", fmt.Errorf("%w: %d bytes (maximum %d)", ErrDownloadTooLarge, resp.ContentLength, d.maxSize)
	}

	// Read one byte past the cap so undeclared-length responses that
	// exceed it are still caught.
	payload, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", url, err)
	}
	if int64(len(payload)) > d.maxSize {
		return nil, "", fmt.Errorf("%w: maximum %d bytes", ErrDownloadTooLarge, d.maxSize)
	}

	return payload, resp.Header.Get("Content-Type"), nil
}
