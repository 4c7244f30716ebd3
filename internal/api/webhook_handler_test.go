package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeller/metagen-api/internal/api/shared"
	"github.com/mfeller/metagen-api/internal/domain"
	"github.com/mfeller/metagen-api/internal/job"
)

type fakeSubmitter struct {
	submitted []*domain.WebhookJob
	err       error
}

func (f *fakeSubmitter) Submit(j *domain.WebhookJob) error {
	if f.err != nil {
		return f.err
	}
	f.submitted = append(f.submitted, j)
	return nil
}

func postWebhook(h *WebhookHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Submit(rec, req)
	return rec
}

func TestWebhookSubmit_AcceptsValidJob(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	h := NewWebhookHandler(submitter)

	rec := postWebhook(h, `{
		"files": [
			{"url": "https://cdn.example.com/a.jpg", "file_type": "image", "reference_id": "ref-a"},
			{"url": "https://cdn.example.com/b.mp3", "file_type": "audio"}
		],
		"callback_url": "https://example.com/hooks/metagen"
	}`)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp WebhookAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, 2, resp.TotalFiles)
	_, err := uuid.Parse(resp.JobID)
	assert.NoError(t, err, "job_id must be a UUID")

	require.Len(t, submitter.submitted, 1)
	j := submitter.submitted[0]
	assert.Equal(t, domain.FileKindImage, j.Files[0].Kind)
	assert.Equal(t, "ref-a", j.Files[0].ReferenceID)
	assert.Equal(t, domain.FileKindAudio, j.Files[1].Kind)
	assert.Equal(t, "https://example.com/hooks/metagen", j.CallbackURL)
}

func TestWebhookSubmit_CallerRequestIDReachesJob(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	h := NewWebhookHandler(submitter)

	rec := postWebhook(h, `{
		"files": [{"url": "https://example.com/a.jpg", "file_type": "image"}],
		"callback_url": "https://example.com/cb",
		"request_id": "caller-req-42"
	}`)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, "caller-req-42", submitter.submitted[0].RequestID)
}

func TestWebhookSubmit_MissingRequestIDFallsBackToTraceID(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	h := NewWebhookHandler(submitter)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/analyze", strings.NewReader(`{
		"files": [{"url": "https://example.com/a.jpg"}],
		"callback_url": "https://example.com/cb"
	}`))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(shared.WithTraceID(req.Context(), "trace-abc"))
	rec := httptest.NewRecorder()
	h.Submit(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, "trace-abc", submitter.submitted[0].RequestID)
}

func TestWebhookSubmit_MalformedJSONIs400(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(&fakeSubmitter{})
	rec := postWebhook(h, `{"files": [`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookSubmit_ValidationFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing callback_url", `{"files": [{"url": "https://example.com/a.jpg"}]}`},
		{"no files", `{"files": [], "callback_url": "https://example.com/cb"}`},
		{"bad file url", `{"files": [{"url": "not a url"}], "callback_url": "https://example.com/cb"}`},
		{"bad file type", `{"files": [{"url": "https://example.com/a.bin", "file_type": "video"}], "callback_url": "https://example.com/cb"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			submitter := &fakeSubmitter{}
			rec := postWebhook(NewWebhookHandler(submitter), tc.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Empty(t, submitter.submitted, "invalid requests must never reach the queue")
		})
	}
}

func TestWebhookSubmit_TooManyFilesIs422(t *testing.T) {
	t.Parallel()

	files := make([]string, domain.MaxBatchFiles+1)
	for i := range files {
		files[i] = `{"url": "https://example.com/f.jpg"}`
	}
	body := `{"files": [` + strings.Join(files, ",") + `], "callback_url": "https://example.com/cb"}`

	rec := postWebhook(NewWebhookHandler(&fakeSubmitter{}), body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWebhookSubmit_QueueFullIs503(t *testing.T) {
	t.Parallel()

	h := NewWebhookHandler(&fakeSubmitter{err: job.ErrQueueFull})
	rec := postWebhook(h, `{
		"files": [{"url": "https://example.com/a.jpg"}],
		"callback_url": "https://example.com/cb"
	}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
