package shared

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondWithJSON(rec, req, http.StatusCreated, map[string]string{"result": "ok"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"result":"ok"}`, rec.Body.String())
}

func TestRespondWithError_IncludesTraceID(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)
	req = req.WithContext(WithTraceID(req.Context(), "trace-abc"))

	RespondWithError(rec, req, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "At least one file is required")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "At least one file is required", resp.Detail)
	assert.Equal(t, "VALIDATION_ERROR", resp.ErrorCode)
	assert.Equal(t, "trace-abc", resp.TraceID)
}

func TestRespondWithErrorAndLog_SanitizesTheBody(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", nil)

	internal := errors.New("dial tcp 10.0.0.7: connection refused")
	RespondWithErrorAndLog(rec, req, http.StatusInternalServerError,
		"INTERNAL_ERROR", "An unexpected error occurred", internal)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.7",
		"internal error details must never reach the client")
	assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
}
