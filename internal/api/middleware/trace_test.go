package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mfeller/metagen-api/internal/api/shared"
)

func TestTraceMiddleware_HonorsProvidedCorrelationID(t *testing.T) {
	t.Parallel()

	var seen string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "caller-supplied-id")
	rec := httptest.NewRecorder()
	TraceMiddleware(next).ServeHTTP(rec, req)

	assert.Equal(t, "caller-supplied-id", seen)
	assert.Equal(t, "caller-supplied-id", rec.Header().Get(CorrelationHeader))
}

func TestTraceMiddleware_GeneratesWhenAbsent(t *testing.T) {
	t.Parallel()

	var seen string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = shared.GetTraceID(r.Context())
	})

	rec := httptest.NewRecorder()
	TraceMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Len(t, seen, 2*shared.TraceIDLength)
	assert.Equal(t, seen, rec.Header().Get(CorrelationHeader))
}
