package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func doLimitedRequest(l *RateLimiter, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/analyze", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	l.Limit(protectedHandler()).ServeHTTP(rec, req)
	return rec.Code
}

func TestRateLimiter_EnforcesPerClientBurst(t *testing.T) {
	t.Parallel()

	l := NewRateLimiter(0.001, 2)

	assert.Equal(t, http.StatusOK, doLimitedRequest(l, "10.0.0.1:1111"))
	assert.Equal(t, http.StatusOK, doLimitedRequest(l, "10.0.0.1:2222"))
	assert.Equal(t, http.StatusTooManyRequests, doLimitedRequest(l, "10.0.0.1:3333"))

	// A different client has its own bucket.
	assert.Equal(t, http.StatusOK, doLimitedRequest(l, "10.0.0.2:1111"))
}

func TestRateLimiter_DisabledWhenRateNonPositive(t *testing.T) {
	t.Parallel()

	l := NewRateLimiter(0, 0)
	for i := 0; i < 50; i++ {
		assert.Equal(t, http.StatusOK, doLimitedRequest(l, "10.0.0.1:1111"))
	}
}
