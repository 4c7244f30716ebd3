package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"

	"github.com/mfeller/metagen-api/internal/api/shared"
)

// APIKeyHeader is the header carrying the caller's API key.
const APIKeyHeader = "X-API-Key"

// AuthMiddleware guards endpoints with static API keys. There are no
// user accounts; a key identifies an integrating system, not a person.
type AuthMiddleware struct {
	keys [][]byte
}

// NewAuthMiddleware creates an AuthMiddleware accepting any of the given
// keys. With no keys configured, authentication is disabled and every
// request passes; the server logs a warning about that at startup.
func NewAuthMiddleware(keys []string) *AuthMiddleware {
	m := &AuthMiddleware{}
	for _, k := range keys {
		if k != "" {
			m.keys = append(m.keys, []byte(k))
		}
	}
	return m
}

// Enabled reports whether any API keys are configured.
func (m *AuthMiddleware) Enabled() bool {
	return len(m.keys) > 0
}

// Authenticate validates the X-API-Key header. Key comparison is
// constant-time per key so response timing never narrows the search
// space for an attacker.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		presented := r.Header.Get(APIKeyHeader)
		if presented == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "",
				"API key required")
			return
		}

		presentedBytes := []byte(presented)
		matched := false
		for _, key := range m.keys {
			if len(key) == len(presentedBytes) &&
				subtle.ConstantTimeCompare(key, presentedBytes) == 1 {
				matched = true
			}
		}
		if !matched {
			// Log only a fingerprint; the presented value may be a
			// mistyped real key.
			slog.Warn("rejected request with invalid API key",
				"key_fingerprint", keyFingerprint(presented),
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr)
			shared.RespondWithError(w, r, http.StatusUnauthorized, "",
				"Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// keyFingerprint returns a short stable identifier for a key value that
// is safe to log.
func keyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
