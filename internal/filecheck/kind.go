package filecheck

import (
	"strings"

	"github.com/mfeller/metagen-api/internal/domain"
)

// DetectKind routes a file to the image or audio pipeline. The declared
// MIME type wins when present; otherwise the payload signature decides.
func DetectKind(declaredMIME string, payload []byte) domain.FileKind {
	mime := strings.ToLower(strings.TrimSpace(declaredMIME))
	switch {
	case strings.HasPrefix(mime, "image/"):
		return domain.FileKindImage
	case strings.HasPrefix(mime, "audio/"):
		return domain.FileKindAudio
	}
	if DetectImageMIME(payload) != "" {
		return domain.FileKindImage
	}
	return domain.FileKindUnknown
}
