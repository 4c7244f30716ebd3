package filecheck

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxImageSizeBytes caps image uploads at 10 MB.
const MaxImageSizeBytes = 10 * 1024 * 1024

// ErrImageTooLarge is returned when an image exceeds MaxImageSizeBytes.
var ErrImageTooLarge = errors.New("image exceeds maximum size")

// ErrUnsupportedImageType is returned when neither the declared MIME type
// nor the file header matches a supported image format.
var ErrUnsupportedImageType = errors.New("unsupported image type")

// SupportedImageTypes lists the accepted image MIME types.
var SupportedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/tiff": true,
	"image/webp": true,
}

type imageSignature struct {
	prefix []byte
	mime   string
}

// Magic-byte signatures checked against the first bytes of the file.
var imageSignatures = []imageSignature{
	{[]byte{0xFF, 0xD8, 0xFF}, "image/jpeg"},
	{[]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}, "image/png"},
	{[]byte{'I', 'I', 0x2A, 0x00}, "image/tiff"},
	{[]byte{'M', 'M', 0x00, 0x2A}, "image/tiff"},
	{[]byte("RIFF"), "image/webp"},
}

// DetectImageMIME sniffs the image MIME type from the file header.
// Returns "" when the header matches no supported format.
func DetectImageMIME(header []byte) string {
	for _, sig := range imageSignatures {
		if !bytes.HasPrefix(header, sig.prefix) {
			continue
		}
		// WebP needs the RIFF container's format tag checked too.
		if sig.mime == "image/webp" {
			if len(header) >= 12 && bytes.Equal(header[8:12], []byte("WEBP")) {
				return sig.mime
			}
			continue
		}
		return sig.mime
	}
	return ""
}

// ValidateImage checks the declared MIME type and the file header and
// returns the canonical detected MIME type.
func ValidateImage(declared string, payload []byte) (string, error) {
	if declared != "" && !SupportedImageTypes[declared] {
		return "", fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedImageType, declared, supportedImageList())
	}

	detected := DetectImageMIME(payload)
	if detected == "" {
		return "", fmt.Errorf("%w: file header matches no supported image format",
			ErrUnsupportedImageType)
	}

	return detected, nil
}

// ValidateImageSize rejects payloads larger than MaxImageSizeBytes.
func ValidateImageSize(size int) error {
	if size > MaxImageSizeBytes {
		return fmt.Errorf("%w: %d bytes (maximum %d MB)",
			ErrImageTooLarge, size, MaxImageSizeBytes/(1024*1024))
	}
	return nil
}

func supportedImageList() string {
	types := make([]string, 0, len(SupportedImageTypes))
	for t := range SupportedImageTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
