package filecheck

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/tcolgate/mp3"
)

// MaxAudioDuration caps audio uploads at 15 minutes.
const MaxAudioDuration = 15 * time.Minute

// ErrUnsupportedAudioType is returned when the declared MIME type is not
// in the audio allow-list.
var ErrUnsupportedAudioType = errors.New("unsupported audio type")

// ErrAudioTooLong is returned when the audio duration exceeds MaxAudioDuration.
var ErrAudioTooLong = errors.New("audio exceeds maximum duration")

// SupportedAudioTypes lists the accepted audio MIME types.
var SupportedAudioTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/flac":  true,
	"audio/ogg":   true,
	"audio/mp4":   true,
	"audio/x-m4a": true,
}

// ValidateAudio checks the declared MIME type and the duration cap and
// returns the canonical MIME type plus the probed duration in seconds.
// Duration is nil when the format cannot be probed; an unreadable
// duration is not an error.
func ValidateAudio(declared string, payload []byte) (string, *float64, error) {
	mime := declared
	if mime == "" {
		mime = "application/octet-stream"
	}
	if !SupportedAudioTypes[mime] {
		return "", nil, fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedAudioType, mime, supportedAudioList())
	}

	duration := ProbeAudioDuration(mime, payload)
	if duration != nil && *duration > MaxAudioDuration.Seconds() {
		return "", nil, fmt.Errorf("%w: %.0fs (maximum %d minutes)",
			ErrAudioTooLong, *duration, int(MaxAudioDuration.Minutes()))
	}

	return mime, duration, nil
}

// ProbeAudioDuration determines the duration in seconds for formats we
// can parse in-memory (MP3 frame scan, WAV header). Returns nil for
// anything else.
func ProbeAudioDuration(mime string, payload []byte) *float64 {
	switch mime {
	case "audio/mpeg":
		return mp3Duration(payload)
	case "audio/wav", "audio/x-wav":
		return wavDuration(payload)
	}
	return nil
}

// mp3Duration sums frame durations across the whole stream.
func mp3Duration(payload []byte) *float64 {
	decoder := mp3.NewDecoder(bytes.NewReader(payload))

	var (
		total   time.Duration
		frame   mp3.Frame
		skipped int
	)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) && total > 0 {
				break
			}
			if total == 0 {
				return nil
			}
			break
		}
		total += frame.Duration()
	}

	seconds := total.Seconds()
	return &seconds
}

// wavDuration derives the duration from the RIFF header: data chunk
// length divided by the byte rate from the fmt chunk.
func wavDuration(payload []byte) *float64 {
	if len(payload) < 12 ||
		!bytes.Equal(payload[0:4], []byte("RIFF")) ||
		!bytes.Equal(payload[8:12], []byte("WAVE")) {
		return nil
	}

	var byteRate uint32
	var dataLen uint32

	// Walk the RIFF chunks looking for fmt and data.
	offset := 12
	for offset+8 <= len(payload) {
		chunkID := payload[offset : offset+4]
		chunkLen := binary.LittleEndian.Uint32(payload[offset+4 : offset+8])
		body := offset + 8

		switch string(chunkID) {
		case "fmt ":
			if body+16 <= len(payload) {
				byteRate = binary.LittleEndian.Uint32(payload[body+8 : body+12])
			}
		case "data":
			dataLen = chunkLen
		}

		// Chunks are word-aligned.
		offset = body + int(chunkLen)
		if chunkLen%2 == 1 {
			offset++
		}
	}

	if byteRate == 0 || dataLen == 0 {
		return nil
	}

	seconds := float64(dataLen) / float64(byteRate)
	return &seconds
}

func supportedAudioList() string {
	types := make([]string, 0, len(SupportedAudioTypes))
	for t := range SupportedAudioTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
