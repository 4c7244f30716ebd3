package filecheck

import (
	"bytes"
	"log/slog"

	"github.com/evanoberholster/imagemeta"
)

// ExtractEXIF pulls camera metadata from image bytes into a flat map:
// camera make/model, capture timestamp, and GPS coordinates in decimal
// degrees. Extraction failures degrade to an empty map; EXIF is
// best-effort and never fails an upload.
func ExtractEXIF(payload []byte) map[string]any {
	result := make(map[string]any)

	exifData, err := imagemeta.Decode(bytes.NewReader(payload))
	if err != nil {
		slog.Debug("could not decode EXIF metadata", "error", err)
		return result
	}

	if exifData.Make != "" {
		result["make"] = exifData.Make
	}
	if exifData.Model != "" {
		result["model"] = exifData.Model
	}

	// Capture time fallback chain: original, create, modify.
	switch {
	case !exifData.DateTimeOriginal().IsZero():
		result["date_time_original"] = exifData.DateTimeOriginal().String()
	case !exifData.CreateDate().IsZero():
		result["date_time_original"] = exifData.CreateDate().String()
	case !exifData.ModifyDate().IsZero():
		result["date_time_original"] = exifData.ModifyDate().String()
	}

	gps := exifData.GPS
	if gps.Latitude() != 0 || gps.Longitude() != 0 {
		result["gps_latitude"] = gps.Latitude()
		result["gps_longitude"] = gps.Longitude()
	}

	return result
}
