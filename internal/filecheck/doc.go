// Package filecheck validates uploaded media before analysis: MIME
// allow-lists, magic-byte sniffing for images, size and duration caps,
// and EXIF extraction. Validation failures here become per-file errors,
// never batch failures.
package filecheck
