// Package analysis defines the boundary between the application core and
// the external AI content-analysis service, following the hexagonal
// architecture pattern. Concrete implementations live under
// internal/platform.
package analysis
