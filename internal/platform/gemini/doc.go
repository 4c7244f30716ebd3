// Package gemini implements the analysis.Analyzer interface using
// Google's Gemini API. Each call constructs its own client so concurrent
// file tasks never share a connection, and transient upstream failures
// (429, 503) are retried with exponential backoff before being surfaced.
package gemini
