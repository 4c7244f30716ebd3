// Package domain defines the core entities of the metadata extraction
// pipeline: analysis requests and results, per-file outcomes, batch
// aggregates, and webhook jobs with their status state machine.
//
// Entities here are plain data owned by the dispatch call or job that
// created them; nothing in this package is shared between concurrent
// tasks.
package domain
