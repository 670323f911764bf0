// Package tasks orchestrates long-running catalog operations with real-time progress reporting.
//
// # Core Operations
//
// The [ExportEngine] interface defines the bulk export operation:
//
//  1. [ExportEngine.BulkExport] : Export the song catalog grouped by artist
//     - Loads the persisted catalog from the song store
//     - Writes one export per artist in the requested format
//     - Optionally downloads cover art alongside markdown exports
//     - Writes a manifest summarizing successes and failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
