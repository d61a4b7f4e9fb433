// Package tasks runs the playlist export pipeline with real-time progress reporting.
//
// # Core Operations
//
// [ExportEngine] implements [Exporter]. [ExportEngine.Export] runs these stages in order:
//
//  1. Credential check: a nil provider fails with [shared.ErrMissingCredentials]
//  2. URL validation via [formatter.ExtractPlaylistID]
//  3. [ExportEngine.FetchPlaylist] : playlist title, then every playlistItems page until no next token
//  4. [ExportEngine.ResolveVideos] : videos lookups in consecutive batches of 50
//  5. [MergeRecords] : one record per entry with a video id, degraded when no detail resolved
//
// Unresolved videos are not an error. They become rows built by [NewExportRecord] with a nil detail.
//
// # Bulk Export
//
// [BulkExport] feeds playlist URLs to a bounded worker pool, optionally paced by a token-bucket
// limiter, writes each export as CSV and summarizes the run in export_manifest.json.
//
// # Progress Reporting
//
// Operations accept an optional progress channel. The [ProgressUpdate] struct contains phase,
// step counters, messages, and optional data. Updates use select with default to prevent blocking.
package tasks
