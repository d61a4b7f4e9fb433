// Package models defines the per-request entities that flow through the playlist export pipeline.
//
// The types are plain data carriers with no persistence:
//   - [PlaylistEntry] : One playlist membership record with the snippet fields the listing supplies
//   - [VideoDetail] : Resolved video metadata (snippet, statistics, content details)
//   - [ExportRecord] : One CSV row; merged from an entry and an optional detail
//   - [PlaylistExport] : The playlist title, download filename and ordered records
//
// Bulk CLI exports additionally use [BulkExportResult] and [PlaylistExportResult] to describe
// which playlists were written and where.
package models
