// package tasks implements the playlist export pipeline.
//
// The core abstraction is ExportEngine, which validates a playlist URL, pages through its entries,
// resolves video details in batches and merges both into export records.
// Operations emit progress updates via channels for non-blocking status reporting to CLI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ytcsv/internal/formatter"
	"github.com/desertthunder/ytcsv/internal/models"
	"github.com/desertthunder/ytcsv/internal/services"
	"github.com/desertthunder/ytcsv/internal/shared"
)

// Exporter turns a playlist URL into a CSV-ready export.
type Exporter interface {
	Export(ctx context.Context, rawURL string, progress chan<- ProgressUpdate) (*models.PlaylistExport, error)
}

// ExportEngine implements [Exporter] on top of a [services.Provider].
//
// A nil provider means no API key was configured and every export fails with [shared.ErrMissingCredentials].
type ExportEngine struct {
	provider services.Provider
	logger   *log.Logger
}

// NewExportEngine creates a new ExportEngine. logger may be nil.
func NewExportEngine(provider services.Provider, logger *log.Logger) *ExportEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &ExportEngine{provider: provider, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Export runs the whole pipeline for one playlist URL.
//
// Stages run strictly in sequence: credential check, URL validation, playlist fetch, video resolution, merge.
func (e *ExportEngine) Export(ctx context.Context, rawURL string, progress chan<- ProgressUpdate) (*models.PlaylistExport, error) {
	if e.provider == nil {
		return nil, fmt.Errorf("%w: YouTube API key is not configured", shared.ErrMissingCredentials)
	}

	playlistID, err := formatter.ExtractPlaylistID(rawURL)
	if err != nil {
		return nil, err
	}

	title, entries, err := e.FetchPlaylist(ctx, playlistID, progress)
	if err != nil {
		return nil, err
	}

	details, err := e.ResolveVideos(ctx, VideoIDs(entries), progress)
	if err != nil {
		return nil, err
	}

	sendProgress(progress, mergeUpdate(len(entries)))
	records := MergeRecords(entries, details)

	export := &models.PlaylistExport{
		ID:       playlistID,
		Title:    title,
		Filename: formatter.CSVFilename(title),
		Records:  records,
	}

	e.logger.Info("playlist exported", "playlist", playlistID, "entries", len(entries), "resolved", len(details), "records", len(records))
	sendProgress(progress, doneUpdate(export))
	return export, nil
}

// FetchPlaylist returns the playlist title and every entry across all pages, in provider order.
//
// Returns [shared.ErrPlaylistNotFound] when the provider knows no playlist with this id.
func (e *ExportEngine) FetchPlaylist(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (string, []models.PlaylistEntry, error) {
	sendProgress(progress, fetchPlaylistUpdate(playlistID))

	title, found, err := e.provider.GetPlaylistTitle(ctx, playlistID)
	if err != nil {
		return "", nil, err
	}
	if !found {
		return "", nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	var entries []models.PlaylistEntry
	token := ""
	for page := 1; ; page++ {
		resp, err := e.provider.ListPlaylistItems(ctx, playlistID, token)
		if err != nil {
			return "", nil, err
		}

		entries = append(entries, resp.Entries...)
		sendProgress(progress, fetchItemsUpdate(page, len(entries)))

		if resp.NextPageToken == "" {
			break
		}
		token = resp.NextPageToken
	}

	e.logger.Debug("fetched playlist", "playlist", playlistID, "title", title, "entries", len(entries))
	return title, entries, nil
}

// ResolveVideos looks up ids in consecutive batches of at most [services.MaxPageSize]
// and returns the union of the results keyed by video id.
//
// Ids the provider cannot resolve are absent from the map.
func (e *ExportEngine) ResolveVideos(ctx context.Context, ids []string, progress chan<- ProgressUpdate) (map[string]models.VideoDetail, error) {
	details := make(map[string]models.VideoDetail, len(ids))
	batches := Batch(ids, services.MaxPageSize)

	for i, batch := range batches {
		sendProgress(progress, resolveUpdate(i+1, len(batches)))

		videos, err := e.provider.GetVideos(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, v := range videos {
			details[v.ID] = v
		}
	}

	return details, nil
}

// VideoIDs returns the ids of entries that reference videos, in order. Duplicates are kept.
func VideoIDs(entries []models.PlaylistEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsVideo() && entry.VideoID != "" {
			ids = append(ids, entry.VideoID)
		}
	}
	return ids
}

// Batch splits ids into consecutive chunks of at most size elements.
func Batch(ids []string, size int) [][]string {
	if size <= 0 {
		size = services.MaxPageSize
	}

	batches := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}
