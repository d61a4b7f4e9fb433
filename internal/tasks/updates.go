package tasks

import (
	"fmt"

	"github.com/desertthunder/ytcsv/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase, 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	FetchItems
	ResolveVideos
	Merge
	ExportPlaylist
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case FetchItems:
		return "fetch_items"
	case ResolveVideos:
		return "resolve_videos"
	case Merge:
		return "merge"
	case ExportPlaylist:
		return "export_playlist"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist %s...", id),
	}
}

func fetchItemsUpdate(page, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchItems,
		Step:    page,
		Message: fmt.Sprintf("Fetched page %d (%d entries so far)", page, count),
	}
}

func resolveUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving video details...", step, total),
	}
}

func mergeUpdate(entries int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Merge,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Merging %d entries...", entries),
	}
}

func doneUpdate(export *models.PlaylistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Exported %s (%d records)", export.Title, len(export.Records)),
		Data:    export,
	}
}

func exportingPlaylistUpdate(step, total int, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, url),
	}
}

func exportCompletedUpdate(step, total int, res models.PlaylistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d records)", step, total, res.Title, res.Records),
		Data:    res,
	}
}

func exportFailedUpdate(step, total int, res models.PlaylistExportResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, res.URL, res.Error),
		Data:    res,
	}
}
