package tasks

import (
	"strconv"

	"github.com/desertthunder/ytcsv/internal/formatter"
	"github.com/desertthunder/ytcsv/internal/models"
)

// MergeRecords builds one [models.ExportRecord] per entry with a video id, in entry order.
//
// Entries without a video id are skipped. Entries whose id is missing from details produce degraded records.
func MergeRecords(entries []models.PlaylistEntry, details map[string]models.VideoDetail) []models.ExportRecord {
	records := make([]models.ExportRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.VideoID == "" {
			continue
		}

		if detail, ok := details[entry.VideoID]; ok {
			records = append(records, NewExportRecord(entry, &detail))
		} else {
			records = append(records, NewExportRecord(entry, nil))
		}
	}
	return records
}

// NewExportRecord renders one output row.
//
// With a nil detail the row falls back to the playlist entry's own snippet
// and reports [models.NotAvailable] for views, likes and duration.
func NewExportRecord(entry models.PlaylistEntry, detail *models.VideoDetail) models.ExportRecord {
	url := models.WatchURL(entry.VideoID)

	if detail == nil {
		return models.ExportRecord{
			Title:         valueOr(entry.Title, entry.HasTitle, models.VideoNotAvailable),
			Channel:       valueOr(entry.OwnerChannelTitle, entry.HasOwnerChannel, models.NotAvailable),
			PublishedDate: models.DatePart(valueOr(entry.PublishedAt, entry.HasPublishedAt, models.NotAvailable)),
			Views:         models.NotAvailable,
			Likes:         models.NotAvailable,
			Duration:      models.NotAvailable,
			URL:           url,
		}
	}

	return models.ExportRecord{
		Title:         orNotAvailable(detail.Title),
		Channel:       orNotAvailable(detail.ChannelTitle),
		PublishedDate: models.DatePart(orNotAvailable(detail.PublishedAt)),
		Views:         strconv.FormatUint(detail.ViewCount, 10),
		Likes:         strconv.FormatUint(detail.LikeCount, 10),
		Duration:      formatter.FormatDuration(detail.Duration),
		URL:           url,
	}
}

func valueOr(v string, present bool, fallback string) string {
	if !present {
		return fallback
	}
	return v
}

func orNotAvailable(v string) string {
	return valueOr(v, v != "", models.NotAvailable)
}
