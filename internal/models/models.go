// package models defines the data model for the playlist export service
package models

import "strings"

const (
	// NotAvailable is the sentinel written for fields the provider could not supply.
	NotAvailable = "N/A"
	// VideoNotAvailable is the title used for deleted or private videos without a snippet title.
	VideoNotAvailable = "Video Not Available"
	// VideoKind is the resource kind of playlist entries that reference videos.
	VideoKind = "youtube#video"

	watchURLPrefix = "https://www.youtube.com/watch?v="
)

// PlaylistEntry is one playlist membership record in provider order.
//
// The Has* flags report whether the provider returned a non-empty value for the field;
// fallbacks apply when they are false.
type PlaylistEntry struct {
	VideoID           string
	Kind              string
	Title             string
	OwnerChannelTitle string
	PublishedAt       string

	HasTitle        bool
	HasOwnerChannel bool
	HasPublishedAt  bool
}

// IsVideo reports whether the entry references a video resource.
func (e PlaylistEntry) IsVideo() bool {
	return e.Kind == VideoKind
}

// PlaylistItemsPage is one page of playlist entries.
//
// An empty NextPageToken marks the final page.
type PlaylistItemsPage struct {
	Entries       []PlaylistEntry
	NextPageToken string
}

// VideoDetail is the metadata returned by a videos lookup.
type VideoDetail struct {
	ID           string
	Title        string
	ChannelTitle string
	PublishedAt  string
	ViewCount    uint64
	LikeCount    uint64
	Duration     string // ISO-8601 duration, e.g. PT4M13S
}

// ExportRecord is one output row. Every field is already rendered as text.
type ExportRecord struct {
	Title         string
	Channel       string
	PublishedDate string
	Views         string
	Likes         string
	Duration      string
	URL           string
}

// Row returns the record's fields in CSV column order.
func (r ExportRecord) Row() []string {
	return []string{r.Title, r.Channel, r.PublishedDate, r.Views, r.Likes, r.Duration, r.URL}
}

// PlaylistExport is the result of one export: the playlist title, the download filename and its records.
type PlaylistExport struct {
	ID       string
	Title    string
	Filename string
	Records  []ExportRecord
}

// WatchURL returns the public watch page for a video id.
func WatchURL(videoID string) string {
	return watchURLPrefix + videoID
}

// DatePart returns the portion of an ISO-8601 timestamp before the first "T".
// Values without a "T" (including "N/A") are returned unchanged.
func DatePart(timestamp string) string {
	date, _, _ := strings.Cut(timestamp, "T")
	return date
}

// PlaylistExportResult describes the outcome of exporting one playlist in a bulk run.
type PlaylistExportResult struct {
	URL        string `json:"url"`
	PlaylistID string `json:"playlist_id,omitempty"`
	Title      string `json:"title,omitempty"`
	File       string `json:"file,omitempty"`
	Records    int    `json:"records"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	RunID             string                 `json:"run_id"`
	TotalPlaylists    int                    `json:"total_playlists"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	ManifestPath      string                 `json:"-"`
	Results           []PlaylistExportResult `json:"results"`
}
