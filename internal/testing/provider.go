package testing

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/desertthunder/ytcsv/internal/models"
)

// MockProvider is an in-memory test double for services.Provider.
//
// Entries are served in pages of PageSize (50 when zero) using the offset as page token.
// Videos missing from the map are omitted from lookups, like deleted videos.
type MockProvider struct {
	Title    string
	NotFound bool
	Entries  []models.PlaylistEntry
	Videos   map[string]models.VideoDetail
	PageSize int

	TitleErr  error
	ItemsErr  error
	VideosErr error

	mu           sync.Mutex
	TitleCalls   int
	PageTokens   []string
	VideoBatches [][]string
}

func (m *MockProvider) GetPlaylistTitle(ctx context.Context, playlistID string) (string, bool, error) {
	m.mu.Lock()
	m.TitleCalls++
	m.mu.Unlock()

	if m.TitleErr != nil {
		return "", false, m.TitleErr
	}
	if m.NotFound {
		return "", false, nil
	}
	return m.Title, true, nil
}

func (m *MockProvider) ListPlaylistItems(ctx context.Context, playlistID, pageToken string) (*models.PlaylistItemsPage, error) {
	m.mu.Lock()
	m.PageTokens = append(m.PageTokens, pageToken)
	m.mu.Unlock()

	if m.ItemsErr != nil {
		return nil, m.ItemsErr
	}

	size := m.PageSize
	if size <= 0 {
		size = 50
	}

	start := 0
	if pageToken != "" {
		n, err := strconv.Atoi(pageToken)
		if err != nil {
			return nil, fmt.Errorf("bad page token %q", pageToken)
		}
		start = n
	}

	end := min(start+size, len(m.Entries))
	page := &models.PlaylistItemsPage{Entries: append([]models.PlaylistEntry(nil), m.Entries[start:end]...)}
	if end < len(m.Entries) {
		page.NextPageToken = strconv.Itoa(end)
	}
	return page, nil
}

func (m *MockProvider) GetVideos(ctx context.Context, ids []string) ([]models.VideoDetail, error) {
	m.mu.Lock()
	m.VideoBatches = append(m.VideoBatches, append([]string(nil), ids...))
	m.mu.Unlock()

	if m.VideosErr != nil {
		return nil, m.VideosErr
	}

	var details []models.VideoDetail
	for _, id := range ids {
		if v, ok := m.Videos[id]; ok {
			details = append(details, v)
		}
	}
	return details, nil
}

// NewMockProvider builds a provider holding a playlist of n videos named vid-000, vid-001, ...
// Indices listed in missing have no video detail.
func NewMockProvider(title string, n int, missing ...int) *MockProvider {
	entries, videos := Fixture(n, missing...)
	return &MockProvider{Title: title, Entries: entries, Videos: videos}
}

// Fixture returns n video playlist entries and the details for every index not in missing.
// Missing entries carry no title or owner channel, as the API reports for deleted videos.
func Fixture(n int, missing ...int) ([]models.PlaylistEntry, map[string]models.VideoDetail) {
	skip := make(map[int]bool, len(missing))
	for _, i := range missing {
		skip[i] = true
	}

	entries := make([]models.PlaylistEntry, 0, n)
	videos := make(map[string]models.VideoDetail, n)
	for i := range n {
		id := fmt.Sprintf("vid-%03d", i)
		if skip[i] {
			entries = append(entries, models.PlaylistEntry{
				VideoID:        id,
				Kind:           models.VideoKind,
				PublishedAt:    "2020-01-02T03:04:05Z",
				HasPublishedAt: true,
			})
			continue
		}

		entries = append(entries, models.PlaylistEntry{
			VideoID:           id,
			Kind:              models.VideoKind,
			Title:             fmt.Sprintf("Entry %d", i),
			OwnerChannelTitle: "Owner Channel",
			PublishedAt:       "2020-01-02T03:04:05Z",
			HasTitle:          true,
			HasOwnerChannel:   true,
			HasPublishedAt:    true,
		})
		videos[id] = models.VideoDetail{
			ID:           id,
			Title:        fmt.Sprintf("Video %d", i),
			ChannelTitle: "Channel",
			PublishedAt:  "2021-06-07T08:09:10Z",
			ViewCount:    uint64(1000 + i),
			LikeCount:    uint64(i),
			Duration:     "PT3M5S",
		}
	}
	return entries, videos
}
