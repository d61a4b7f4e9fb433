// package services defines interface Provider for reading playlists and videos from the YouTube Data API
package services

import (
	"context"

	"github.com/desertthunder/ytcsv/internal/models"
)

// MaxPageSize is the largest page or batch the YouTube Data API accepts for playlistItems and videos lookups.
const MaxPageSize = 50

// Provider defines the read-only lookups an export needs from a video platform.
type Provider interface {
	// GetPlaylistTitle returns the playlist's title. found is false when the provider returned no playlist for id.
	GetPlaylistTitle(ctx context.Context, playlistID string) (title string, found bool, err error)

	// ListPlaylistItems returns one page (at most [MaxPageSize] entries) starting at pageToken.
	// An empty pageToken requests the first page.
	ListPlaylistItems(ctx context.Context, playlistID, pageToken string) (*models.PlaylistItemsPage, error)

	// GetVideos looks up at most [MaxPageSize] video ids.
	// Ids the provider does not know are omitted from the result.
	GetVideos(ctx context.Context, ids []string) ([]models.VideoDetail, error)
}
