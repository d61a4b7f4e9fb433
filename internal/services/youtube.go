// YouTube Data API v3 [Provider] implementation
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/desertthunder/ytcsv/internal/models"
	"github.com/desertthunder/ytcsv/internal/shared"
)

const (
	DefaultTimeout = 30 * time.Second

	timeoutReason = "YouTube API request timed out."
)

var videoParts = []string{"snippet", "statistics", "contentDetails"}

// YouTubeOpts configures a [YouTubeService].
type YouTubeOpts struct {
	APIKey string
	// Timeout bounds each individual API call. Zero means [DefaultTimeout].
	Timeout time.Duration
	// RateLimit caps API calls per second. Zero disables limiting.
	RateLimit float64
	// Endpoint overrides the API base URL.
	Endpoint string
	Logger   *log.Logger
}

// YouTubeService implements [Provider] with an API key against the YouTube Data API.
type YouTubeService struct {
	service *youtube.Service
	timeout time.Duration
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewYouTubeService creates a YouTube Data API client authenticated with opts.APIKey.
//
// Returns [shared.ErrMissingCredentials] when the key is empty.
func NewYouTubeService(ctx context.Context, opts YouTubeOpts) (*YouTubeService, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: YouTube API key is not configured", shared.ErrMissingCredentials)
	}

	clientOpts := []option.ClientOption{option.WithAPIKey(opts.APIKey)}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}

	service, err := youtube.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &YouTubeService{
		service: service,
		timeout: timeout,
		limiter: limiter,
		logger:  logger.WithPrefix("youtube"),
	}, nil
}

// GetPlaylistTitle calls playlists.list with part=snippet.
func (y *YouTubeService) GetPlaylistTitle(ctx context.Context, playlistID string) (string, bool, error) {
	callCtx, cancel, err := y.begin(ctx)
	if err != nil {
		return "", false, err
	}
	defer cancel()

	resp, err := y.service.Playlists.List([]string{"snippet"}).
		Id(playlistID).
		Fields("items(id,snippet/title)").
		Context(callCtx).
		Do()
	if err != nil {
		return "", false, y.classify(ctx, "playlists.list", err)
	}

	if len(resp.Items) == 0 {
		return "", false, nil
	}

	var title string
	if s := resp.Items[0].Snippet; s != nil {
		title = s.Title
	}
	return title, true, nil
}

// ListPlaylistItems calls playlistItems.list with part=snippet and maxResults=50.
func (y *YouTubeService) ListPlaylistItems(ctx context.Context, playlistID, pageToken string) (*models.PlaylistItemsPage, error) {
	callCtx, cancel, err := y.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	call := y.service.PlaylistItems.List([]string{"snippet"}).
		PlaylistId(playlistID).
		MaxResults(MaxPageSize)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	resp, err := call.Context(callCtx).Do()
	if err != nil {
		return nil, y.classify(ctx, "playlistItems.list", err)
	}

	page := &models.PlaylistItemsPage{
		Entries:       make([]models.PlaylistEntry, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
	}
	for _, item := range resp.Items {
		page.Entries = append(page.Entries, entryFromItem(item))
	}

	y.logger.Debug("fetched playlist items", "playlist", playlistID, "count", len(page.Entries), "more", page.NextPageToken != "")
	return page, nil
}

// GetVideos calls videos.list with part=snippet,statistics,contentDetails for up to 50 ids.
func (y *YouTubeService) GetVideos(ctx context.Context, ids []string) ([]models.VideoDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxPageSize {
		return nil, fmt.Errorf("%w: at most %d ids per videos lookup, got %d", shared.ErrInvalidInput, MaxPageSize, len(ids))
	}

	callCtx, cancel, err := y.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	resp, err := y.service.Videos.List(videoParts).
		Id(ids...).
		Context(callCtx).
		Do()
	if err != nil {
		return nil, y.classify(ctx, "videos.list", err)
	}

	details := make([]models.VideoDetail, 0, len(resp.Items))
	for _, v := range resp.Items {
		details = append(details, detailFromVideo(v))
	}

	y.logger.Debug("resolved videos", "requested", len(ids), "returned", len(details))
	return details, nil
}

// begin waits for the rate limiter and derives the per-call timeout context.
func (y *YouTubeService) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if y.limiter != nil {
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, nil, err
		}
	}
	callCtx, cancel := context.WithTimeout(ctx, y.timeout)
	return callCtx, cancel, nil
}

// classify maps a client error to a [shared.ProviderError] when the provider (or the per-call deadline) caused it.
//
// Cancellation of the caller's own context is returned unchanged.
func (y *YouTubeService) classify(parent context.Context, op string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		y.logger.Warn("request timed out", "op", op, "timeout", y.timeout)
		return shared.NewProviderError(http.StatusGatewayTimeout, timeoutReason)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		reason := apiErr.Message
		if len(apiErr.Errors) > 0 && apiErr.Errors[0].Message != "" {
			reason = apiErr.Errors[0].Message
		}
		y.logger.Warn("request failed", "op", op, "status", apiErr.Code, "reason", reason)
		return shared.NewProviderError(apiErr.Code, reason)
	}

	return fmt.Errorf("%s: %w", op, err)
}

func entryFromItem(item *youtube.PlaylistItem) models.PlaylistEntry {
	var entry models.PlaylistEntry
	s := item.Snippet
	if s == nil {
		return entry
	}

	if s.ResourceId != nil {
		entry.Kind = s.ResourceId.Kind
		entry.VideoID = s.ResourceId.VideoId
	}

	entry.Title, entry.HasTitle = s.Title, s.Title != ""
	entry.OwnerChannelTitle, entry.HasOwnerChannel = s.VideoOwnerChannelTitle, s.VideoOwnerChannelTitle != ""
	entry.PublishedAt, entry.HasPublishedAt = s.PublishedAt, s.PublishedAt != ""
	return entry
}

func detailFromVideo(v *youtube.Video) models.VideoDetail {
	detail := models.VideoDetail{ID: v.Id}
	if s := v.Snippet; s != nil {
		detail.Title = s.Title
		detail.ChannelTitle = s.ChannelTitle
		detail.PublishedAt = s.PublishedAt
	}
	if st := v.Statistics; st != nil {
		detail.ViewCount = st.ViewCount
		detail.LikeCount = st.LikeCount
	}
	if cd := v.ContentDetails; cd != nil {
		detail.Duration = cd.Duration
	}
	return detail
}
