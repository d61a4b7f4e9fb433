package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/ytcsv/internal/models"
)

// Resource names accepted by [FakeYouTubeAPI.FailWith] and [FakeYouTubeAPI.Calls].
const (
	ResourcePlaylists     = "playlists"
	ResourcePlaylistItems = "playlistItems"
	ResourceVideos        = "videos"
)

type fakePlaylist struct {
	title   string
	entries []models.PlaylistEntry
}

type fakeFailure struct {
	status  int
	reason  string
	message string
}

// FakeYouTubeAPI is an httptest server answering the subset of YouTube Data API v3 routes the exporter uses.
//
// Point a client at [FakeYouTubeAPI.Endpoint]. Playlist items are paged by PageSize (50 when zero).
type FakeYouTubeAPI struct {
	Server   *httptest.Server
	PageSize int
	// Delay holds every response until it elapses or the request is cancelled.
	Delay time.Duration

	mu        sync.Mutex
	playlists map[string]fakePlaylist
	videos    map[string]models.VideoDetail
	failures  map[string]fakeFailure
	calls     map[string]int
	videoIDs  [][]string
	keys      []string
}

// NewFakeYouTubeAPI starts a fake API server that is closed when the test ends.
func NewFakeYouTubeAPI(t *testing.T) *FakeYouTubeAPI {
	t.Helper()

	f := &FakeYouTubeAPI{
		playlists: map[string]fakePlaylist{},
		videos:    map[string]models.VideoDetail{},
		failures:  map[string]fakeFailure{},
		calls:     map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /youtube/v3/playlists", f.wrap(ResourcePlaylists, f.handlePlaylists))
	mux.HandleFunc("GET /youtube/v3/playlistItems", f.wrap(ResourcePlaylistItems, f.handlePlaylistItems))
	mux.HandleFunc("GET /youtube/v3/videos", f.wrap(ResourceVideos, f.handleVideos))

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// Endpoint is the base URL to pass to option.WithEndpoint.
func (f *FakeYouTubeAPI) Endpoint() string {
	return f.Server.URL + "/"
}

// AddPlaylist registers a playlist with its entries in order.
func (f *FakeYouTubeAPI) AddPlaylist(id, title string, entries []models.PlaylistEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playlists[id] = fakePlaylist{title: title, entries: entries}
}

// AddVideos registers videos that lookups can resolve.
func (f *FakeYouTubeAPI) AddVideos(videos map[string]models.VideoDetail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, v := range videos {
		f.videos[id] = v
	}
}

// FailWith makes every call to resource answer with a Google API error payload.
func (f *FakeYouTubeAPI) FailWith(resource string, status int, reason, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[resource] = fakeFailure{status: status, reason: reason, message: message}
}

// Calls returns how many requests reached resource.
func (f *FakeYouTubeAPI) Calls(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[resource]
}

// VideoBatches returns the id lists of every videos request in arrival order.
func (f *FakeYouTubeAPI) VideoBatches() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.videoIDs...)
}

// APIKeys returns the API key seen on each request.
func (f *FakeYouTubeAPI) APIKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func (f *FakeYouTubeAPI) wrap(resource string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("key")
		if key == "" {
			key = r.Header.Get("X-Goog-Api-Key")
		}

		f.mu.Lock()
		f.calls[resource]++
		f.keys = append(f.keys, key)
		failure, failing := f.failures[resource]
		f.mu.Unlock()

		if f.Delay > 0 {
			select {
			case <-time.After(f.Delay):
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			writeAPIError(w, failure)
			return
		}
		next(w, r)
	}
}

func (f *FakeYouTubeAPI) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	items := []map[string]any{}

	f.mu.Lock()
	for _, id := range queryList(r, "id") {
		if p, ok := f.playlists[id]; ok {
			items = append(items, map[string]any{
				"kind":    "youtube#playlist",
				"id":      id,
				"snippet": map[string]any{"title": p.title},
			})
		}
	}
	f.mu.Unlock()

	writeJSON(w, map[string]any{"kind": "youtube#playlistListResponse", "items": items})
}

func (f *FakeYouTubeAPI) handlePlaylistItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f.mu.Lock()
	p, ok := f.playlists[q.Get("playlistId")]
	f.mu.Unlock()

	if !ok {
		writeAPIError(w, fakeFailure{
			status:  http.StatusNotFound,
			reason:  "playlistNotFound",
			message: "The playlist identified with the request's <code>playlistId</code> parameter cannot be found.",
		})
		return
	}

	size := f.PageSize
	if size <= 0 {
		size = 50
	}
	if n, err := strconv.Atoi(q.Get("maxResults")); err == nil && n > 0 && n < size {
		size = n
	}

	start, _ := strconv.Atoi(q.Get("pageToken"))
	start = min(max(start, 0), len(p.entries))
	end := min(start+size, len(p.entries))

	items := make([]map[string]any, 0, end-start)
	for _, e := range p.entries[start:end] {
		snippet := map[string]any{
			"resourceId": map[string]any{"kind": e.Kind, "videoId": e.VideoID},
		}
		if e.HasTitle {
			snippet["title"] = e.Title
		}
		if e.HasOwnerChannel {
			snippet["videoOwnerChannelTitle"] = e.OwnerChannelTitle
		}
		if e.HasPublishedAt {
			snippet["publishedAt"] = e.PublishedAt
		}
		items = append(items, map[string]any{"kind": "youtube#playlistItem", "snippet": snippet})
	}

	resp := map[string]any{"kind": "youtube#playlistItemListResponse", "items": items}
	if end < len(p.entries) {
		resp["nextPageToken"] = strconv.Itoa(end)
	}
	writeJSON(w, resp)
}

func (f *FakeYouTubeAPI) handleVideos(w http.ResponseWriter, r *http.Request) {
	ids := queryList(r, "id")
	items := make([]map[string]any, 0, len(ids))

	f.mu.Lock()
	f.videoIDs = append(f.videoIDs, ids)
	for _, id := range ids {
		v, ok := f.videos[id]
		if !ok {
			continue
		}
		items = append(items, map[string]any{
			"kind": "youtube#video",
			"id":   v.ID,
			"snippet": map[string]any{
				"title":        v.Title,
				"channelTitle": v.ChannelTitle,
				"publishedAt":  v.PublishedAt,
			},
			"statistics": map[string]any{
				"viewCount": strconv.FormatUint(v.ViewCount, 10),
				"likeCount": strconv.FormatUint(v.LikeCount, 10),
			},
			"contentDetails": map[string]any{"duration": v.Duration},
		})
	}
	f.mu.Unlock()

	writeJSON(w, map[string]any{"kind": "youtube#videoListResponse", "items": items})
}

// queryList collects a parameter sent either repeated or comma separated.
func queryList(r *http.Request, name string) []string {
	var out []string
	for _, v := range r.URL.Query()[name] {
		for _, part := range strings.Split(v, ",") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, f fakeFailure) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(f.status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"code":    f.status,
			"message": f.message,
			"errors": []map[string]any{
				{"domain": "youtube.quota", "reason": f.reason, "message": f.message},
			},
		},
	})
}
