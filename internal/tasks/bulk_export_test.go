package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/ytcsv/internal/models"
	"github.com/desertthunder/ytcsv/internal/services"
	"github.com/desertthunder/ytcsv/internal/shared"
	th "github.com/desertthunder/ytcsv/internal/testing"
)

func newFakeBackedProvider(t *testing.T, api *th.FakeYouTubeAPI) *services.YouTubeService {
	t.Helper()
	svc, err := services.NewYouTubeService(context.Background(), services.YouTubeOpts{
		APIKey:   "test-key",
		Timeout:  5 * time.Second,
		Endpoint: api.Endpoint(),
		Logger:   shared.NewLogger(&th.FWriter{}),
	})
	if err != nil {
		t.Fatalf("NewYouTubeService failed: %v", err)
	}
	return svc
}

// stubExporter serves canned exports keyed by URL and counts concurrent calls.
type stubExporter struct {
	exports map[string]*models.PlaylistExport
	delay   time.Duration

	mu      sync.Mutex
	active  int
	maxSeen int
}

func (s *stubExporter) Export(ctx context.Context, rawURL string, _ chan<- ProgressUpdate) (*models.PlaylistExport, error) {
	s.mu.Lock()
	s.active++
	s.maxSeen = max(s.maxSeen, s.active)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.active--
		s.mu.Unlock()
	}()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	export, ok := s.exports[rawURL]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, rawURL)
	}
	copied := *export
	return &copied, nil
}

func newStubExporter(n int) (*stubExporter, []string) {
	s := &stubExporter{exports: map[string]*models.PlaylistExport{}}
	urls := make([]string, n)
	for i := range n {
		id := fmt.Sprintf("PL%d", i)
		title := fmt.Sprintf("Playlist %d", i)
		urls[i] = "https://www.youtube.com/playlist?list=" + id
		s.exports[urls[i]] = &models.PlaylistExport{
			ID:       id,
			Title:    title,
			Filename: title + ".csv",
			Records:  []models.ExportRecord{{Title: "Song", URL: models.WatchURL("v" + id)}},
		}
	}
	return s, urls
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	t.Run("exports every playlist and writes manifest", func(t *testing.T) {
		dir := t.TempDir()
		exporter, urls := newStubExporter(4)
		progress := make(chan ProgressUpdate, 32)

		result, err := BulkExport(ctx, exporter, urls, BulkExportOpts{OutputDir: dir, NumWorkers: 2}, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SuccessfulExports != 4 || result.FailedExports != 0 {
			t.Errorf("expected 4 successes, got %d/%d", result.SuccessfulExports, result.FailedExports)
		}
		if result.RunID == "" {
			t.Error("expected run id")
		}

		for i, res := range result.Results {
			if res.URL != urls[i] {
				t.Errorf("result %d out of order: %s", i, res.URL)
			}
			th.AssertFileExists(t, res.File)
		}

		if result.ManifestPath != filepath.Join(dir, ManifestName) {
			t.Errorf("unexpected manifest path: %s", result.ManifestPath)
		}

		var manifest models.BulkExportResult
		if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("manifest should be valid JSON: %v", err)
		}
		if manifest.RunID != result.RunID || manifest.TotalPlaylists != 4 {
			t.Errorf("unexpected manifest: %+v", manifest)
		}

		close(progress)
		count := 0
		for range progress {
			count++
		}
		if count == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("records failures without stopping", func(t *testing.T) {
		dir := t.TempDir()
		exporter, urls := newStubExporter(2)
		urls = append(urls, "https://www.youtube.com/playlist?list=missing")

		result, err := BulkExport(ctx, exporter, urls, BulkExportOpts{OutputDir: dir}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("expected 2 successes and 1 failure, got %d/%d", result.SuccessfulExports, result.FailedExports)
		}

		failed := result.Results[2]
		if failed.Success || !strings.Contains(failed.Error, "playlist not found") {
			t.Errorf("expected not found failure, got %+v", failed)
		}
	})

	t.Run("bounds concurrency", func(t *testing.T) {
		exporter, urls := newStubExporter(12)
		exporter.delay = 20 * time.Millisecond

		if _, err := BulkExport(ctx, exporter, urls, BulkExportOpts{OutputDir: t.TempDir(), NumWorkers: 50}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if exporter.maxSeen > MaxWorkers {
			t.Errorf("expected at most %d concurrent exports, saw %d", MaxWorkers, exporter.maxSeen)
		}
	})

	t.Run("duplicate titles get distinct files", func(t *testing.T) {
		exporter, urls := newStubExporter(2)
		for _, e := range exporter.exports {
			e.Title = "Same"
			e.Filename = "Same.csv"
		}

		result, err := BulkExport(ctx, exporter, urls, BulkExportOpts{OutputDir: t.TempDir(), NumWorkers: 1}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Results[0].File == result.Results[1].File {
			t.Errorf("expected distinct files, both wrote %s", result.Results[0].File)
		}
	})

	t.Run("repeated URL gets a file per export", func(t *testing.T) {
		exporter, urls := newStubExporter(1)
		dir := t.TempDir()
		repeated := []string{urls[0], urls[0], urls[0], urls[0]}

		result, err := BulkExport(ctx, exporter, repeated, BulkExportOpts{OutputDir: dir, NumWorkers: 2}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.SuccessfulExports != 4 {
			t.Fatalf("expected 4 successful exports, got %d", result.SuccessfulExports)
		}

		seen := map[string]bool{}
		for _, res := range result.Results {
			if seen[res.File] {
				t.Errorf("file %s written by more than one export", res.File)
			}
			seen[res.File] = true
			th.AssertFileExists(t, res.File)
		}

		for _, name := range []string{"Playlist 0.csv", "Playlist 0 (PL0).csv", "Playlist 0 (PL0) (2).csv", "Playlist 0 (PL0) (3).csv"} {
			if !seen[filepath.Join(dir, name)] {
				t.Errorf("expected %s among results", name)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read output dir: %v", err)
		}
		if len(entries) != 5 {
			t.Errorf("expected 4 CSV files plus the manifest, got %d entries", len(entries))
		}
	})

	t.Run("rate limited dispatch", func(t *testing.T) {
		exporter, urls := newStubExporter(3)

		start := time.Now()
		if _, err := BulkExport(ctx, exporter, urls, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 20}, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
			t.Errorf("expected pacing of ~50ms between jobs, finished in %v", elapsed)
		}
	})

	t.Run("validation", func(t *testing.T) {
		if _, err := BulkExport(ctx, nil, []string{"x"}, BulkExportOpts{}, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}

		exporter, _ := newStubExporter(0)
		if _, err := BulkExport(ctx, exporter, nil, BulkExportOpts{}, nil); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("output directory cannot be created", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}

		exporter, urls := newStubExporter(1)
		if _, err := BulkExport(ctx, exporter, urls, BulkExportOpts{OutputDir: filepath.Join(file, "sub")}, nil); err == nil {
			t.Error("expected error for unusable output directory")
		}
	})

	t.Run("against the API", func(t *testing.T) {
		api := th.NewFakeYouTubeAPI(t)
		for i := range 3 {
			entries, videos := th.Fixture(5 + i)
			api.AddPlaylist(fmt.Sprintf("PLapi%d", i), fmt.Sprintf("API %d", i), entries)
			api.AddVideos(videos)
		}

		engine := NewExportEngine(newFakeBackedProvider(t, api), shared.NewLogger(&th.FWriter{}))
		urls := []string{
			"https://www.youtube.com/playlist?list=PLapi0",
			"https://www.youtube.com/playlist?list=PLapi1",
			"https://www.youtube.com/playlist?list=PLapi2",
			"https://www.youtube.com/playlist?list=PLnope",
		}

		result, err := BulkExport(ctx, engine, urls, BulkExportOpts{OutputDir: t.TempDir(), NumWorkers: 3}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.SuccessfulExports != 3 || result.FailedExports != 1 {
			t.Errorf("expected 3/1, got %d/%d", result.SuccessfulExports, result.FailedExports)
		}
		if result.Results[2].Records != 7 {
			t.Errorf("expected 7 records for third playlist, got %d", result.Results[2].Records)
		}
	})
}
