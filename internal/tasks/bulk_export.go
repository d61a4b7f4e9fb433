package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ytcsv/internal/formatter"
	"github.com/desertthunder/ytcsv/internal/models"
	"github.com/desertthunder/ytcsv/internal/shared"
)

const (
	DefaultWorkers = 3
	MaxWorkers     = 10
	ManifestName   = "export_manifest.json"
)

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	OutputDir  string  // Output directory (default: ytcsv_export_{epoch})
	NumWorkers int     // Concurrent workers, clamped to 1..10 (default: 3)
	RateLimit  float64 // Playlists started per second, 0 for no pacing
}

type exportJob struct {
	index int
	url   string
}

// fileNames hands out CSV filenames that are unique within one run.
type fileNames struct {
	mu   sync.Mutex
	used map[string]bool
}

// claim returns export.Filename when it is still free. Otherwise it tries "<title> (<playlist id>).csv",
// then "<title> (<playlist id>) (2).csv", "(3)" and so on.
func (f *fileNames) claim(export *models.PlaylistExport) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := export.Filename
	base := fmt.Sprintf("%s (%s)", export.Title, export.ID)
	for n := 1; f.used[name]; n++ {
		if n == 1 {
			name = formatter.CSVFilename(base)
		} else {
			name = formatter.CSVFilename(fmt.Sprintf("%s (%d)", base, n))
		}
	}
	f.used[name] = true
	return name
}

type exportOutcome struct {
	index  int
	result models.PlaylistExportResult
}

// BulkExport exports several playlist URLs concurrently into CSV files and writes a manifest.
//
// Each worker runs the same sequential pipeline as [Exporter.Export]. A failed playlist is recorded
// in the manifest and does not stop the others. Results keep the order of urls.
func BulkExport(
	ctx context.Context,
	exporter Exporter,
	urls []string,
	opts BulkExportOpts,
	prog chan<- ProgressUpdate,
) (*models.BulkExportResult, error) {
	if exporter == nil {
		return nil, fmt.Errorf("%w: exporter not initialized", shared.ErrServiceUnavailable)
	}
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: at least one playlist URL", shared.ErrMissingArgument)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("ytcsv_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultWorkers
	}
	if opts.NumWorkers > MaxWorkers {
		opts.NumWorkers = MaxWorkers
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan exportJob)
	outcomes := make(chan exportOutcome, len(urls))

	names := &fileNames{used: map[string]bool{}}

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go exportWorker(ctx, &wg, exporter, opts.OutputDir, names, jobs, outcomes)
	}

	go func() {
		defer close(jobs)
		for i, url := range urls {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}

			sendProgress(prog, exportingPlaylistUpdate(i+1, len(urls), url))
			select {
			case jobs <- exportJob{index: i, url: url}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	result := &models.BulkExportResult{
		RunID:           shared.GenerateID(),
		TotalPlaylists:  len(urls),
		OutputDirectory: opts.OutputDir,
		Results:         make([]models.PlaylistExportResult, len(urls)),
	}
	seen := make([]bool, len(urls))

	completed := 0
	for out := range outcomes {
		completed++
		seen[out.index] = true
		result.Results[out.index] = out.result

		if out.result.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(urls), out.result))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(urls), out.result))
		}
	}

	for i, ok := range seen {
		if !ok {
			result.Results[i] = models.PlaylistExportResult{URL: urls[i], Error: "export cancelled"}
			result.FailedExports++
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestName)
	if err := formatter.WriteBulkExportManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// exportWorker exports playlists from the jobs channel until it is closed.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	exporter Exporter,
	dir string,
	names *fileNames,
	jobs <-chan exportJob,
	outcomes chan<- exportOutcome,
) {
	defer wg.Done()

	for job := range jobs {
		outcomes <- exportOutcome{index: job.index, result: exportOne(ctx, exporter, dir, names, job.url)}
	}
}

func exportOne(ctx context.Context, exporter Exporter, dir string, names *fileNames, url string) models.PlaylistExportResult {
	res := models.PlaylistExportResult{URL: url}

	export, err := exporter.Export(ctx, url, nil)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.PlaylistID = export.ID
	res.Title = export.Title
	res.Records = len(export.Records)
	export.Filename = names.claim(export)

	path, err := formatter.WriteCSVExport(export, dir)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.File = path
	res.Success = true
	return res
}
