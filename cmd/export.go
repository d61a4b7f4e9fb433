package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytcsv/internal/shared"
	"github.com/desertthunder/ytcsv/internal/tasks"
	"github.com/desertthunder/ytcsv/internal/ui"
)

// Export writes one CSV file per playlist URL argument plus an export manifest.
//
// Returns an error when any playlist failed, so the process exits non-zero.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return fmt.Errorf("%w: at least one playlist URL", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	provider, err := r.newProvider(ctx, config)
	if err != nil {
		return err
	}

	workers := int(cmd.Int("workers"))
	if workers < 1 || workers > tasks.MaxWorkers {
		return fmt.Errorf("%w: --workers must be between 1 and %d, got %d", shared.ErrInvalidInput, tasks.MaxWorkers, workers)
	}

	engine := tasks.NewExportEngine(provider, r.logger)
	opts := tasks.BulkExportOpts{
		OutputDir:  cmd.String("output"),
		NumWorkers: workers,
		RateLimit:  cmd.Float("rate"),
	}

	r.logger.Info("starting export", "playlists", len(urls), "workers", workers)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	result, err := tasks.BulkExport(ctx, engine, urls, opts, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	if err := r.writePlain("\n%s", ui.ExportSummary(ui.Styles, result)); err != nil {
		return err
	}

	if result.FailedExports > 0 {
		return fmt.Errorf("%d of %d playlists failed to export", result.FailedExports, result.TotalPlaylists)
	}
	return nil
}
