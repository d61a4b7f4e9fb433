package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytcsv/internal/server"
	"github.com/desertthunder/ytcsv/internal/tasks"
	"github.com/desertthunder/ytcsv/internal/web"
)

// Serve runs the HTTP service until SIGINT or SIGTERM.
//
// Without an API key the server still starts; export requests then fail with a configuration error.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("host") {
		config.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		config.Server.Port = int(cmd.Int("port"))
	}

	provider, err := r.newProvider(ctx, config)
	switch {
	case isMissingCredentials(err):
		r.logger.Warn("YOUTUBE_API_KEY is not set; export requests will fail until it is configured")
	case err != nil:
		return err
	}

	router := server.NewRouter(server.RouterOpts{
		Exporter:    tasks.NewExportEngine(provider, r.logger),
		Static:      web.NewStaticHandler(),
		CORSOrigins: config.Server.CORSOrigins,
		Logger:      r.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.NewServer(config.Server.Addr(), router, r.logger).Run(ctx)
}
