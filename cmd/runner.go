package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytcsv/internal/services"
	"github.com/desertthunder/ytcsv/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	provider services.Provider
	logger   *log.Logger
	output   io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Config and Provider are normally built per command from the --config flag; setting them skips that step.
type RunnerOpts struct {
	Config   *shared.Config
	Provider services.Provider
	Logger   *log.Logger
	Output   io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:   opts.Config,
		provider: opts.Provider,
		logger:   opts.Logger,
		output:   opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, exportCommand, configCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the injected config or loads it from the command's --config flag,
// then applies the configured log level.
func (r *Runner) loadConfig(cmd *cli.Command) (*shared.Config, error) {
	config := r.config
	if config == nil {
		loaded, err := shared.Load(cmd.String("config"))
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	level, err := shared.ParseLogLevel(config.Log.Level)
	if err != nil {
		return nil, err
	}
	shared.SetLogLevel(r.logger, level)

	return config, nil
}

// newProvider returns the injected provider or a YouTube client built from config.
//
// The returned error wraps [shared.ErrMissingCredentials] when no API key is configured.
func (r *Runner) newProvider(ctx context.Context, config *shared.Config) (services.Provider, error) {
	if r.provider != nil {
		return r.provider, nil
	}

	svc, err := services.NewYouTubeService(ctx, services.YouTubeOpts{
		APIKey:    config.Credentials.YouTube.APIKey,
		Timeout:   config.Provider.Timeout,
		RateLimit: config.Provider.RateLimit,
		Endpoint:  config.Provider.Endpoint,
		Logger:    r.logger,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func isMissingCredentials(err error) bool {
	return errors.Is(err, shared.ErrMissingCredentials)
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
