package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytcsv/internal/shared"
)

// ConfigInit writes the example configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("Wrote %s\nSet credentials.youtube.api_key or YOUTUBE_API_KEY before exporting.\n", path)
}

// ConfigShow prints the effective configuration as TOML with the API key masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	masked := *config
	masked.Credentials.YouTube.APIKey = maskKey(config.Credentials.YouTube.APIKey)

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(masked); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return r.writePlain("%s", b.String())
}

func maskKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 4:
		return strings.Repeat("*", len(key))
	default:
		return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
	}
}
