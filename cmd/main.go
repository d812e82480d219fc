package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/gourmet/internal/services"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	if p := os.Getenv("GOURMET_CONFIG"); p != "" {
		configPath = p
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	gourmet := services.NewGourmetServiceFromConfig(config.API)

	runner := NewRunner(RunnerOpts{
		Config:       config,
		Service:      gourmet,
		API:          gourmet.API(),
		StreamClient: gourmet.StreamHTTPClient(),
		Logger:       logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "gourmet",
		Usage:    "Browse gourmet recipes and follow their likes live",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not logged in, run `gourmet auth login` first", "error", err)
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}
