package main

import (
	"context"
	"fmt"

	"killpath/internal/app"
	"killpath/internal/config"
	"killpath/internal/logging"
)

// controllerAPI is the slice of app.App the commands use.
type controllerAPI interface {
	Kill(ctx context.Context, params app.KillParams) app.KillResult
	Find(ctx context.Context, path string) (app.FindResult, error)
	Terminate(ctx context.Context, path string, pids []int, dryRun bool) []app.Event
}

var controllerFactory = newController

// newController wires config, logger and app from flags. The returned func
// flushes the logger.
func newController() (controllerAPI, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	applyFlagOverrides(&cfg)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	opts, err := app.OptionsFromConfig(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, fmt.Errorf("configure: %w", err)
	}
	logger.Debugw("configuration loaded",
		"source", cfg.Source,
		"listing_file", cfg.ListingFile,
		"terminator", cfg.Terminator,
		"listing_timeout", cfg.ListingTimeout,
		"kill_timeout", cfg.KillTimeout,
	)
	return app.New(opts), func() { _ = logger.Sync() }, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if flagSource != "" {
		cfg.Source = flagSource
	}
	if flagListingFile != "" {
		cfg.ListingFile = flagListingFile
	}
	if flagTerminator != "" {
		cfg.Terminator = flagTerminator
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
}
