// Package main is the entry point of the task tracking API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/tasks-api/internal/config"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"Run a database migration command (up, down, reset, status, version) and exit")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		return handleMigrations(ctx, cfg, migrateCmd, logger)
	}

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}

// loadAppConfig loads the configuration from the environment and config.yaml.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
