package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/sqlite"
)

// handleMigrations runs a single migration command and returns. PostgreSQL
// schemas are versioned with goose; SQLite is schema-synced by gorm and only
// supports "up".
func handleMigrations(ctx context.Context, cfg *config.Config, command string, logger *slog.Logger) error {
	logger.Info("executing migration command",
		slog.String("command", command),
		slog.String("driver", cfg.Database.Driver))

	switch cfg.Database.Driver {
	case DriverPostgres:
		db, err := openPostgres(ctx, cfg.Database.URL, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database after migration", slog.String("error", err.Error()))
			}
		}()
		return postgres.Migrate(ctx, db, command, logger)

	case DriverSQLite:
		if command != postgres.MigrateUp {
			return fmt.Errorf("migration command %q is not supported for sqlite; only %q is", command, postgres.MigrateUp)
		}
		gdb, err := sqlite.Open(cfg.Database.URL, logger)
		if err != nil {
			return err
		}
		if db, err := gdb.DB(); err == nil {
			defer func() { _ = db.Close() }()
		}
		logger.Info("sqlite schema is up to date")
		return nil

	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
