package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
)

// MigrationTableName is the goose bookkeeping table.
const MigrationTableName = "schema_migrations"

// Migration commands accepted by Migrate.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateReset   = "reset"
	MigrateStatus  = "status"
	MigrateVersion = "version"
)

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level and does not exit; the error is returned to the caller instead.
func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...))
}

// Migrate runs a goose command against db using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	migrationLogger := logger.With(
		slog.String("correlation_id", uuid.New().String()),
		slog.String("component", "migrations"),
		slog.String("command", command),
	)

	goose.SetLogger(&slogGooseLogger{logger: migrationLogger})
	goose.SetBaseFS(Migrations)
	goose.SetTableName(MigrationTableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	startTime := time.Now()
	migrationLogger.Info("starting migration operation")

	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, MigrationsDir)
	case MigrateDown:
		err = goose.DownContext(ctx, db, MigrationsDir)
	case MigrateReset:
		err = goose.ResetContext(ctx, db, MigrationsDir)
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, MigrationsDir)
	case MigrateVersion:
		err = goose.VersionContext(ctx, db, MigrationsDir)
	default:
		return fmt.Errorf(
			"unknown migration command: %s (expected up, down, reset, status, or version)",
			command,
		)
	}

	if err != nil {
		migrationLogger.Error("migration command failed",
			slog.String("error", err.Error()),
			slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))
		return fmt.Errorf("migration command '%s' failed: %w", command, err)
	}

	migrationLogger.Info("migration command executed successfully",
		slog.Int64("duration_ms", time.Since(startTime).Milliseconds()))
	return nil
}
