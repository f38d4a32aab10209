package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/sqlite"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// storage bundles the stores of one database together with the pool that
// must be closed on shutdown.
type storage struct {
	users store.UserStore
	tasks store.TaskStore
	db    *sql.DB
}

func (s *storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// openStorage connects to the configured database and brings its schema up
// to date before any request is served.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Database.Driver {
	case DriverPostgres:
		db, err := openPostgres(ctx, cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db, postgres.MigrateUp, logger); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		return &storage{
			users: postgres.NewPostgresUserStore(db, logger),
			tasks: postgres.NewPostgresTaskStore(db, logger),
			db:    db,
		}, nil

	case DriverSQLite:
		gdb, err := sqlite.Open(cfg.Database.URL, logger)
		if err != nil {
			return nil, err
		}
		db, err := gdb.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access sqlite connection pool: %w", err)
		}
		logger.Info("sqlite database ready", slog.String("dsn", redact.DSN(cfg.Database.URL)))
		return &storage{
			users: sqlite.NewUserStore(gdb, logger),
			tasks: sqlite.NewTaskStore(gdb, logger),
			db:    db,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// openPostgres opens a pgx-backed pool and verifies the connection.
func openPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established", slog.String("dsn", redact.DSN(dsn)))
	return db, nil
}
