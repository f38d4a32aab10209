package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the SQLite database at dsn and brings the schema up to date.
// An in-memory DSN is pinned to a single connection so every query sees the
// same database. SQL tracing goes to logger when it is enabled for debug and
// never includes bound values.
func Open(dsn string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         newGormLogger(logger),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates or updates the users and tasks tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&userModel{}, &taskModel{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	if logger == nil || !logger.Enabled(context.Background(), slog.LevelDebug) {
		return gormlogger.Discard
	}

	return gormlogger.New(
		slog.NewLogLogger(logger.Handler(), slog.LevelDebug),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Info,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)
}
