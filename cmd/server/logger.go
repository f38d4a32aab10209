package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/redact"
)

// setupAppLogger configures the process-wide JSON logger and reports the
// effective configuration without secrets.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("database_url", redact.DSN(cfg.Database.URL)),
		slog.String("cache_driver", cfg.Cache.Driver))
	l.Debug("auth configuration",
		slog.Bool("jwt_secret_present", cfg.Auth.JWTSecret != ""),
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	return l, nil
}
