package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api"
	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/validation"
	"github.com/redis/go-redis/v9"
)

// application owns every long-lived dependency of a running server.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	storage *storage
	redis   redis.UniversalClient
	handler http.Handler
}

// newApplication wires storage, cache, services and the router.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	st, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	listingCache, limiter, redisClient := setupCache(ctx, cfg, logger)

	app := &application{
		config:  cfg,
		logger:  logger,
		storage: st,
		redis:   redisClient,
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	verifier := auth.NewIdentityVerifier(jwtService)

	userService, err := service.NewUserService(st.users, auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	taskService, err := service.NewTaskService(st.tasks, validation.NewTaskValidator(), listingCache, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.handler = newRouter(routerDeps{
		logger:  logger,
		auth:    api.NewAuthHandler(userService, verifier, logger),
		tasks:   api.NewTaskHandler(taskService),
		admin:   api.NewAdminHandler(taskService),
		authMW:  middleware.NewAuthMiddleware(verifier),
		limiter: limiter,
	})

	logger.Info("application initialized",
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("cache_backend", listingCache.Stats().Backend))

	return app, nil
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then releases resources.
func (a *application) Run(ctx context.Context) error {
	defer a.cleanup()

	return startHTTPServer(ctx, a.handler, a.config.Server.Port, a.logger)
}

func (a *application) cleanup() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if err := a.storage.Close(); err != nil {
		a.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		return
	}
	a.logger.Info("resources released")
}
