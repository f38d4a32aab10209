package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/tasks-api/internal/api"
	"github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/ratelimit"
)

// Rate limit scopes for the unauthenticated auth endpoints.
const (
	scopeRegister = "register"
	scopeLogin    = "login"
)

type routerDeps struct {
	logger  *slog.Logger
	auth    *api.AuthHandler
	tasks   *api.TaskHandler
	admin   *api.AdminHandler
	authMW  *middleware.AuthMiddleware
	limiter ratelimit.Limiter
}

// newRouter mounts every route of the API.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewTraceMiddleware(deps.logger))
	r.Use(chimiddleware.Recoverer)

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.MethodNotAllowed)

	r.Get("/", api.Root)
	r.Get("/health", api.Health)

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimit(deps.limiter, scopeRegister, middleware.ClientIP)).
			Post("/register", deps.auth.Register)
		r.With(middleware.RateLimit(deps.limiter, scopeLogin, middleware.ClientIP)).
			Post("/login", deps.auth.Login)
		r.Post("/refresh", deps.auth.Refresh)
		r.With(deps.authMW.Authenticate).Get("/me", deps.auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.authMW.Authenticate)

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", deps.tasks.List)
			r.Post("/", deps.tasks.Create)
			r.Get("/{"+api.TaskIDParam+"}", deps.tasks.Get)
			r.Patch("/{"+api.TaskIDParam+"}", deps.tasks.Update)
			r.Delete("/{"+api.TaskIDParam+"}", deps.tasks.Delete)
		})

		r.With(middleware.RequireRole(domain.RoleAdmin)).
			Get("/admin/cache/stats", deps.admin.CacheStats)
	})

	return r
}
