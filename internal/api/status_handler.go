package api

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
)

// ServiceName is reported by the root endpoint.
const ServiceName = "Task Manager API"

// Root handles GET /.
func Root(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, StatusResponse{Status: "ok", Service: ServiceName})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// NotFound renders unknown routes as JSON.
func NotFound(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusNotFound, "Resource not found")
}

// MethodNotAllowed renders unsupported methods as JSON.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
