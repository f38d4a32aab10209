package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/cache"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// CacheStatsProvider reports listing cache counters.
type CacheStatsProvider interface {
	CacheStats() cache.StatsSnapshot
}

// AdminHandler serves operator endpoints. Routes are additionally guarded by
// middleware.RequireRole; the handler re-checks the role itself.
type AdminHandler struct {
	stats CacheStatsProvider
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(stats CacheStatsProvider) *AdminHandler {
	return &AdminHandler{stats: stats}
}

// CacheStats handles GET /admin/cache/stats.
func (h *AdminHandler) CacheStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	snapshot := h.stats.CacheStats()
	logger.FromContextOrDefault(r.Context(), slog.Default()).Info("cache stats requested",
		slog.String("user_id", identity.UserID.String()),
		slog.Uint64("hits", snapshot.Hits),
		slog.Uint64("misses", snapshot.Misses))

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return auth.Identity{}, false
	}
	if !identity.HasRole(domain.RoleAdmin) {
		HandleAPIError(w, r, domain.ErrForbidden, "")
		return auth.Identity{}, false
	}
	return identity, true
}
