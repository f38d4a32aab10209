package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/service/auth"
	"github.com/phrazzld/tasks-api/internal/store"
)

// TaskIDParam is the chi URL parameter holding the task ID.
const TaskIDParam = "id"

// identityFromRequest returns the identity placed in the context by the
// authentication middleware.
func identityFromRequest(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "Authorization required")
		return auth.Identity{}, false
	}
	return identity, true
}

// pathTaskID parses the task ID from the URL. A malformed ID cannot name any
// task, so it is reported as not found.
func pathTaskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, TaskIDParam), 10, 64)
	if err != nil || id < 1 {
		HandleAPIError(w, r, store.ErrTaskNotFound, "")
		return 0, false
	}
	return id, true
}

// parseTaskQuery reads page, per_page and done from the query string.
// Non-integer page values fall back to the defaults and an unrecognized done
// value disables the filter.
func parseTaskQuery(r *http.Request) domain.TaskQuery {
	values := r.URL.Query()

	return domain.TaskQuery{
		Page:    intParam(values.Get("page"), domain.DefaultPage),
		PerPage: intParam(values.Get("per_page"), domain.DefaultPerPage),
		Done:    doneParam(values.Get("done")),
	}
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func doneParam(raw string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		v = true
	case "false", "0":
		v = false
	default:
		return nil
	}
	return &v
}
