package api

import (
	"net/http"

	"github.com/phrazzld/tasks-api/internal/api/shared"
	"github.com/phrazzld/tasks-api/internal/service"
)

// TaskHandler serves the /tasks endpoints. Every operation is scoped to the
// authenticated caller.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	page, err := h.tasks.List(r.Context(), identity.UserID, parseTaskQuery(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, page)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}

	body, err := shared.ReadBody(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Create(r.Context(), identity.UserID, body)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, task)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), identity.UserID, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Update handles PATCH /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathTaskID(w, r)
	if !ok {
		return
	}

	body, err := shared.ReadBody(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.tasks.Update(r.Context(), identity.UserID, id, body)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := pathTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), identity.UserID, id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: "Task deleted"})
}
