package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redinklabs/redink-api/internal/api/shared"
)

// TaskHandler handles task status HTTP requests.
type TaskHandler struct {
	engine TaskEngine
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(engine TaskEngine, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		engine: engine,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// GetStatus handles GET /api/tasks/{id} requests. A poller always gets
// a well-formed response: a snapshot of the task's current fields, or
// a 404 JSON error for an unknown id.
func (h *TaskHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task id")
		return
	}

	snapshot, ok := h.engine.GetStatus(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}
