package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redinklabs/redink-api/internal/task"
)

func newTaskStatusRequest(id string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetStatusReturnsSnapshot(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	engine := &fakeTaskEngine{snapshots: map[uuid.UUID]task.Snapshot{
		id: {
			ID:             id,
			Status:         task.StatusRunning,
			Progress:       40,
			CurrentStep:    "processing essay 3/5",
			TotalCount:     5,
			CompletedCount: 2,
		},
	}}
	handler := NewTaskHandler(engine, nil)

	rr := httptest.NewRecorder()
	handler.GetStatus(rr, newTaskStatusRequest(id.String()))

	require.Equal(t, http.StatusOK, rr.Code)

	var payload map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&payload))
	assert.Equal(t, id.String(), payload["task_id"])
	assert.Equal(t, "running", payload["status"])
	assert.Equal(t, float64(40), payload["progress"])
	assert.Equal(t, "processing essay 3/5", payload["current_step"])
	// Result and error are omitted for non-terminal tasks.
	assert.NotContains(t, payload, "result")
	assert.NotContains(t, payload, "error")
}

func TestGetStatusUnknownTask(t *testing.T) {
	t.Parallel()

	handler := NewTaskHandler(&fakeTaskEngine{}, nil)

	rr := httptest.NewRecorder()
	handler.GetStatus(rr, newTaskStatusRequest(uuid.NewString()))

	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "Task not found", resp["error"])
}

func TestGetStatusInvalidID(t *testing.T) {
	t.Parallel()

	handler := NewTaskHandler(&fakeTaskEngine{}, nil)

	rr := httptest.NewRecorder()
	handler.GetStatus(rr, newTaskStatusRequest("not-a-uuid"))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
