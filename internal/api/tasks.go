package api

import (
	"net/http"
	"strconv"

	"github.com/erazemk/inventura/internal/db"
	"github.com/erazemk/inventura/internal/metrics"
	"github.com/erazemk/inventura/internal/model"
	"github.com/erazemk/inventura/internal/store"
)

// TasksHandler handles counting-task endpoints.
type TasksHandler struct {
	DB *db.DB
}

type startRequest struct {
	AssigneeID   *string `json:"assignee_id"`
	AssigneeName *string `json:"assignee_name"`
}

type countRequest struct {
	Items []store.CountInput `json:"items"`
}

type recheckRequest struct {
	Location string                `json:"location"`
	Items    []store.TaskItemInput `json:"items"`
}

// taskID parses the {id} path value. A malformed id is reported as a 400.
func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		jsonError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

// Create handles POST /api/tasks.
func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req store.CreateTaskInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := store.CreateTask(r.Context(), h.DB, req)
	if err != nil {
		storeError(w, err, "failed to create task")
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]int64{"id": id})
}

// List handles GET /api/tasks with an optional status filter.
func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.TaskStatus(r.URL.Query().Get("status"))
	tasks, err := store.ListTasks(r.Context(), h.DB, status)
	if err != nil {
		storeError(w, err, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	jsonResponse(w, http.StatusOK, tasks)
}

// Start handles POST /api/tasks/{id}/start.
func (h *TasksHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	// An empty body means starting without an assignee.
	var req startRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			jsonError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := store.StartTask(r.Context(), h.DB, id, req.AssigneeID, req.AssigneeName); err != nil {
		storeError(w, err, "failed to start task")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "task started"})
}

// Unassign handles POST /api/tasks/{id}/unassign.
func (h *TasksHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := store.UnassignTask(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to unassign task")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "task unassigned"})
}

// Count handles POST /api/tasks/{id}/count.
func (h *TasksHandler) Count(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req countRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.RecordCounts(r.Context(), h.DB, id, req.Items); err != nil {
		storeError(w, err, "failed to record counts")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "counts recorded"})
}

// Complete handles POST /api/tasks/{id}/complete.
func (h *TasksHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	result, err := store.CompleteTask(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to complete task")
		return
	}

	outcome := "completed"
	if !result.Completed {
		outcome = "flagged"
	}
	metrics.Completions.WithLabelValues(outcome).Inc()

	jsonResponse(w, http.StatusOK, result)
}

// Approve handles POST /api/tasks/{id}/items/{gtin}/approve.
func (h *TasksHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	gtin := r.PathValue("gtin")
	if gtin == "" {
		jsonError(w, http.StatusBadRequest, "invalid gtin")
		return
	}

	if err := store.ApproveItem(r.Context(), h.DB, id, gtin); err != nil {
		storeError(w, err, "failed to approve item")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item approved"})
}

// Recheck handles POST /api/tasks/{id}/recheck.
func (h *TasksHandler) Recheck(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var req recheckRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newID, err := store.RecheckTask(r.Context(), h.DB, id, req.Location, req.Items)
	if err != nil {
		storeError(w, err, "failed to recheck task")
		return
	}
	jsonResponse(w, http.StatusCreated, map[string]int64{"id": newID})
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := store.DeleteTask(r.Context(), h.DB, id); err != nil {
		storeError(w, err, "failed to delete task")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "task deleted"})
}
