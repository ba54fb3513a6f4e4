package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/pmackinlay/taskboard/internal/api/shared"
	"github.com/pmackinlay/taskboard/internal/domain"
	"github.com/pmackinlay/taskboard/internal/service"
)

// TaskHandler handles task-related API requests: CRUD, workflow
// transitions and assignment.
type TaskHandler struct {
	tasks service.TaskService
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(tasks service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list tasks")
		return
	}

	resp := make([]TaskResponse, 0, len(details))
	for _, d := range details {
		resp = append(resp, newTaskResponse(d))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req.Title, req.About)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	details, err := h.tasks.GetTask(r.Context(), task.ID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, newTaskResponse(details))
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(details))
}

// Update handles PUT /tasks/{id}.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if _, err := h.tasks.UpdateTask(r.Context(), taskID, req.Title, req.About); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(details))
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Forward handles POST /tasks/{id}/forward, advancing the task one step in
// the workflow.
func (h *TaskHandler) Forward(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tasks.Forward)
}

// Backward handles POST /tasks/{id}/backward, reverting the task one step
// in the workflow.
func (h *TaskHandler) Backward(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.tasks.Backward)
}

func (h *TaskHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	step func(ctx context.Context, id uuid.UUID) (domain.Status, error),
) {
	taskID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	if _, err := step(r.Context(), taskID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	details, err := h.tasks.GetTask(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newTaskResponse(details))
}

// History handles GET /tasks/{id}/statuses, returning the task's status
// ledger in insertion order.
func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	taskID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	entries, err := h.tasks.StatusHistory(r.Context(), taskID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]StatusEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, StatusEntryResponse{
			Status:  string(e.Status),
			Created: e.CreatedAt,
		})
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Assign handles POST /tasks/{id}/assign, adding a user to the task's
// assignee set. A newly added assignee is notified by email.
func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	taskID, ok := handlePathUUID(w, r, "id")
	if !ok {
		return
	}

	var req AssignRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.tasks.Assign(r.Context(), taskID, req.UserID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusOK)
}
