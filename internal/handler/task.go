package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"trellolite/internal/database"
	"trellolite/internal/model"
)

// taskRequest carries create and update bodies. Absent fields are left
// untouched on update; an empty dueDate or assignedTo clears the field.
type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
	AssignedTo  *string `json:"assignedTo"`
}

// dueDateLayouts are accepted for dueDate: full timestamps and HTML date inputs
var dueDateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.New("invalid due date")
}

// apply copies the provided fields onto t and validates the result
func (req *taskRequest) apply(t *model.Task) string {
	if req.Title != nil {
		t.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil && *req.Status != "" {
		t.Status = *req.Status
	}
	if req.Priority != nil && *req.Priority != "" {
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return "Invalid due date"
		}
		t.DueDate = due
	}
	if req.AssignedTo != nil {
		t.AssignedTo = strings.TrimSpace(*req.AssignedTo)
	}

	switch {
	case t.Title == "":
		return "Title is required"
	case !model.ValidStatus(t.Status):
		return "Invalid status"
	case !model.ValidPriority(t.Priority):
		return "Invalid priority"
	}
	return ""
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	now := h.timestamp()
	t := &model.Task{
		Status:    model.StatusTodo,
		Priority:  model.PriorityMedium,
		CreatedBy: claimsFrom(r.Context()).ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if msg := req.apply(t); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := h.Store.Tasks().Create(r.Context(), t); err != nil {
		h.serverError(w, r, "failed to create task", err)
		return
	}

	h.log(r).Info("[POST /api/tasks] created task", zap.String("task_id", t.ID))
	writeJSON(w, http.StatusCreated, t)
}

// ListTasks handles GET /api/tasks. Creator and assignee are resolved to {_id, username}.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasks, err := h.Store.Tasks().List(ctx)
	if err != nil {
		h.serverError(w, r, "failed to list tasks", err)
		return
	}

	users, err := h.Store.Users().List(ctx)
	if err != nil {
		h.serverError(w, r, "failed to list users", err)
		return
	}
	refs := make(map[string]model.UserRef, len(users))
	for _, u := range users {
		refs[u.ID] = model.UserRef{ID: u.ID, Username: u.Username}
	}

	out := make([]model.PopulatedTask, 0, len(tasks))
	for i := range tasks {
		out = append(out, tasks[i].Populate(refs))
	}
	writeJSON(w, http.StatusOK, out)
}

// UpdateTask handles PUT /api/tasks/{id}
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req taskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ctx := r.Context()
	t, err := h.Store.Tasks().Get(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to load task", err)
		return
	}

	if msg := req.apply(t); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	t.UpdatedAt = h.timestamp()

	if err := h.Store.Tasks().Update(ctx, t); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.serverError(w, r, "failed to update task", err)
		return
	}

	writeJSON(w, http.StatusOK, t)
}

// DeleteTask handles DELETE /api/tasks/{id}
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Store.Tasks().Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		h.serverError(w, r, "failed to delete task", err)
		return
	}

	h.log(r).Info("[DELETE /api/tasks] deleted task", zap.String("task_id", id))
	writeMessage(w, "Task deleted successfully")
}
