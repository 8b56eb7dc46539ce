package tasks

import (
	"log/slog"
	"net/http"
	"time"

	"maintdash/internal/export"
	httpserver "maintdash/internal/http"
	"maintdash/internal/models"
	"maintdash/internal/repo"
)

type Handler struct {
	repo repo.Repo
	now  func() time.Time
}

func New(repo repo.Repo) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

// filter builds a TaskFilter from the query string:
// status, priority, equipment_id, assigned_to, from, to, q.
func filter(r *http.Request) (models.TaskFilter, error) {
	var f models.TaskFilter
	if s := httpserver.QueryString(r, "status"); s != nil {
		st := models.TaskStatus(*s)
		if !st.Valid() {
			return f, models.ErrInvalidInput
		}
		f.Status = &st
	}
	if s := httpserver.QueryString(r, "priority"); s != nil {
		p := models.Priority(*s)
		if !p.Valid() {
			return f, models.ErrInvalidInput
		}
		f.Priority = &p
	}
	var err error
	if f.EquipmentID, err = httpserver.QueryUUID(r, "equipment_id"); err != nil {
		return f, err
	}
	if f.AssignedTo, err = httpserver.QueryUUID(r, "assigned_to"); err != nil {
		return f, err
	}
	for _, d := range []struct {
		name string
		dst  **string
	}{{"from", &f.From}, {"to", &f.To}} {
		if v := httpserver.QueryString(r, d.name); v != nil {
			if _, ok := models.ParseDate(*v); !ok {
				return f, models.ErrInvalidInput
			}
			*d.dst = v
		}
	}
	f.Query = httpserver.QueryString(r, "q")
	return f, nil
}

// List handles GET /tasks with optional filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filter(r)
	if err != nil {
		httpserver.Error(w, http.StatusBadRequest, "invalid filter")
		return
	}
	items, err := h.repo.ListTasks(r.Context(), f)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// Export handles GET /tasks/export; it honours the same filters as List.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	f, err := filter(r)
	if err != nil {
		httpserver.Error(w, http.StatusBadRequest, "invalid filter")
		return
	}
	items, err := h.repo.ListTasks(r.Context(), f)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	export.Download(w, r, "maintenance-tasks", items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.repo.GetTask(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load task")
		return
	}
	httpserver.JSON(w, http.StatusOK, t)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.TaskInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	t, err := h.repo.CreateTask(r.Context(), in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to create task")
		return
	}
	httpserver.JSON(w, http.StatusCreated, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.TaskInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	t, err := h.repo.UpdateTask(r.Context(), id, in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update task")
		return
	}
	httpserver.JSON(w, http.StatusOK, t)
}

// Complete handles POST /tasks/{id}/complete. completed_date is always today.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var c models.TaskCompletion
	if !httpserver.DecodeJSON(w, r, &c) {
		return
	}
	if err := c.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	c.CompletedDate = h.now().Format(models.DateLayout)
	t, err := h.repo.CompleteTask(r.Context(), id, c)
	if err != nil {
		httpserver.StoreError(w, err, "failed to complete task")
		return
	}
	slog.InfoContext(r.Context(), "task completed", "task_id", id.String(), "status", string(t.Status))
	httpserver.JSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteTask(r.Context(), id); err != nil {
		httpserver.StoreError(w, err, "failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
