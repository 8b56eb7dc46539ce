// Package reference serves the lookup tables tasks and equipment point at:
// categories, departments and the display metadata for enums.
package reference

import (
	"net/http"

	httpserver "maintdash/internal/http"
	"maintdash/internal/models"
	"maintdash/internal/repo"
)

type Handler struct {
	repo repo.Repo
}

func New(repo repo.Repo) *Handler {
	return &Handler{repo: repo}
}

// Enums handles GET /meta/enums.
func (h *Handler) Enums(w http.ResponseWriter, r *http.Request) {
	httpserver.JSON(w, http.StatusOK, models.EnumDisplays())
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListCategories(r.Context())
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.repo.GetCategory(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load category")
		return
	}
	httpserver.JSON(w, http.StatusOK, c)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in models.CategoryInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	c, err := h.repo.CreateCategory(r.Context(), in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to create category")
		return
	}
	httpserver.JSON(w, http.StatusCreated, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.CategoryInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	c, err := h.repo.UpdateCategory(r.Context(), id, in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update category")
		return
	}
	httpserver.JSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		httpserver.StoreError(w, err, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListDepartments(r.Context())
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list departments")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

func (h *Handler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	d, err := h.repo.GetDepartment(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load department")
		return
	}
	httpserver.JSON(w, http.StatusOK, d)
}

func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var in models.DepartmentInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	d, err := h.repo.CreateDepartment(r.Context(), in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to create department")
		return
	}
	httpserver.JSON(w, http.StatusCreated, d)
}

func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.DepartmentInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	d, err := h.repo.UpdateDepartment(r.Context(), id, in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update department")
		return
	}
	httpserver.JSON(w, http.StatusOK, d)
}

func (h *Handler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteDepartment(r.Context(), id); err != nil {
		httpserver.StoreError(w, err, "failed to delete department")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
