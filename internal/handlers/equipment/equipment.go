package equipment

import (
	"net/http"

	"maintdash/internal/export"
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

// List handles GET /equipment.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListEquipment(r.Context())
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list equipment")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

// Export handles GET /equipment/export as a CSV download.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListEquipment(r.Context())
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list equipment")
		return
	}
	export.Download(w, r, "equipment", items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	e, err := h.repo.GetEquipment(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load equipment")
		return
	}
	httpserver.JSON(w, http.StatusOK, e)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.EquipmentInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	e, err := h.repo.CreateEquipment(r.Context(), in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to create equipment")
		return
	}
	httpserver.JSON(w, http.StatusCreated, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.EquipmentInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	e, err := h.repo.UpdateEquipment(r.Context(), id, in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update equipment")
		return
	}
	httpserver.JSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteEquipment(r.Context(), id); err != nil {
		httpserver.StoreError(w, err, "failed to delete equipment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
