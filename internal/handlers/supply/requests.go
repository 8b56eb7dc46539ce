// Package supply serves material requests, proforma invoices and the
// invoice document upload.
package supply

import (
	"net/http"

	httpserver "maintdash/internal/http"
	"maintdash/internal/httpctx"
	"maintdash/internal/models"
	"maintdash/internal/repo"
	"maintdash/internal/storage"
)

type Handler struct {
	repo     repo.Repo
	docs     storage.DocumentStore
	maxBytes int64
}

// New builds the handler. maxBytes caps the uploaded document size.
func New(repo repo.Repo, docs storage.DocumentStore, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &Handler{repo: repo, docs: docs, maxBytes: maxBytes}
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	var status *models.MaterialRequestStatus
	if s := httpserver.QueryString(r, "status"); s != nil {
		st := models.MaterialRequestStatus(*s)
		if !st.Valid() {
			httpserver.Error(w, http.StatusBadRequest, "unknown status")
			return
		}
		status = &st
	}
	items, err := h.repo.ListMaterialRequests(r.Context(), status)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list material requests")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	mr, err := h.repo.GetMaterialRequest(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load material request")
		return
	}
	httpserver.JSON(w, http.StatusOK, mr)
}

// CreateRequest handles POST /material-requests; the caller is the requester.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	uid, ok := httpctx.UserID(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var in models.MaterialRequestInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	mr, err := h.repo.CreateMaterialRequest(r.Context(), uid, in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to create material request")
		return
	}
	httpserver.JSON(w, http.StatusCreated, mr)
}

func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.MaterialRequestInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	mr, err := h.repo.UpdateMaterialRequest(r.Context(), id, in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update material request")
		return
	}
	httpserver.JSON(w, http.StatusOK, mr)
}

// SetRequestStatus handles POST /material-requests/{id}/status {"status": ...}.
func (h *Handler) SetRequestStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status models.MaterialRequestStatus `json:"status"`
	}
	if !httpserver.DecodeJSON(w, r, &body) {
		return
	}
	if !body.Status.Valid() {
		httpserver.Error(w, http.StatusBadRequest, "unknown status")
		return
	}
	mr, err := h.repo.SetMaterialRequestStatus(r.Context(), id, body.Status)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update material request")
		return
	}
	httpserver.JSON(w, http.StatusOK, mr)
}

func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.repo.DeleteMaterialRequest(r.Context(), id); err != nil {
		httpserver.StoreError(w, err, "failed to delete material request")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
