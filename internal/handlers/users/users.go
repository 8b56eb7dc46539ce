package users

import (
	"log/slog"
	"net/http"

	"maintdash/internal/auth"
	httpserver "maintdash/internal/http"
	"maintdash/internal/models"
	"maintdash/internal/repo"
	"maintdash/internal/security"
	"maintdash/internal/session"
)

type Handler struct {
	repo repo.Repo
}

func New(repo repo.Repo) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /users with an optional role filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var role *models.Role
	if s := httpserver.QueryString(r, "role"); s != nil {
		rl := models.Role(*s)
		if !rl.Valid() {
			httpserver.Error(w, http.StatusBadRequest, "unknown role")
			return
		}
		role = &rl
	}
	users, err := h.repo.ListUsers(r.Context(), role)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": users})
}

// Technicians handles GET /users/technicians, the assignee picker list.
// Deactivated technicians are left out.
func (h *Handler) Technicians(w http.ResponseWriter, r *http.Request) {
	role := models.RoleTechnician
	users, err := h.repo.ListUsers(r.Context(), &role)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list technicians")
		return
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Active {
			out = append(out, u)
		}
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": out})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.repo.GetUserByID(r.Context(), id)
	if err != nil {
		httpserver.StoreError(w, err, "failed to load user")
		return
	}
	httpserver.JSON(w, http.StatusOK, u)
}

// Create handles POST /users; the password becomes the local credential.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.UserInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(true); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	phc, err := auth.HashPassword(in.Password, auth.DefaultArgonParams())
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}
	u, err := h.repo.CreateUser(r.Context(), in, phc)
	if err != nil {
		httpserver.StoreError(w, err, "failed to create user")
		return
	}
	slog.InfoContext(r.Context(), "user created", "new_user_id", u.ID.String(), "new_role", string(u.Role))
	httpserver.JSON(w, http.StatusCreated, u)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	var in models.UserInput
	if !httpserver.DecodeJSON(w, r, &in) {
		return
	}
	if err := in.Validate(false); err != nil {
		httpserver.Invalid(w, err)
		return
	}
	u, err := h.repo.UpdateUser(r.Context(), id, in)
	if err != nil {
		httpserver.StoreError(w, err, "failed to update user")
		return
	}
	httpserver.JSON(w, http.StatusOK, u)
}

// Activate handles POST /users/{id}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate handles POST /users/{id}/deactivate. The account is denylisted
// in-process and its live sessions are revoked immediately.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := httpserver.URLUUID(w, r, "id")
	if !ok {
		return
	}
	if me, ok := auth.GetUserFromContext(r.Context()); ok && me.ID == id && !active {
		httpserver.Error(w, http.StatusBadRequest, "cannot deactivate your own account")
		return
	}
	if err := h.repo.SetUserActive(r.Context(), id, active); err != nil {
		httpserver.StoreError(w, err, "failed to update user")
		return
	}
	if active {
		security.AllowUser(id)
	} else {
		security.DenyUser(id)
		n := session.DefaultStore.RevokeUser(id)
		slog.InfoContext(r.Context(), "user deactivated", "target_user_id", id.String(), "sessions_revoked", n)
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"id": id, "active": active})
}
