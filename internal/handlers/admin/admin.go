package admin

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	httpserver "maintdash/internal/http"
	"maintdash/internal/repo"
	"maintdash/internal/session"
)

type Handler struct {
	repo repo.Repo
}

func New(repo repo.Repo) *Handler {
	return &Handler{repo: repo}
}

// ListSessions returns JSON of active sessions.
// Access: admin role, enforced by the router.
func (h *Handler) ListSessions(w http.ResponseWriter, req *http.Request) {
	type item struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Role      string    `json:"role"`
		Provider  string    `json:"provider"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	entries := session.DefaultStore.List()
	out := make([]item, 0, len(entries))
	for _, e := range entries {
		out = append(out, item{
			ID:        e.ID,
			UserID:    e.Session.UserID.String(),
			Role:      string(e.Session.Role),
			Provider:  e.Session.Provider,
			ExpiresAt: e.Session.Expiry,
		})
	}
	httpserver.JSON(w, http.StatusOK, out)
}

// ListSettings handles GET /settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListSettings(r.Context())
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to list settings")
		return
	}
	httpserver.JSON(w, http.StatusOK, map[string]any{"content": items})
}

var settingKey = regexp.MustCompile(`^[a-z][a-z0-9_.-]{0,63}$`)

// PutSetting handles PUT /settings/{key}; the body is any JSON value.
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if !settingKey.MatchString(key) {
		httpserver.Error(w, http.StatusBadRequest, "invalid setting key")
		return
	}
	var value json.RawMessage
	if !httpserver.DecodeJSON(w, r, &value) {
		return
	}
	s, err := h.repo.PutSetting(r.Context(), key, value)
	if err != nil {
		httpserver.StoreError(w, err, "failed to save setting")
		return
	}
	httpserver.JSON(w, http.StatusOK, s)
}
