package notifications

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpserver "maintdash/internal/http"
	"maintdash/internal/httpctx"
	"maintdash/internal/models"
	"maintdash/internal/notify"
	"maintdash/internal/repo"
)

type Handler struct {
	repo repo.Repo
	now  func() time.Time
}

func New(repo repo.Repo) *Handler {
	return &Handler{repo: repo, now: time.Now}
}

// derive recomputes the live notifications from the open tasks.
func (h *Handler) derive(r *http.Request) ([]models.Notification, error) {
	tasks, err := h.repo.ListTasks(r.Context(), models.TaskFilter{OpenOnly: true})
	if err != nil {
		return nil, err
	}
	return notify.Derive(tasks, h.now()), nil
}

// Feed handles GET /notifications for the current user. State rows for
// notifications that no longer derive are garbage-collected on the way.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	uid, ok := httpctx.UserID(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	live, err := h.derive(r)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}
	states, err := h.repo.ListNotificationStates(r.Context(), uid)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to load notification state")
		return
	}
	if stale := notify.Prune(states, live); len(stale) > 0 {
		if err := h.repo.DeleteNotificationStates(r.Context(), uid, stale); err != nil {
			slog.WarnContext(r.Context(), "prune notification state failed", "err", err)
		}
	}
	httpserver.JSON(w, http.StatusOK, notify.ApplyState(live, states))
}

// MarkRead handles POST /notifications/{id}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.repo.MarkNotificationsRead(r.Context(), uid, []string{id}); err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead handles POST /notifications/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	uid, ok := httpctx.UserID(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	live, err := h.derive(r)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}
	ids := make([]string, 0, len(live))
	for _, n := range live {
		ids = append(ids, n.ID)
	}
	if len(ids) > 0 {
		if err := h.repo.MarkNotificationsRead(r.Context(), uid, ids); err != nil {
			httpserver.Error(w, http.StatusInternalServerError, "failed to mark notifications read")
			return
		}
	}
	httpserver.JSON(w, http.StatusOK, map[string]int{"marked": len(ids)})
}

// Dismiss handles DELETE /notifications/{id}.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	uid, id, ok := h.target(w, r)
	if !ok {
		return
	}
	if err := h.repo.DismissNotification(r.Context(), uid, id); err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to dismiss notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// target resolves the current user and a notification id that is currently
// derived; unknown ids answer 404 so no state is stored for them.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (uuid.UUID, string, bool) {
	uid, ok := httpctx.UserID(r.Context())
	if !ok {
		httpserver.Error(w, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, "", false
	}
	id := chi.URLParam(r, "id")
	live, err := h.derive(r)
	if err != nil {
		httpserver.Error(w, http.StatusInternalServerError, "failed to load tasks")
		return uuid.Nil, "", false
	}
	if !notify.Contains(live, id) {
		httpserver.Error(w, http.StatusNotFound, "notification not found")
		return uuid.Nil, "", false
	}
	return uid, id, true
}
