package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"maintdash/internal/repo"
)

// ProfileHandler returns the signed-in user.
// GET /auth/me
func ProfileHandler(r repo.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		sess := ReadSession(req)
		if sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		user, err := r.GetUserByID(req.Context(), sess.UserID)
		if err != nil {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		resp := map[string]any{
			"user":         user,
			"role":         user.Role,
			"provider":     sess.Provider,
			"mfa_enabled":  r.UserHasTOTP(req.Context(), user.ID),
			"session_ends": sess.Expiry,
		}
		if last, ok := r.GetLastSuccessfulLoginByUsername(req.Context(), strings.ToLower(user.Email)); ok {
			resp["last_login"] = last
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// UpdateProfileHandler allows a logged-in user to update optional profile fields.
// PUT /auth/profile
// Body: { "name": "...", "phone": "...", "avatar_url": "..." }
func UpdateProfileHandler(r repo.Repo) http.HandlerFunc {
	type bodyT struct {
		Name      *string `json:"name"`
		Phone     *string `json:"phone"`
		AvatarURL *string `json:"avatar_url"`
	}
	return func(w http.ResponseWriter, req *http.Request) {
		sess := ReadSession(req)
		if sess == nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var b bodyT
		if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 1<<20)).Decode(&b); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		norm := func(p *string) *string {
			if p == nil {
				return nil
			}
			s := strings.TrimSpace(*p)
			return &s
		}
		if b.Name != nil && strings.TrimSpace(*b.Name) == "" {
			http.Error(w, "name cannot be empty", http.StatusBadRequest)
			return
		}
		if err := r.UpdateUserProfile(req.Context(), sess.UserID, norm(b.Name), norm(b.AvatarURL), norm(b.Phone)); err != nil {
			http.Error(w, "update failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
