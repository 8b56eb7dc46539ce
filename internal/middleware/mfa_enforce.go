package middleware

import (
	"net/http"

	"maintdash/internal/auth"
	"maintdash/internal/repo"
)

// MFAEnforce enforces TOTP for local accounts if localRequired is true.
// It permits access to TOTP setup/verify, profile and logout endpoints even
// when MFA is required but not yet set.
func MFAEnforce(r repo.Repo, localRequired bool) func(http.Handler) http.Handler {
	// Allowed paths when user must setup MFA
	allowed := map[string]struct{}{
		"/auth/login":           {},
		"/auth/me":              {},
		"/auth/mfa/totp/setup":  {},
		"/auth/mfa/totp/verify": {},
		"/auth/logout":          {},
		"/healthz":              {},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !localRequired {
				next.ServeHTTP(w, req)
				return
			}

			// Only applies to authenticated local users
			s, ok := auth.SessionFromContext(req.Context())
			if !ok {
				s = auth.ReadSession(req)
			}
			if s == nil || s.Provider != "local" {
				next.ServeHTTP(w, req)
				return
			}

			if _, ok := allowed[req.URL.Path]; ok {
				next.ServeHTTP(w, req)
				return
			}
			if r.UserHasTOTP(req.Context(), s.UserID) {
				next.ServeHTTP(w, req)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"mfa_required"}`))
		})
	}
}
