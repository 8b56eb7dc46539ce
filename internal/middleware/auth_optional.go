package middleware

import (
	"net/http"

	"maintdash/internal/auth"
	"maintdash/internal/repo"
)

// OptionalAuth reads the session cookie if present and valid, loads the user
// and injects session and user into context. It never returns 401; on any
// failure it simply passes the request through unauthenticated.
func OptionalAuth(r repo.Repo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			s := auth.ReadSession(req)
			if s == nil {
				next.ServeHTTP(w, req)
				return
			}
			if u, err := r.GetUserByID(req.Context(), s.UserID); err == nil {
				ctx := auth.WithSession(req.Context(), s)
				ctx = auth.WithUser(ctx, &u)
				next.ServeHTTP(w, req.WithContext(ctx))
				return
			}
			// If user load fails, continue unauthenticated
			next.ServeHTTP(w, req)
		})
	}
}
