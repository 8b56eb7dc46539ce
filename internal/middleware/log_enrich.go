package middleware

import (
	"context"
	"net/http"

	"maintdash/internal/auth"
)

// private context keys for logging enrichment
type ctxKey string

const (
	ctxLogUserID ctxKey = "log_user_id"
	ctxLogRole   ctxKey = "log_role"
)

// EnrichLogger stores user_id/role into context for logging handlers to pick up.
// The role comes from the loaded user when available, since an admin may have
// changed it after the session was issued.
func EnrichLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if u, ok := auth.GetUserFromContext(ctx); ok {
			ctx = context.WithValue(ctx, ctxLogUserID, u.ID.String())
			ctx = context.WithValue(ctx, ctxLogRole, string(u.Role))
		} else if sess, ok := auth.SessionFromContext(ctx); ok {
			ctx = context.WithValue(ctx, ctxLogUserID, sess.UserID.String())
			ctx = context.WithValue(ctx, ctxLogRole, string(sess.Role))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLogUserID returns the enriched user id if set.
func GetLogUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxLogUserID).(string)
	return v, ok && v != ""
}

// GetLogRole returns the enriched role if set.
func GetLogRole(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxLogRole).(string)
	return v, ok && v != ""
}
