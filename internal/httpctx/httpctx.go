package httpctx

import (
	"context"

	"github.com/google/uuid"

	"maintdash/internal/auth"
	"maintdash/internal/models"
)

// Session returns the session from context if available.
func Session(ctx context.Context) (*models.Session, bool) {
	return auth.SessionFromContext(ctx)
}

// User returns the user pointer from context if available.
func User(ctx context.Context) (*models.User, bool) {
	return auth.GetUserFromContext(ctx)
}

// UserID returns a user id from context from either session or user.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	if s, ok := auth.SessionFromContext(ctx); ok {
		return s.UserID, true
	}
	if u, ok := auth.GetUserFromContext(ctx); ok {
		return u.ID, true
	}
	return uuid.Nil, false
}

// Role returns the current user's role, preferring the loaded user over the
// role captured in the session at login.
func Role(ctx context.Context) (models.Role, bool) {
	if u, ok := auth.GetUserFromContext(ctx); ok {
		return u.Role, true
	}
	if s, ok := auth.SessionFromContext(ctx); ok {
		return s.Role, true
	}
	return "", false
}
