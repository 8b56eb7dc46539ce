package middleware

import (
	"net/http"

	"maintdash/internal/auth"
	"maintdash/internal/models"
)

var roleLevels = map[models.Role]int{
	models.RoleViewer:     1,
	models.RoleTechnician: 2,
	models.RoleManager:    3,
	models.RoleAdmin:      4,
}

// RoleAtLeast reports whether have ranks at or above want.
func RoleAtLeast(have, want models.Role) bool {
	h, ok := roleLevels[have]
	if !ok {
		return false
	}
	return h >= roleLevels[want]
}

// RequireRole admits requests whose authenticated user ranks at least minRole.
// It must run after RequireAuth, which loads the current user and its role.
func RequireRole(minRole models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			u, ok := auth.GetUserFromContext(req.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !RoleAtLeast(u.Role, minRole) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}
