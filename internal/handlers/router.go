package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"maintdash/internal/auth"
	"maintdash/internal/handlers/admin"
	"maintdash/internal/handlers/equipment"
	"maintdash/internal/handlers/notifications"
	"maintdash/internal/handlers/reference"
	"maintdash/internal/handlers/reports"
	"maintdash/internal/handlers/supply"
	"maintdash/internal/handlers/tasks"
	"maintdash/internal/handlers/users"
	"maintdash/internal/middleware"
	"maintdash/internal/models"
	"maintdash/internal/repo"
	"maintdash/internal/storage"
)

// Deps carries what handlers need beyond the repo.
type Deps struct {
	Documents      storage.DocumentStore
	UploadMaxBytes int64
}

// RegisterAuthRoutes mounts login, logout, profile and MFA enrolment.
func RegisterAuthRoutes(mux chi.Router, r repo.Repo) {
	mux.Post("/auth/login", auth.LoginHandler(r))
	mux.Post("/auth/logout", auth.LogoutHandler())
	mux.Get("/auth/me", auth.ProfileHandler(r))
	mux.Put("/auth/profile", auth.UpdateProfileHandler(r))
	mux.Post("/auth/set-password", auth.SetPasswordHandler(r))
	mux.Get("/auth/mfa/totp/setup", auth.TOTPSetupBeginHandler(r))
	mux.Post("/auth/mfa/totp/verify", auth.TOTPSetupVerifyHandler(r))
}

// RegisterRoutes mounts the API. Reads need viewer, task completion and
// material requests need technician, other writes need manager, and user
// and settings administration need admin.
func RegisterRoutes(mux chi.Router, r repo.Repo, deps Deps) {
	eq := equipment.New(r)
	tk := tasks.New(r)
	ref := reference.New(r)
	u := users.New(r)
	adm := admin.New(r)
	nt := notifications.New(r)
	rp := reports.New(r)
	sp := supply.New(r, deps.Documents, deps.UploadMaxBytes)

	viewer := middleware.RequireRole(models.RoleViewer)
	technician := middleware.RequireRole(models.RoleTechnician)
	manager := middleware.RequireRole(models.RoleManager)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Get("/meta/enums", ref.Enums)

	mux.Group(func(api chi.Router) {
		// Apply auth to the whole group ONCE
		api.Use(middleware.RequireAuth(r))

		api.Route("/equipment", func(sr chi.Router) {
			sr.With(viewer).Get("/", eq.List)
			sr.With(viewer).Get("/export", eq.Export)
			sr.With(viewer).Get("/{id}", eq.Get)
			sr.With(manager).Post("/", eq.Create)
			sr.With(manager).Put("/{id}", eq.Update)
			sr.With(manager).Delete("/{id}", eq.Delete)
		})

		api.Route("/tasks", func(sr chi.Router) {
			sr.With(viewer).Get("/", tk.List)
			sr.With(viewer).Get("/export", tk.Export)
			sr.With(viewer).Get("/{id}", tk.Get)
			sr.With(manager).Post("/", tk.Create)
			sr.With(manager).Put("/{id}", tk.Update)
			sr.With(technician).Post("/{id}/complete", tk.Complete)
			sr.With(manager).Delete("/{id}", tk.Delete)
		})

		api.Route("/categories", func(sr chi.Router) {
			sr.With(viewer).Get("/", ref.ListCategories)
			sr.With(viewer).Get("/{id}", ref.GetCategory)
			sr.With(manager).Post("/", ref.CreateCategory)
			sr.With(manager).Put("/{id}", ref.UpdateCategory)
			sr.With(manager).Delete("/{id}", ref.DeleteCategory)
		})

		api.Route("/departments", func(sr chi.Router) {
			sr.With(viewer).Get("/", ref.ListDepartments)
			sr.With(viewer).Get("/{id}", ref.GetDepartment)
			sr.With(manager).Post("/", ref.CreateDepartment)
			sr.With(manager).Put("/{id}", ref.UpdateDepartment)
			sr.With(manager).Delete("/{id}", ref.DeleteDepartment)
		})

		api.Route("/users", func(sr chi.Router) {
			sr.With(viewer).Get("/technicians", u.Technicians)
			sr.With(adminOnly).Get("/", u.List)
			sr.With(adminOnly).Post("/", u.Create)
			sr.With(adminOnly).Get("/{id}", u.Get)
			sr.With(adminOnly).Put("/{id}", u.Update)
			sr.With(adminOnly).Post("/{id}/activate", u.Activate)
			sr.With(adminOnly).Post("/{id}/deactivate", u.Deactivate)
		})

		api.Route("/settings", func(sr chi.Router) {
			sr.With(viewer).Get("/", adm.ListSettings)
			sr.With(adminOnly).Put("/{key}", adm.PutSetting)
		})

		api.Route("/notifications", func(sr chi.Router) {
			sr.Use(viewer)
			sr.Get("/", nt.Feed)
			sr.Post("/read-all", nt.MarkAllRead)
			sr.Post("/{id}/read", nt.MarkRead)
			sr.Delete("/{id}", nt.Dismiss)
		})

		api.With(viewer).Get("/reports/{kind}", rp.Get)

		api.Route("/material-requests", func(sr chi.Router) {
			sr.With(viewer).Get("/", sp.ListRequests)
			sr.With(viewer).Get("/{id}", sp.GetRequest)
			sr.With(technician).Post("/", sp.CreateRequest)
			sr.With(technician).Put("/{id}", sp.UpdateRequest)
			sr.With(manager).Post("/{id}/status", sp.SetRequestStatus)
			sr.With(manager).Delete("/{id}", sp.DeleteRequest)
		})

		api.Route("/invoices", func(sr chi.Router) {
			sr.With(viewer).Get("/", sp.ListInvoices)
			sr.With(viewer).Get("/{id}", sp.GetInvoice)
			sr.With(viewer).Get("/{id}/document", sp.Document)
			sr.With(manager).Post("/{id}/status", sp.SetInvoiceStatus)
			sr.With(manager).Delete("/{id}", sp.DeleteInvoice)
		})
		api.With(manager).Post("/upload", sp.Upload)

		// Admin routes
		api.With(adminOnly).Get("/admin/sessions", adm.ListSessions)
	})
}
