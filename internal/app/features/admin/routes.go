// internal/app/features/admin/routes.go
package admin

import "github.com/go-chi/chi/v5"

// Routes returns the /admin subrouter. Every route requires a system admin.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(h.SessionMgr.RequireAdmin)

	r.Get("/users", h.ServeUsers)
	r.Put("/users/{"+UserParam+"}/banned", h.HandleBan)
	r.Put("/users/{"+UserParam+"}/admin", h.HandleAdmin)
	r.Delete("/users/{"+UserParam+"}", h.HandleDeleteUser)

	r.Get("/projects", h.ServeProjects)
	r.Delete("/projects/{"+ProjectParam+"}", h.HandleDeleteProject)
	return r
}
