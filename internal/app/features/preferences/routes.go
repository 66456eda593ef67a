// internal/app/features/preferences/routes.go
package preferences

import "github.com/go-chi/chi/v5"

// Routes returns the /preferences subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePreferences)
	r.Put("/", h.HandlePutPreferences)
	return r
}
