// internal/app/features/analytics/routes.go
package analytics

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /projects/{projectID}/analytics.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeReport)
	return r
}
