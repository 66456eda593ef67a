// internal/app/features/timeline/routes.go
package timeline

import "github.com/go-chi/chi/v5"

// Routes returns the subrouter mounted under /projects/{projectID}/timeline.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeTimeline)
	return r
}
