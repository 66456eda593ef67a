// internal/app/features/settings/routes.go
package settings

import (
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /projects/{projectID}/settings.
// Any member may read; writes need EditSettings.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/phases", h.ServePhases)
	r.Get("/branding", h.ServeBranding)
	r.Group(func(r chi.Router) {
		r.Use(authz.Require(authz.CanEditSettings))
		r.Put("/phases", h.HandlePutPhases)
		r.Put("/branding", h.HandlePutBranding)
	})
	return r
}
