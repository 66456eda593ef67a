// internal/app/features/campaigntypes/routes.go
package campaigntypes

import (
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under
// /projects/{projectID}/campaign-types.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Group(func(r chi.Router) {
		r.Use(authz.Require(authz.CanManageChannels))
		r.Post("/", h.HandleCreate)
		r.Patch("/{"+TypeParam+"}", h.HandleUpdate)
		r.Delete("/{"+TypeParam+"}", h.HandleDelete)
	})
	return r
}
