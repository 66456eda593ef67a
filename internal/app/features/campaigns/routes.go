// internal/app/features/campaigns/routes.go
package campaigns

import (
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the subrouter mounted under /projects/{projectID}/campaigns.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Get("/{"+CampaignParam+"}", h.ServeCampaign)
	r.Group(func(r chi.Router) {
		r.Use(authz.Require(authz.CanEditCampaigns))
		r.Post("/", h.HandleCreate)
		r.Put("/{"+CampaignParam+"}", h.HandleUpdate)
		r.Delete("/{"+CampaignParam+"}", h.HandleDelete)
	})
	return r
}
