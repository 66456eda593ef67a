// internal/app/features/channels/routes.go
package channels

import (
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the channels subrouter mounted under
// /projects/{projectID}/channels. Reads need view access; writes need
// ManageChannels.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Group(func(r chi.Router) {
		r.Use(authz.Require(authz.CanManageChannels))
		r.Post("/", h.HandleCreate)
		r.Put("/order", h.HandleReorder)
		r.Patch("/{"+ChannelParam+"}", h.HandleUpdate)
		r.Delete("/{"+ChannelParam+"}", h.HandleDelete)
	})
	return r
}
