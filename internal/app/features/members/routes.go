// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// Routes returns the members subrouter mounted under
// /projects/{projectID}/members.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/transfer", h.HandleTransfer)
	r.With(authz.Require(authz.CanManageMembers)).Patch("/{"+UserParam+"}", h.HandleChangeRole)
	r.Delete("/{"+UserParam+"}", h.HandleRemove)
	return r
}
