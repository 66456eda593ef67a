// internal/app/features/invitations/routes.go
package invitations

import (
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

// ProjectRoutes returns the subrouter mounted under
// /projects/{projectID}/invitations. Every route needs InviteMembers.
func ProjectRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authz.Require(authz.CanInvite))
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/{"+InvitationParam+"}/resend", h.HandleResend)
	r.Delete("/{"+InvitationParam+"}", h.HandleCancel)
	return r
}

// Routes returns the public /invite subrouter.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLanding)
	r.With(h.SessionMgr.RequireSignedIn).Post("/accept", h.HandleAccept)
	return r
}
