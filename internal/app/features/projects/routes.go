// internal/app/features/projects/routes.go
package projects

import (
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/go-chi/chi/v5"
)

var errNoAccess = apperr.ErrForbidden

// Routes returns the /projects subrouter. Every route under
// /{projectID} runs behind gate.RequireProject; mount attaches the
// per-project features (members, channels, ...) to that subrouter.
func Routes(h *Handler, gate *authz.Gate, mount func(r chi.Router)) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)

	r.Route("/{"+authz.ProjectParam+"}", func(r chi.Router) {
		r.Use(gate.RequireProject)
		r.Get("/", h.ServeProject)
		r.With(authz.Require(authz.CanEditProject)).Patch("/", h.HandleUpdate)
		r.With(authz.Require(authz.CanDeleteProject)).Delete("/", h.HandleDelete)
		if mount != nil {
			mount(r)
		}
	})
	return r
}
