// internal/app/features/campaigntypes/handler.go
package campaigntypes

import (
	"context"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// TypeParam is the chi URL parameter holding the campaign type id.
const TypeParam = "typeID"

// Handler serves the campaign type endpoints of a project.
type Handler struct {
	Planning *planning.Service
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *planning.Service, logger *zap.Logger) *Handler {
	return &Handler{Planning: svc, Log: logger}
}

// ServeList serves GET /projects/{projectID}/campaign-types.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Planning.CampaignTypes(ctx, a.Project.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"campaign_types": list})
}

type typeInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HandleCreate serves POST /projects/{projectID}/campaign-types.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	var in typeInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ct, err := h.Planning.CreateCampaignType(ctx, a.Project.ID, planning.TypeInput{Name: in.Name, Color: in.Color})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Created(w, ct)
}

type typePatch struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// HandleUpdate serves PATCH /projects/{projectID}/campaign-types/{typeID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	id, ok := shared.ObjectIDParam(r, TypeParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrCampaignTypeNotFound)
		return
	}
	var in typePatch
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ct, err := h.Planning.UpdateCampaignType(ctx, a.Project.ID, id, planning.TypePatch{Name: in.Name, Color: in.Color})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, ct)
}

// HandleDelete serves DELETE /projects/{projectID}/campaign-types/{typeID}.
// Deleting the last type is a conflict.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	id, ok := shared.ObjectIDParam(r, TypeParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrCampaignTypeNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Planning.DeleteCampaignType(ctx, a.Project.ID, id); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.NoContent(w)
}
