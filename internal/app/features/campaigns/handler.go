// internal/app/features/campaigns/handler.go
package campaigns

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// CampaignParam is the chi URL parameter holding the campaign id.
const CampaignParam = "campaignID"

// Handler serves the campaign endpoints of a project.
type Handler struct {
	Planning *planning.Service
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *planning.Service, logger *zap.Logger) *Handler {
	return &Handler{Planning: svc, Log: logger}
}

// ServeList serves GET /projects/{projectID}/campaigns. Optional query
// parameters: year, and phase (phase1|phase2|phase3) to keep only campaigns
// overlapping that phase.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	var f planning.CampaignFilter
	if r.URL.Query().Has("year") {
		f.Year = shared.Year(r, h.Planning.Now())
	}
	f.Phase = strings.TrimSpace(r.URL.Query().Get("phase"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Planning.Campaigns(ctx, a.Project.ID, f)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"campaigns": list})
}

// ServeCampaign serves GET /projects/{projectID}/campaigns/{campaignID}.
func (h *Handler) ServeCampaign(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	id, ok := shared.ObjectIDParam(r, CampaignParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrCampaignNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Planning.Campaign(ctx, a.Project.ID, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// campaignInput accepts dates as ISO strings, RFC 3339 timestamps, Unix
// milliseconds or {"seconds","nanoseconds"} objects.
type campaignInput struct {
	Name          string   `json:"name"`
	ChannelID     string   `json:"channel_id"`
	TypeID        string   `json:"type_id"`
	StartDate     any      `json:"start_date"`
	EndDate       any      `json:"end_date"`
	BudgetPlanned *float64 `json:"budget_planned"`
	BudgetActual  *float64 `json:"budget_actual"`
}

func (in campaignInput) toService() planning.CampaignInput {
	return planning.CampaignInput{
		Name:          in.Name,
		ChannelID:     strings.TrimSpace(in.ChannelID),
		TypeID:        strings.TrimSpace(in.TypeID),
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		BudgetPlanned: in.BudgetPlanned,
		BudgetActual:  in.BudgetActual,
	}
}

// HandleCreate serves POST /projects/{projectID}/campaigns.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	var in campaignInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Planning.CreateCampaign(ctx, a.Project.ID, in.toService())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Created(w, c)
}

// HandleUpdate serves PUT /projects/{projectID}/campaigns/{campaignID}. The
// body replaces every editable field; omitted budgets are cleared.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	id, ok := shared.ObjectIDParam(r, CampaignParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrCampaignNotFound)
		return
	}
	var in campaignInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Planning.UpdateCampaign(ctx, a.Project.ID, id, in.toService())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// HandleDelete serves DELETE /projects/{projectID}/campaigns/{campaignID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	id, ok := shared.ObjectIDParam(r, CampaignParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrCampaignNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Planning.DeleteCampaign(ctx, a.Project.ID, id); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.NoContent(w)
}
