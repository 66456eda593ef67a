// internal/app/features/settings/handler.go
package settings

import (
	"context"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler owns the per-project settings: strategic phases and branding.
type Handler struct {
	Planning *planning.Service
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *planning.Service, logger *zap.Logger) *Handler {
	return &Handler{Planning: svc, Log: logger}
}

// ServePhases serves GET /projects/{projectID}/settings/phases. Projects
// that never saved phases get the defaults.
func (h *Handler) ServePhases(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ps, err := h.Planning.Phases(ctx, a.Project.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, ps)
}

type phasesInput struct {
	Phase1 models.Phase `json:"phase1"`
	Phase2 models.Phase `json:"phase2"`
	Phase3 models.Phase `json:"phase3"`
}

// HandlePutPhases serves PUT /projects/{projectID}/settings/phases. All
// three phases are replaced at once.
func (h *Handler) HandlePutPhases(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	var in phasesInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ps, err := h.Planning.PutPhases(ctx, a.Project.ID, models.PhaseSet{
		Phase1: in.Phase1,
		Phase2: in.Phase2,
		Phase3: in.Phase3,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, ps)
}

// ServeBranding serves GET /projects/{projectID}/settings/branding.
func (h *Handler) ServeBranding(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Planning.Branding(ctx, a.Project.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, b)
}

type brandingInput struct {
	PrimaryColor    string `json:"primary_color"`
	AccentColor     string `json:"accent_color"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	ExportShowPhase bool   `json:"export_show_phases"`
	ExportShowLogo  bool   `json:"export_show_logo"`
}

// HandlePutBranding serves PUT /projects/{projectID}/settings/branding.
func (h *Handler) HandlePutBranding(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	var in brandingInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	b, err := h.Planning.PutBranding(ctx, a.Project.ID, models.Branding{
		PrimaryColor:    in.PrimaryColor,
		AccentColor:     in.AccentColor,
		BackgroundColor: in.BackgroundColor,
		TextColor:       in.TextColor,
		ExportShowPhase: in.ExportShowPhase,
		ExportShowLogo:  in.ExportShowLogo,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, b)
}
