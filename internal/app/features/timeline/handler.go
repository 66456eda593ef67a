// internal/app/features/timeline/handler.go
package timeline

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	chart "github.com/dalemusser/campaignhub/internal/app/system/timeline"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// MaxWidth caps the pixel width a client may ask spans to be scaled to.
const MaxWidth = 20000

var (
	errUnknownView  = apperr.Validation("unknown_view", "View must be year, phase1, phase2 or phase3.")
	errInvalidPhase = apperr.Validation("invalid_phase", "That phase does not have a valid date range.")
)

// Handler serves the laid-out timeline of a project.
type Handler struct {
	Planning *planning.Service
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *planning.Service, logger *zap.Logger) *Handler {
	return &Handler{Planning: svc, Log: logger}
}

// ServeTimeline serves GET /projects/{projectID}/timeline?year=&view=&width=.
// view is year (default) or a phase key; width, when given, fills the pixel
// fields of every span.
func (h *Handler) ServeTimeline(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	year := shared.Year(r, h.Planning.Now())
	width := shared.Int64(r, "width", 0, 0, MaxWidth)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	snap, err := h.Planning.Snapshot(ctx, a.Project.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	view, err := chart.ResolveView(strings.TrimSpace(r.URL.Query().Get("view")), year, snap.Phases)
	switch {
	case errors.Is(err, chart.ErrUnknownView):
		respond.Error(w, h.Log, errUnknownView)
		return
	case errors.Is(err, chart.ErrInvalidPhase):
		respond.Error(w, h.Log, errInvalidPhase)
		return
	case err != nil:
		respond.Error(w, h.Log, err)
		return
	}

	c := chart.Build(view, chart.Input{
		Channels:  snap.Channels,
		Types:     snap.Types,
		Campaigns: snap.Campaigns,
		Phases:    snap.Phases,
	}, float64(width))
	respond.OK(w, c)
}
