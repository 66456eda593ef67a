// internal/app/features/analytics/handler.go
package analytics

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	report "github.com/dalemusser/campaignhub/internal/app/system/analytics"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

var (
	errUnknownGroup = apperr.Validation("unknown_group", "Group must be channel, type or phase.")
	errUnknownPhase = apperr.Validation("unknown_phase", "Phase must be phase1, phase2 or phase3.")
)

// Handler serves budget analytics for a project.
type Handler struct {
	Planning *planning.Service
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *planning.Service, logger *zap.Logger) *Handler {
	return &Handler{Planning: svc, Log: logger}
}

// ServeReport serves GET /projects/{projectID}/analytics?group=&phase=&year=.
func (h *Handler) ServeReport(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	q := r.URL.Query()
	group := strings.TrimSpace(q.Get("group"))
	switch group {
	case "":
		group = report.GroupChannel
	case report.GroupChannel, report.GroupType, report.GroupPhase:
	default:
		respond.Error(w, h.Log, errUnknownGroup)
		return
	}
	phase := strings.TrimSpace(q.Get("phase"))
	if phase != "" {
		if _, ok := (models.PhaseSet{}).Get(phase); !ok {
			respond.Error(w, h.Log, errUnknownPhase)
			return
		}
	}
	year := shared.Year(r, h.Planning.Now())

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	snap, err := h.Planning.Snapshot(ctx, a.Project.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, report.Build(report.Input{
		Campaigns: snap.Campaigns,
		Channels:  snap.Channels,
		Types:     snap.Types,
		Phases:    snap.Phases,
	}, group, phase, year))
}
