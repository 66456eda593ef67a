// internal/app/features/channels/handler.go
package channels

import (
	"context"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ChannelParam is the chi URL parameter holding the channel id.
const ChannelParam = "channelID"

// Handler serves the channel (timeline row) endpoints of a project.
type Handler struct {
	Planning *planning.Service
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *planning.Service, logger *zap.Logger) *Handler {
	return &Handler{Planning: svc, Log: logger}
}

// ServeList serves GET /projects/{projectID}/channels.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Planning.Channels(ctx, a.Project.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"channels": list})
}

type channelInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// HandleCreate serves POST /projects/{projectID}/channels.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	var in channelInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ch, err := h.Planning.CreateChannel(ctx, a.Project.ID, planning.ChannelInput{Name: in.Name, Color: in.Color})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Created(w, ch)
}

type channelPatch struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// HandleUpdate serves PATCH /projects/{projectID}/channels/{channelID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	id, ok := shared.ObjectIDParam(r, ChannelParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrChannelNotFound)
		return
	}
	var in channelPatch
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ch, err := h.Planning.UpdateChannel(ctx, a.Project.ID, id, planning.ChannelPatch{Name: in.Name, Color: in.Color})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, ch)
}

type orderInput struct {
	IDs []string `json:"ids"`
}

// HandleReorder serves PUT /projects/{projectID}/channels/order with the
// complete list of channel ids in their new order.
func (h *Handler) HandleReorder(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	var in orderInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	ids := make([]primitive.ObjectID, 0, len(in.IDs))
	for _, raw := range in.IDs {
		id, err := shared.ParseObjectID(raw)
		if err != nil {
			respond.Error(w, h.Log, apperr.ErrChannelNotFound)
			return
		}
		ids = append(ids, id)
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Planning.ReorderChannels(ctx, a.Project.ID, ids)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"channels": list})
}

// HandleDelete serves DELETE /projects/{projectID}/channels/{channelID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, _ := authz.FromRequest(r)
	id, ok := shared.ObjectIDParam(r, ChannelParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrChannelNotFound)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Planning.DeleteChannel(ctx, a.Project.ID, id); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.NoContent(w)
}
