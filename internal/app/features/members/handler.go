// internal/app/features/members/handler.go
package members

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	projectsvc "github.com/dalemusser/campaignhub/internal/app/services/projects"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// UserParam is the chi URL parameter holding the member's user id.
const UserParam = "userID"

var errNoAccess = apperr.ErrForbidden

// Handler serves project membership endpoints.
type Handler struct {
	Projects *projectsvc.Service
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *projectsvc.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Projects: svc, AuditLog: audit, Log: logger}
}

// ServeList serves GET /projects/{projectID}/members. The owner is listed
// first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, errNoAccess)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Projects.Members(ctx, a.Project.ID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"members": list})
}

type roleInput struct {
	Role string `json:"role"`
}

// HandleChangeRole serves PATCH /projects/{projectID}/members/{userID}.
func (h *Handler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, errNoAccess)
		return
	}
	target, ok := shared.ObjectIDParam(r, UserParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrMemberNotFound)
		return
	}
	var in roleInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	prev, err := h.Projects.ChangeRole(ctx, a.Project.ID, target, in.Role)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if role := normalize.Role(in.Role); prev != role {
		h.AuditLog.MemberRoleChanged(ctx, r, a.UserID, a.Project.ID, target, prev, role)
	}
	respond.NoContent(w)
}

// HandleRemove serves DELETE /projects/{projectID}/members/{userID}.
// Managers may remove anyone but the owner; any other member may remove
// themselves to leave the project.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, errNoAccess)
		return
	}
	target, ok := shared.ObjectIDParam(r, UserParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrMemberNotFound)
		return
	}
	if !a.Caps.RemoveMembers && target != a.UserID {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Projects.RemoveMember(ctx, a.Project.ID, target); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.MemberRemoved(ctx, r, a.UserID, a.Project.ID, target)
	respond.NoContent(w)
}

type transferInput struct {
	UserID string `json:"user_id"`
}

// HandleTransfer serves POST /projects/{projectID}/members/transfer. Only
// the current owner or a system admin may hand the project over.
func (h *Handler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, errNoAccess)
		return
	}
	if a.Project.OwnerID != a.UserID && !a.Caps.ViewAnyProject {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	var in transferInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	newOwner, err := shared.ParseObjectID(in.UserID)
	if err != nil {
		respond.Error(w, h.Log, apperr.ErrMemberNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Projects.TransferOwnership(ctx, a.Project.ID, newOwner); err != nil {
		if !errors.Is(err, apperr.ErrMemberNotFound) {
			h.Log.Warn("ownership transfer failed", zap.String("project_id", a.Project.ID.Hex()), zap.Error(err))
		}
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.OwnershipTransferred(ctx, r, a.UserID, a.Project.ID, newOwner)
	respond.NoContent(w)
}
