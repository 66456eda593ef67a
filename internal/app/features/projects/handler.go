// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"net/http"

	projectsvc "github.com/dalemusser/campaignhub/internal/app/services/projects"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/permissions"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the project list and single-project endpoints.
type Handler struct {
	Projects *projectsvc.Service
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *projectsvc.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Projects: svc, AuditLog: audit, Log: logger}
}

// projectView is a project with the caller's role and capabilities.
type projectView struct {
	Project      models.Project           `json:"project"`
	Role         string                   `json:"role"`
	Capabilities permissions.Capabilities `json:"capabilities"`
}

// ServeList serves GET /projects: every project the caller owns or is a
// member of, newest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Sign in required.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Projects.ListAccessible(ctx, userID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"projects": list})
}

type projectInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreate serves POST /projects. The caller becomes the owner.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Sign in required.")
		return
	}
	var in projectInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	p, err := h.Projects.Create(ctx, projectsvc.CreateInput{Name: in.Name, Description: in.Description, OwnerID: userID})
	if err != nil {
		if !p.ID.IsZero() {
			h.Log.Warn("project created without owner membership",
				zap.String("project_id", p.ID.Hex()), zap.Error(err))
		}
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.ProjectCreated(ctx, r, userID, p.ID, p.Name)
	respond.Created(w, projectView{
		Project:      p,
		Role:         models.RoleOwner,
		Capabilities: permissions.Resolve(u.IsAdmin, models.RoleOwner),
	})
}

// ServeProject serves GET /projects/{projectID}.
func (h *Handler) ServeProject(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, errNoAccess)
		return
	}
	respond.OK(w, projectView{Project: a.Project, Role: a.Role, Capabilities: a.Caps})
}

type projectPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// HandleUpdate serves PATCH /projects/{projectID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, errNoAccess)
		return
	}
	var in projectPatch
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.Update(ctx, a.Project.ID, projectsvc.UpdateInput{Name: in.Name, Description: in.Description})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.ProjectUpdated(ctx, r, a.UserID, p.ID, p.Name)
	respond.OK(w, projectView{Project: p, Role: a.Role, Capabilities: a.Caps})
}

// HandleDelete serves DELETE /projects/{projectID}. The project document
// goes first; subordinate collections are swept afterwards and a failed
// sweep is reported but can be re-run.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, errNoAccess)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	if err := h.Projects.Delete(ctx, a.Project.ID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.ProjectDeleted(ctx, r, a.UserID, a.Project.ID, a.Project.Name)
	respond.NoContent(w)
}
