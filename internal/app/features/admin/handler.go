// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	"github.com/dalemusser/campaignhub/internal/app/services/accounts"
	projectsvc "github.com/dalemusser/campaignhub/internal/app/services/projects"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	UserParam    = "userID"
	ProjectParam = "projectID"

	defaultPageSize = 50
	maxPageSize     = 200
)

var (
	errBadUserID    = apperr.Validation("invalid_user_id", "User id is not valid.")
	errBadProjectID = apperr.Validation("invalid_project_id", "Project id is not valid.")
)

// Handler serves the system admin dashboard.
type Handler struct {
	Accounts   *accounts.Service
	Projects   *projectsvc.Service
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(acc *accounts.Service, proj *projectsvc.Service, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Accounts: acc, Projects: proj, SessionMgr: sm, AuditLog: audit, Log: logger}
}

type userPage struct {
	Users  []models.User `json:"users"`
	Total  int64         `json:"total"`
	Limit  int64         `json:"limit"`
	Offset int64         `json:"offset"`
}

// ServeUsers serves GET /admin/users?q=&limit=&offset=.
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	p := userstore.ListParams{
		Search: r.URL.Query().Get("q"),
		Limit:  shared.Int64(r, "limit", defaultPageSize, 1, maxPageSize),
		Offset: shared.Int64(r, "offset", 0, 0, 1<<31),
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, total, err := h.Accounts.ListUsers(ctx, p)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respond.OK(w, userPage{Users: users, Total: total, Limit: p.Limit, Offset: p.Offset})
}

type flag struct {
	Value *bool `json:"value"`
}

// readFlag reads the acting admin, the target user and the {"value"} body.
// On failure it has already written the response.
func (h *Handler) readFlag(w http.ResponseWriter, r *http.Request) (actor, target primitive.ObjectID, value, ok bool) {
	_, actor, ok = authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return actor, target, false, false
	}
	target, ok = shared.ObjectIDParam(r, UserParam)
	if !ok {
		respond.Error(w, h.Log, errBadUserID)
		return actor, target, false, false
	}
	var in flag
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return actor, target, false, false
	}
	if in.Value == nil {
		respond.Error(w, h.Log, apperr.Validation("value_required", "value must be true or false."))
		return actor, target, false, false
	}
	return actor, target, *in.Value, true
}

// HandleBan serves PUT /admin/users/{userID}/banned with {"value": bool}.
func (h *Handler) HandleBan(w http.ResponseWriter, r *http.Request) {
	actor, target, banned, ok := h.readFlag(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Accounts.SetBanned(ctx, actor, target, banned); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if banned {
		h.AuditLog.UserBanned(ctx, r, actor, target)
	} else {
		h.AuditLog.UserUnbanned(ctx, r, actor, target)
	}
	respond.NoContent(w)
}

// HandleAdmin serves PUT /admin/users/{userID}/admin with {"value": bool}.
func (h *Handler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	actor, target, isAdmin, ok := h.readFlag(w, r)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Accounts.SetAdmin(ctx, actor, target, isAdmin); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.UserAdminChanged(ctx, r, actor, target, isAdmin)
	respond.NoContent(w)
}

// HandleDeleteUser serves DELETE /admin/users/{userID}. It runs the same
// cascade as self-service account deletion.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	target, ok := shared.ObjectIDParam(r, UserParam)
	if !ok {
		respond.Error(w, h.Log, errBadUserID)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	d, err := h.Accounts.DeleteUser(ctx, actor, target)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.UserDeleted(ctx, r, actor, target)
	respond.OK(w, d)
}

type projectPage struct {
	Projects []models.Project `json:"projects"`
	Total    int64            `json:"total"`
	Limit    int64            `json:"limit"`
	Offset   int64            `json:"offset"`
}

// ServeProjects serves GET /admin/projects?limit=&offset=.
func (h *Handler) ServeProjects(w http.ResponseWriter, r *http.Request) {
	limit := shared.Int64(r, "limit", defaultPageSize, 1, maxPageSize)
	offset := shared.Int64(r, "offset", 0, 0, 1<<31)
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, total, err := h.Projects.ListAll(ctx, limit, offset)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	respond.OK(w, projectPage{Projects: list, Total: total, Limit: limit, Offset: offset})
}

// HandleDeleteProject serves DELETE /admin/projects/{projectID}, deleting
// any project regardless of membership.
func (h *Handler) HandleDeleteProject(w http.ResponseWriter, r *http.Request) {
	_, actor, ok := authz.UserCtx(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	pid, ok := shared.ObjectIDParam(r, ProjectParam)
	if !ok {
		respond.Error(w, h.Log, errBadProjectID)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	p, _, err := h.Projects.ProjectRole(ctx, pid, actor)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if err := h.Projects.Delete(ctx, pid); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.ProjectForceDeleted(ctx, r, actor, pid, p.Name)
	h.Log.Info("project force-deleted", zap.String("project_id", pid.Hex()), zap.String("actor_id", actor.Hex()))
	respond.NoContent(w)
}
