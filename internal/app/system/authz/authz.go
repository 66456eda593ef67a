// internal/app/system/authz/authz.go
package authz

import (
	"context"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/permissions"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ProjectParam is the chi URL parameter holding the project id.
const ProjectParam = "projectID"

// UserCtx returns the signed-in user and their ObjectID. If no user is in
// context or the id is malformed it returns ok=false, so ok=true always
// means a valid ObjectID.
func UserCtx(r *http.Request) (u *auth.SessionUser, userID primitive.ObjectID, ok bool) {
	u, ok = auth.CurrentUser(r)
	if !ok {
		return nil, primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return nil, primitive.NilObjectID, false
	}
	return u, userID, true
}

// IsAdmin reports whether the current request's user is a system admin.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.IsAdmin
}

// RoleResolver loads a project and the user's role in it. Role is "" when
// the user has no membership. A missing project is apperr.ErrProjectNotFound.
type RoleResolver interface {
	ProjectRole(ctx context.Context, projectID, userID primitive.ObjectID) (models.Project, string, error)
}

// Access is the resolved project access for the current request.
type Access struct {
	Project models.Project
	UserID  primitive.ObjectID
	Role    string
	Caps    permissions.Capabilities
}

type accessKey struct{}

// WithAccess returns ctx carrying a.
func WithAccess(ctx context.Context, a Access) context.Context {
	return context.WithValue(ctx, accessKey{}, a)
}

// FromRequest returns the access loaded by Gate.RequireProject.
func FromRequest(r *http.Request) (Access, bool) {
	a, ok := r.Context().Value(accessKey{}).(Access)
	return a, ok
}

// Gate loads project access for routes under /projects/{projectID}.
type Gate struct {
	Roles RoleResolver
	Log   *zap.Logger
}

// NewGate builds a Gate.
func NewGate(roles RoleResolver, logger *zap.Logger) *Gate {
	return &Gate{Roles: roles, Log: logger}
}

// RequireProject resolves the caller's capabilities for the project in the
// URL and rejects callers who cannot view it.
func (g *Gate) RequireProject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, userID, ok := UserCtx(r)
		if !ok {
			respond.Unauthorized(w, "Sign in required.")
			return
		}
		projectID, err := primitive.ObjectIDFromHex(chi.URLParam(r, ProjectParam))
		if err != nil {
			respond.Error(w, g.Log, apperr.ErrProjectNotFound)
			return
		}

		project, role, err := g.Roles.ProjectRole(r.Context(), projectID, userID)
		if err != nil {
			respond.Error(w, g.Log, err)
			return
		}
		caps := permissions.Resolve(u.IsAdmin, role)
		if !caps.ViewProject {
			respond.Error(w, g.Log, apperr.ErrForbidden)
			return
		}

		a := Access{Project: project, UserID: userID, Role: role, Caps: caps}
		next.ServeHTTP(w, r.WithContext(WithAccess(r.Context(), a)))
	})
}

// Require rejects requests whose resolved capabilities fail check. It must
// run after RequireProject.
func Require(check Check) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a, ok := FromRequest(r)
			if !ok || !check(a.Caps) {
				respond.Error(w, nil, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
