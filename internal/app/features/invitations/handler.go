// internal/app/features/invitations/handler.go
package invitations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/features/shared"
	invitationsvc "github.com/dalemusser/campaignhub/internal/app/services/invitations"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

// InvitationParam is the chi URL parameter holding the invitation id.
const InvitationParam = "invitationID"

// Handler serves invitation management inside a project and the public
// invite-link endpoints.
type Handler struct {
	Invitations *invitationsvc.Service
	SessionMgr  *auth.SessionManager
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *invitationsvc.Service, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Invitations: svc, SessionMgr: sm, AuditLog: audit, Log: logger}
}

// created is the response to create and resend. Link lets a manager share
// the invitation by hand when the email did not go out.
type created struct {
	Invitation models.Invitation `json:"invitation"`
	EmailSent  bool              `json:"email_sent"`
	Link       string            `json:"link"`
}

func inviterName(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok {
		if u.Name != "" {
			return u.Name
		}
		return u.Email
	}
	return ""
}

// ServeList serves GET /projects/{projectID}/invitations. Cancelled
// invitations older than a week are hidden unless include_stale=true.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Invitations.List(ctx, a.Project.ID, shared.Bool(r, "include_stale"))
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"invitations": list})
}

type createInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleCreate serves POST /projects/{projectID}/invitations.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	var in createInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Invitations.Create(ctx, invitationsvc.CreateInput{
		ProjectID:   a.Project.ID,
		Email:       in.Email,
		Role:        in.Role,
		InvitedBy:   a.UserID,
		InviterName: inviterName(r),
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	inv := res.Invitation
	h.AuditLog.InvitationCreated(ctx, r, a.UserID, a.Project.ID, inv.ID, inv.Email, inv.Role)
	respond.Created(w, created{Invitation: inv, EmailSent: res.EmailSent, Link: h.Invitations.Link(inv.Token)})
}

// HandleResend serves POST /projects/{projectID}/invitations/{invitationID}/resend.
// A failed email is reported as email_sent=false; the invitation itself is
// still valid.
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	id, ok := shared.ObjectIDParam(r, InvitationParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrInvitationNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	inv, err := h.Invitations.Resend(ctx, a.Project.ID, id, inviterName(r))
	sent := true
	if errors.Is(err, apperr.ErrEmailDelivery) {
		sent = false
		err = nil
	}
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.InvitationResent(ctx, r, a.UserID, a.Project.ID, inv.ID)
	respond.OK(w, created{Invitation: inv, EmailSent: sent, Link: h.Invitations.Link(inv.Token)})
}

// HandleCancel serves DELETE /projects/{projectID}/invitations/{invitationID}.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	a, ok := authz.FromRequest(r)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrForbidden)
		return
	}
	id, ok := shared.ObjectIDParam(r, InvitationParam)
	if !ok {
		respond.Error(w, h.Log, apperr.ErrInvitationNotFound)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	inv, err := h.Invitations.Cancel(ctx, a.Project.ID, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if inv.Status == models.InvitationCancelled {
		h.AuditLog.InvitationCancelled(ctx, r, a.UserID, a.Project.ID, inv.ID)
	}
	respond.OK(w, map[string]any{"invitation": inv})
}

// landing is the response to the invite link.
type landing struct {
	Invitation invitationsvc.Landing `json:"invitation"`
	SignedIn   bool                  `json:"signed_in"`
}

// ServeLanding serves GET /invite?token=. It shows what the invitation is
// for without accepting it. For an anonymous visitor with a pending
// invitation the token is kept in the session so it is accepted right
// after sign-in.
func (h *Handler) ServeLanding(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	info, err := h.Invitations.Lookup(ctx, token)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	_, signedIn := auth.CurrentUser(r)
	if !signedIn && info.Status == models.InvitationPending {
		if err := h.SessionMgr.SetPendingInvite(w, r, token); err != nil {
			h.Log.Warn("store pending invitation", zap.Error(err))
		}
	}
	respond.OK(w, landing{Invitation: info, SignedIn: signedIn})
}

type acceptInput struct {
	Token string `json:"token"`
}

// HandleAccept serves POST /invite/accept for a signed-in user.
func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Sign in required.")
		return
	}
	var in acceptInput
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	acc, err := h.Invitations.Accept(ctx, strings.TrimSpace(in.Token), userID)
	if err != nil {
		if errors.Is(err, apperr.ErrInvitationExpired) {
			h.AuditLog.InvitationExpired(ctx, r, userID, acc.ProjectID)
		}
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.InvitationAccepted(ctx, r, userID, acc.ProjectID, acc.Role)
	respond.OK(w, acc)
}
