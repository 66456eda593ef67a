package account

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/services/accounts"
	"github.com/dalemusser/campaignhub/internal/app/services/invitations"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// signedIn is returned by register and login.
type signedIn struct {
	User            models.User           `json:"user"`
	Invitation      *invitations.Accepted `json:"invitation,omitempty"`
	InvitationError string                `json:"invitation_error,omitempty"`
}

// HandleRegister serves POST /account/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if h.throttled(w, r, "register", in.Email) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Accounts.Register(ctx, accounts.RegisterInput{Email: in.Email, Password: in.Password, DisplayName: in.DisplayName})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.Registered(ctx, r, u.ID, u.Email)

	out, err := h.startSession(ctx, w, r, u)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.Created(w, out)
}

// HandleLogin serves POST /account/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if h.throttled(w, r, "login", in.Email) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Accounts.Login(ctx, in.Email, in.Password)
	switch {
	case err == nil:
	case errors.Is(err, accounts.ErrInvalidCredentials):
		h.AuditLog.LoginFailed(ctx, r, u.ID, in.Email, "invalid credentials")
		respond.Unauthorized(w, "Email or password is incorrect.")
		return
	case errors.Is(err, accounts.ErrBanned):
		h.AuditLog.LoginBanned(ctx, r, u.ID, u.Email)
		respond.Error(w, h.Log, err)
		return
	default:
		respond.Error(w, h.Log, err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetEmail(in.Email)
	}
	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.Email)

	out, err := h.startSession(ctx, w, r, u)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, out)
}

// startSession signs u in and accepts an invitation left in the session by
// the invite landing page. An invitation that cannot be accepted does not
// fail the sign-in; its error code is reported alongside the user.
func (h *Handler) startSession(ctx context.Context, w http.ResponseWriter, r *http.Request, u models.User) (signedIn, error) {
	out := signedIn{User: u}
	token, err := h.SessionMgr.TakePendingInvite(w, r)
	if err != nil {
		h.Log.Warn("read pending invitation", zap.Error(err))
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser(u)); err != nil {
		return out, err
	}
	if token == "" || h.Invitations == nil {
		return out, nil
	}

	acc, err := h.Invitations.Accept(ctx, token, u.ID)
	if err != nil {
		out.InvitationError = apperr.Code(err)
		if errors.Is(err, apperr.ErrInvitationExpired) {
			h.AuditLog.InvitationExpired(ctx, r, u.ID, acc.ProjectID)
		}
		h.Log.Info("pending invitation not accepted", zap.String("user_id", u.ID.Hex()), zap.String("code", out.InvitationError))
		return out, nil
	}
	h.AuditLog.InvitationAccepted(ctx, r, u.ID, acc.ProjectID, acc.Role)
	out.Invitation = &acc
	return out, nil
}

// HandleLogout serves POST /account/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, userID, ok := authz.UserCtx(r); ok {
		h.AuditLog.Logout(r.Context(), r, userID)
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("sign out", zap.Error(err))
	}
	respond.NoContent(w)
}
