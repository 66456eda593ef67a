package account

import (
	"context"
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandleResetRequest serves POST /account/password-reset. The response is
// the same whether or not the email belongs to an account.
func (h *Handler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if h.throttled(w, r, "password_reset", in.Email) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Accounts.RequestPasswordReset(ctx, in.Email); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.PasswordResetRequested(ctx, r, normalize.Email(in.Email))
	respond.JSON(w, http.StatusAccepted, map[string]string{
		"message": "If an account exists for that email, a reset link is on its way.",
	})
}

// HandleResetConfirm serves POST /account/password-reset/confirm.
func (h *Handler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var in resetConfirm
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	userID, err := h.Accounts.ConfirmPasswordReset(ctx, in.Token, in.Password)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.PasswordReset(ctx, r, userID)
	respond.NoContent(w)
}

// ServeMe serves GET /account/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Sign in required.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.Profile(ctx, userID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.OK(w, u)
}

type profileUpdate struct {
	DisplayName string `json:"display_name"`
}

// HandleUpdateMe serves PATCH /account/me.
func (h *Handler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Sign in required.")
		return
	}
	var in profileUpdate
	if err := respond.DecodeJSON(w, r, &in); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Accounts.UpdateDisplayName(ctx, userID, in.DisplayName)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if err := h.SessionMgr.SignIn(w, r, sessionUser(u)); err != nil {
		h.Log.Warn("refresh session after profile update", zap.Error(err))
	}
	respond.OK(w, u)
}

// HandleDeleteMe serves DELETE /account/me. Owned projects are deleted with
// the account. On failure the completed steps stay done and the user can
// retry.
func (h *Handler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	_, userID, ok := authz.UserCtx(r)
	if !ok {
		respond.Unauthorized(w, "Sign in required.")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Batch())
	defer cancel()

	d, err := h.Accounts.DeleteAccount(ctx, userID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.AuditLog.AccountDeleted(ctx, r, userID, d.ProjectsDeleted)
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign out after account deletion", zap.Error(err))
	}
	respond.OK(w, d)
}
