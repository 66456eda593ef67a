// internal/app/features/account/handler.go
package account

import (
	"net/http"

	"github.com/dalemusser/campaignhub/internal/app/services/accounts"
	"github.com/dalemusser/campaignhub/internal/app/services/invitations"
	"github.com/dalemusser/campaignhub/internal/app/system/auditlog"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/metrics"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"github.com/dalemusser/campaignhub/internal/app/system/respond"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves registration, sign-in, password reset and the signed-in
// user's own profile.
type Handler struct {
	Accounts    *accounts.Service
	Invitations *invitations.Service
	SessionMgr  *auth.SessionManager
	Limiter     *ratelimit.LoginLimiter
	AuditLog    *auditlog.Logger
	Metrics     *metrics.Metrics
	Log         *zap.Logger
}

// NewHandler builds a Handler. limiter may be nil to disable throttling.
func NewHandler(acc *accounts.Service, inv *invitations.Service, sm *auth.SessionManager, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, m *metrics.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		Accounts:    acc,
		Invitations: inv,
		SessionMgr:  sm,
		Limiter:     limiter,
		AuditLog:    audit,
		Metrics:     m,
		Log:         logger,
	}
}

func sessionUser(u models.User) *auth.SessionUser {
	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.DisplayName,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}

// throttled reports whether the attempt was rejected and, if so, writes
// the 429 response.
func (h *Handler) throttled(w http.ResponseWriter, r *http.Request, route, email string) bool {
	if h.Limiter == nil {
		return false
	}
	ok, reason := h.Limiter.Check(r, email)
	if ok {
		return false
	}
	h.Metrics.RateLimited(route)
	h.AuditLog.LoginRateLimited(r.Context(), r, email)
	respond.TooManyRequests(w, reason)
	return true
}
