// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/campaignhub/internal/app/store/audit"
	"github.com/dalemusser/campaignhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destinations for a category.
const (
	DestAll = "all" // MongoDB + zap
	DestDB  = "db"  // MongoDB only
	DestLog = "log" // zap only
	DestOff = "off"
)

// Config selects a destination per event category.
type Config struct {
	Auth    string
	Admin   string
	Project string
}

// Sink persists audit events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger. A nil sink behaves like a "log" destination.
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	if zapLog == nil {
		zapLog = zap.NewNop()
	}
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

func (l *Logger) setting(category string) string {
	var s string
	switch category {
	case audit.CategoryAuth:
		s = l.config.Auth
	case audit.CategoryAdmin:
		s = l.config.Admin
	case audit.CategoryProject:
		s = l.config.Project
	}
	if s == "" {
		return DestAll
	}
	return s
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ProjectID != nil {
		fields = append(fields, zap.String("project_id", event.ProjectID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event according to its category's destination.
// A nil Logger is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	setting := l.setting(event.Category)
	if setting == DestOff {
		return
	}
	if setting == DestAll || setting == DestLog || l.sink == nil {
		l.logToZap(event)
	}
	if (setting == DestAll || setting == DestDB) && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func withRequest(e audit.Event, r *http.Request) audit.Event {
	if r != nil {
		e.IP = ratelimit.ClientIP(r)
		e.UserAgent = r.UserAgent()
	}
	return e
}

func idPtr(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}

func (l *Logger) auth(ctx context.Context, r *http.Request, typ string, userID primitive.ObjectID, ok bool, reason string, details map[string]string) {
	l.Log(ctx, withRequest(audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     typ,
		UserID:        idPtr(userID),
		Success:       ok,
		FailureReason: reason,
		Details:       details,
	}, r))
}

// --- Authentication Events ---

func (l *Logger) Registered(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventRegistered, userID, true, "", map[string]string{"email": email})
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginSuccess, userID, true, "", map[string]string{"email": email})
}

// LoginFailed records a bad email or password. userID is zero when the
// email matched no identity.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, userID primitive.ObjectID, email, reason string) {
	l.auth(ctx, r, audit.EventLoginFailed, userID, false, reason, map[string]string{"email": email})
}

func (l *Logger) LoginBanned(ctx context.Context, r *http.Request, userID primitive.ObjectID, email string) {
	l.auth(ctx, r, audit.EventLoginFailedBanned, userID, false, "user banned", map[string]string{"email": email})
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request, email string) {
	l.auth(ctx, r, audit.EventLoginFailedRateLimit, primitive.NilObjectID, false, "rate limited", map[string]string{"email": email})
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.auth(ctx, r, audit.EventLogout, userID, true, "", nil)
}

func (l *Logger) PasswordResetRequested(ctx context.Context, r *http.Request, email string) {
	l.auth(ctx, r, audit.EventPasswordResetRequested, primitive.NilObjectID, true, "", map[string]string{"email": email})
}

func (l *Logger) PasswordReset(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	l.auth(ctx, r, audit.EventPasswordReset, userID, true, "", nil)
}

func (l *Logger) AccountDeleted(ctx context.Context, r *http.Request, userID primitive.ObjectID, projectsDeleted int) {
	l.auth(ctx, r, audit.EventAccountDeleted, userID, true, "", map[string]string{"projects_deleted": strconv.Itoa(projectsDeleted)})
}

// --- Admin Events ---

func (l *Logger) admin(ctx context.Context, r *http.Request, typ string, actorID, userID, projectID primitive.ObjectID, details map[string]string) {
	l.Log(ctx, withRequest(audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: typ,
		ActorID:   idPtr(actorID),
		UserID:    idPtr(userID),
		ProjectID: idPtr(projectID),
		Success:   true,
		Details:   details,
	}, r))
}

func (l *Logger) UserBanned(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID) {
	l.admin(ctx, r, audit.EventUserBanned, actorID, targetID, primitive.NilObjectID, nil)
}

func (l *Logger) UserUnbanned(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID) {
	l.admin(ctx, r, audit.EventUserUnbanned, actorID, targetID, primitive.NilObjectID, nil)
}

func (l *Logger) UserAdminChanged(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID, isAdmin bool) {
	l.admin(ctx, r, audit.EventUserAdminChanged, actorID, targetID, primitive.NilObjectID, map[string]string{"is_admin": strconv.FormatBool(isAdmin)})
}

func (l *Logger) UserDeleted(ctx context.Context, r *http.Request, actorID, targetID primitive.ObjectID) {
	l.admin(ctx, r, audit.EventUserDeleted, actorID, targetID, primitive.NilObjectID, nil)
}

func (l *Logger) ProjectForceDeleted(ctx context.Context, r *http.Request, actorID, projectID primitive.ObjectID, name string) {
	l.admin(ctx, r, audit.EventProjectForceDeleted, actorID, primitive.NilObjectID, projectID, map[string]string{"name": name})
}

// --- Project Events ---

func (l *Logger) project(ctx context.Context, r *http.Request, typ string, actorID, projectID, userID primitive.ObjectID, details map[string]string) {
	l.Log(ctx, withRequest(audit.Event{
		Category:  audit.CategoryProject,
		EventType: typ,
		ActorID:   idPtr(actorID),
		ProjectID: idPtr(projectID),
		UserID:    idPtr(userID),
		Success:   true,
		Details:   details,
	}, r))
}

func (l *Logger) ProjectCreated(ctx context.Context, r *http.Request, actorID, projectID primitive.ObjectID, name string) {
	l.project(ctx, r, audit.EventProjectCreated, actorID, projectID, primitive.NilObjectID, map[string]string{"name": name})
}

func (l *Logger) ProjectUpdated(ctx context.Context, r *http.Request, actorID, projectID primitive.ObjectID, name string) {
	l.project(ctx, r, audit.EventProjectUpdated, actorID, projectID, primitive.NilObjectID, map[string]string{"name": name})
}

func (l *Logger) ProjectDeleted(ctx context.Context, r *http.Request, actorID, projectID primitive.ObjectID, name string) {
	l.project(ctx, r, audit.EventProjectDeleted, actorID, projectID, primitive.NilObjectID, map[string]string{"name": name})
}

func (l *Logger) MemberRoleChanged(ctx context.Context, r *http.Request, actorID, projectID, targetID primitive.ObjectID, from, to string) {
	l.project(ctx, r, audit.EventMemberRoleChanged, actorID, projectID, targetID, map[string]string{"from": from, "to": to})
}

func (l *Logger) MemberRemoved(ctx context.Context, r *http.Request, actorID, projectID, targetID primitive.ObjectID) {
	l.project(ctx, r, audit.EventMemberRemoved, actorID, projectID, targetID, nil)
}

func (l *Logger) OwnershipTransferred(ctx context.Context, r *http.Request, actorID, projectID, newOwnerID primitive.ObjectID) {
	l.project(ctx, r, audit.EventOwnershipTransferred, actorID, projectID, newOwnerID, nil)
}

func (l *Logger) InvitationCreated(ctx context.Context, r *http.Request, actorID, projectID, invitationID primitive.ObjectID, email, role string) {
	l.project(ctx, r, audit.EventInvitationCreated, actorID, projectID, primitive.NilObjectID,
		map[string]string{"invitation_id": invitationID.Hex(), "email": email, "role": role})
}

func (l *Logger) InvitationResent(ctx context.Context, r *http.Request, actorID, projectID, invitationID primitive.ObjectID) {
	l.project(ctx, r, audit.EventInvitationResent, actorID, projectID, primitive.NilObjectID,
		map[string]string{"invitation_id": invitationID.Hex()})
}

func (l *Logger) InvitationCancelled(ctx context.Context, r *http.Request, actorID, projectID, invitationID primitive.ObjectID) {
	l.project(ctx, r, audit.EventInvitationCancelled, actorID, projectID, primitive.NilObjectID,
		map[string]string{"invitation_id": invitationID.Hex()})
}

func (l *Logger) InvitationAccepted(ctx context.Context, r *http.Request, userID, projectID primitive.ObjectID, role string) {
	l.project(ctx, r, audit.EventInvitationAccepted, userID, projectID, userID, map[string]string{"role": role})
}

// InvitationExpired records an accept attempt that found the invitation past
// its expiry.
func (l *Logger) InvitationExpired(ctx context.Context, r *http.Request, userID, projectID primitive.ObjectID) {
	l.Log(ctx, withRequest(audit.Event{
		Category:      audit.CategoryProject,
		EventType:     audit.EventInvitationExpired,
		ActorID:       idPtr(userID),
		ProjectID:     idPtr(projectID),
		Success:       false,
		FailureReason: "invitation expired",
	}, r))
}
