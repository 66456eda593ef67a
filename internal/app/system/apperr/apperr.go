// Package apperr defines the error taxonomy shared by services and HTTP
// features. Every error a service returns to a handler is either an *Error
// or is classified by KindOf.
package apperr

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// Kind classifies an error for propagation and presentation.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindPermission         Kind = "permission"
	KindNotFound           Kind = "not_found"
	KindStateConflict      Kind = "state_conflict"
	KindExpired            Kind = "expired"
	KindBackendUnavailable Kind = "backend_unavailable"
	KindInternal           Kind = "internal"
)

// Error is a classified application error. Code is a stable machine-readable
// identifier; two *Error values with the same Code match under errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so sentinel comparisons survive re-wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New builds a classified error.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap builds a classified error around cause.
func Wrap(kind Kind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: cause}
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// Validation reports malformed input caught before any write.
func Validation(code, msg string) *Error { return New(KindValidation, code, msg) }

// Permission reports a failed capability check.
func Permission(code, msg string) *Error { return New(KindPermission, code, msg) }

// NotFound reports a referenced document that does not exist.
func NotFound(code, msg string) *Error { return New(KindNotFound, code, msg) }

// StateConflict reports an operation that is invalid for the entity's current state.
func StateConflict(code, msg string) *Error { return New(KindStateConflict, code, msg) }

// Unavailable wraps a store or mailer failure caused by an unreachable backend.
func Unavailable(cause error) *Error {
	return Wrap(KindBackendUnavailable, "backend_unavailable", "backend unavailable", cause)
}

// Sentinels shared across services.
var (
	ErrForbidden = Permission("forbidden", "you do not have permission to do that")

	ErrProjectNotFound = NotFound("project_not_found", "project not found")
	ErrMemberNotFound  = NotFound("member_not_found", "member not found")
	ErrUserNotFound    = NotFound("user_not_found", "user not found")

	ErrChannelNotFound      = NotFound("channel_not_found", "channel not found")
	ErrCampaignTypeNotFound = NotFound("campaign_type_not_found", "campaign type not found")
	ErrCampaignNotFound     = NotFound("campaign_not_found", "campaign not found")

	ErrInvitationNotFound         = NotFound("invitation_not_found", "invitation not found")
	ErrDuplicatePendingInvitation = StateConflict("duplicate_pending_invitation", "a pending invitation already exists for this email")
	ErrNotPending                 = StateConflict("invitation_not_pending", "invitation is no longer pending")
	ErrAlreadyAccepted            = StateConflict("invitation_already_accepted", "invitation has already been accepted")
	ErrInvitationCancelled        = StateConflict("invitation_cancelled", "invitation was cancelled")
	ErrInvitationExpired          = New(KindExpired, "invitation_expired", "invitation has expired")

	ErrCannotModifyOwner = StateConflict("cannot_modify_owner", "the project owner's role cannot be changed or removed; transfer ownership instead")
	ErrLastCampaignType  = StateConflict("last_campaign_type", "a project must keep at least one campaign type")

	ErrEmailDelivery = Wrap(KindBackendUnavailable, "email_delivery_failed", "email could not be sent", nil)
)

// KindOf classifies err. Unreachable-database conditions classify as
// KindBackendUnavailable; anything unclassified is KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	if IsBackendUnavailable(err) {
		return KindBackendUnavailable
	}
	return KindInternal
}

// IsBackendUnavailable reports whether err indicates the store could not be reached.
func IsBackendUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	var sel topology.ServerSelectionError
	if errors.As(err, &sel) {
		return true
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return true
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.HasErrorLabel("RetryableWriteError") && ce.Code == 91 {
		return true // ShutdownInProgress
	}
	return false
}

// Code returns the machine code for err, or "internal".
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	if IsBackendUnavailable(err) {
		return "backend_unavailable"
	}
	return "internal"
}
