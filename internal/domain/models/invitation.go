package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invitation statuses. Transitions only leave pending.
const (
	InvitationPending   = "pending"
	InvitationAccepted  = "accepted"
	InvitationExpired   = "expired"
	InvitationCancelled = "cancelled"
)

// Invitation is a magic-link invitation to join a project.
// The token is the sole acceptance credential and is never serialized to JSON.
type Invitation struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID   primitive.ObjectID `bson:"project_id" json:"project_id"`
	Email       string             `bson:"email" json:"email"` // normalized (lowercase)
	Role        string             `bson:"role" json:"role"`   // editor | viewer
	Token       string             `bson:"token" json:"-"`
	Status      string             `bson:"status" json:"status"`
	InvitedBy   primitive.ObjectID `bson:"invited_by" json:"invited_by"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	ExpiresAt   time.Time          `bson:"expires_at" json:"expires_at"`
	AcceptedAt  *time.Time         `bson:"accepted_at,omitempty" json:"accepted_at,omitempty"`
	CancelledAt *time.Time         `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}

// EffectiveStatus is the display status: a pending invitation past its
// expiry is shown as expired whether or not that has been persisted.
func (inv Invitation) EffectiveStatus(now time.Time) string {
	if inv.Status == InvitationPending && inv.ExpiresAt.Before(now) {
		return InvitationExpired
	}
	return inv.Status
}

// IsTerminal reports whether the persisted status can no longer change.
func (inv Invitation) IsTerminal() bool {
	return inv.Status != InvitationPending
}
