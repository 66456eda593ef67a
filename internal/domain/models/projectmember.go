package models

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project roles.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// IsProjectRole reports whether role is one of owner, editor, viewer.
func IsProjectRole(role string) bool {
	switch role {
	case RoleOwner, RoleEditor, RoleViewer:
		return true
	}
	return false
}

// ProjectMember is the join between a project and a user.
// Exactly one document per (project_id, user_id); the _id is derived
// deterministically from that pair so writes are upserts.
type ProjectMember struct {
	ID        string             `bson:"_id" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role      string             `bson:"role" json:"role"` // owner | editor | viewer
	JoinedAt  time.Time          `bson:"joined_at" json:"joined_at"`
}

// MemberView is a membership joined with the member's profile for listing.
type MemberView struct {
	UserID      primitive.ObjectID `json:"user_id"`
	Email       string             `json:"email"`
	DisplayName string             `json:"display_name"`
	Role        string             `json:"role"`
	JoinedAt    time.Time          `json:"joined_at"`
}

var memberNamespace = uuid.MustParse("0b6f3c1e-6a2d-5c4f-9f1e-2a7d8c9b0e41")

// MemberID is the deterministic _id of the membership for (projectID, userID).
func MemberID(projectID, userID primitive.ObjectID) string {
	return uuid.NewSHA1(memberNamespace, []byte(projectID.Hex()+":"+userID.Hex())).String()
}
