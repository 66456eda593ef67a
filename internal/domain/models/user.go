// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the profile document for a registered account.
//
// NOTE:
//   - Credentials live in the identities collection, not here.
//   - Project access is not embedded on User. Use the project_members
//     collection (and Project.OwnerID) to discover a user's projects.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	DisplayName   string             `bson:"display_name" json:"display_name"`
	DisplayNameCI string             `bson:"display_name_ci" json:"-"` // lowercase, diacritics-stripped
	IsAdmin       bool               `bson:"is_admin" json:"is_admin"`
	IsBanned      bool               `bson:"is_banned" json:"is_banned"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
