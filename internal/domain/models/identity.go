package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is the sign-in credential for a user. Its _id equals the User _id.
// Deleting the identity is always the last step of account deletion.
type Identity struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Email        string             `bson:"email" json:"email"` // normalized (lowercase)
	PasswordHash string             `bson:"password_hash" json:"-"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
