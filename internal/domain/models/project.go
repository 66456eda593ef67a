package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project is the top-level tenant container. It owns its channels, campaign
// types, campaigns, phases, branding, members and invitations.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProjectWithRole is a project annotated with the viewing user's role.
type ProjectWithRole struct {
	Project `bson:",inline"`
	Role    string `bson:"-" json:"role"`
}
