package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultChannelName is seeded when a project has no channels.
const DefaultChannelName = "General"

// Channel is a timeline row (e.g. "Social", "Email") scoped to a project.
type Channel struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Name      string             `bson:"name" json:"name"`
	Color     string             `bson:"color,omitempty" json:"color,omitempty"`
	Order     int                `bson:"order" json:"order"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
