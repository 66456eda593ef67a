package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Seeded when a project has no campaign types.
const (
	DefaultCampaignTypeName  = "Campaign"
	DefaultCampaignTypeColor = "#6366f1"
)

// CampaignType classifies campaigns and supplies their bar color.
// A project always has at least one.
type CampaignType struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"project_id"`
	Name      string             `bson:"name" json:"name"`
	Color     string             `bson:"color" json:"color"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
