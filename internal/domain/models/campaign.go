package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campaign is a dated marketing activity placed on the timeline.
// ChannelID and TypeID are soft references; dangling ids degrade to defaults.
type Campaign struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectID     primitive.ObjectID `bson:"project_id" json:"project_id"`
	Name          string             `bson:"name" json:"name"`
	ChannelID     primitive.ObjectID `bson:"channel_id" json:"channel_id"`
	TypeID        primitive.ObjectID `bson:"type_id" json:"type_id"`
	StartDate     time.Time          `bson:"start_date" json:"start_date"`
	EndDate       time.Time          `bson:"end_date" json:"end_date"`
	BudgetPlanned *float64           `bson:"budget_planned,omitempty" json:"budget_planned,omitempty"`
	BudgetActual  *float64           `bson:"budget_actual,omitempty" json:"budget_actual,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
