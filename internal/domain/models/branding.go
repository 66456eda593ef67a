package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Branding holds per-project display and export color preferences
// (_id = project id). Defaults apply when the document is absent.
type Branding struct {
	ProjectID       primitive.ObjectID `bson:"_id" json:"project_id"`
	PrimaryColor    string             `bson:"primary_color" json:"primary_color"`
	AccentColor     string             `bson:"accent_color" json:"accent_color"`
	BackgroundColor string             `bson:"background_color" json:"background_color"`
	TextColor       string             `bson:"text_color" json:"text_color"`
	ExportShowPhase bool               `bson:"export_show_phases" json:"export_show_phases"`
	ExportShowLogo  bool               `bson:"export_show_logo" json:"export_show_logo"`
	UpdatedAt       time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// DefaultBranding returns the branding used when a project has none saved.
func DefaultBranding(projectID primitive.ObjectID) Branding {
	return Branding{
		ProjectID:       projectID,
		PrimaryColor:    "#4f46e5",
		AccentColor:     "#f59e0b",
		BackgroundColor: "#ffffff",
		TextColor:       "#1f2937",
		ExportShowPhase: true,
		ExportShowLogo:  false,
	}
}
