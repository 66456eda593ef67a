package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Phase keys. Every project has exactly these three.
const (
	Phase1 = "phase1"
	Phase2 = "phase2"
	Phase3 = "phase3"
)

// PhaseKeys lists phase keys in display order.
var PhaseKeys = []string{Phase1, Phase2, Phase3}

// Phase is a year-recurring strategic window stored as month/day pairs.
// It is re-anchored to a concrete year when read (see dates.Reanchor).
type Phase struct {
	Name       string `bson:"name" json:"name"`
	StartMonth int    `bson:"start_month" json:"start_month"`
	StartDay   int    `bson:"start_day" json:"start_day"`
	EndMonth   int    `bson:"end_month" json:"end_month"`
	EndDay     int    `bson:"end_day" json:"end_day"`
	Color      string `bson:"color" json:"color"`
}

// PhaseSet is the per-project phases document (_id = project id).
type PhaseSet struct {
	ProjectID primitive.ObjectID `bson:"_id" json:"project_id"`
	Phase1    Phase              `bson:"phase1" json:"phase1"`
	Phase2    Phase              `bson:"phase2" json:"phase2"`
	Phase3    Phase              `bson:"phase3" json:"phase3"`
}

// Get returns the phase for key and whether key is valid.
func (ps PhaseSet) Get(key string) (Phase, bool) {
	switch key {
	case Phase1:
		return ps.Phase1, true
	case Phase2:
		return ps.Phase2, true
	case Phase3:
		return ps.Phase3, true
	}
	return Phase{}, false
}

// DefaultPhaseSet splits the year into three strategic windows.
func DefaultPhaseSet(projectID primitive.ObjectID) PhaseSet {
	return PhaseSet{
		ProjectID: projectID,
		Phase1:    Phase{Name: "Phase 1", StartMonth: 1, StartDay: 1, EndMonth: 4, EndDay: 30, Color: "#dbeafe"},
		Phase2:    Phase{Name: "Phase 2", StartMonth: 5, StartDay: 1, EndMonth: 8, EndDay: 31, Color: "#dcfce7"},
		Phase3:    Phase{Name: "Phase 3", StartMonth: 9, StartDay: 1, EndMonth: 12, EndDay: 31, Color: "#fef3c7"},
	}
}
