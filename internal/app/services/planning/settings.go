package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/dates"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// leapYear sizes the day range a phase may use; Feb 29 is accepted and
// clamps to Feb 28 in other years.
const leapYear = 2024

// Phases returns the project's phases, or the defaults.
func (s *Service) Phases(ctx context.Context, projectID primitive.ObjectID) (models.PhaseSet, error) {
	ps, err := s.phases.Get(ctx, projectID)
	if err != nil {
		return models.PhaseSet{}, fmt.Errorf("load phases: %w", err)
	}
	return ps, nil
}

// PutPhases validates and saves all three phases.
func (s *Service) PutPhases(ctx context.Context, projectID primitive.ObjectID, ps models.PhaseSet) (models.PhaseSet, error) {
	ps.ProjectID = projectID
	for _, key := range models.PhaseKeys {
		p, _ := ps.Get(key)
		clean, err := cleanPhase(key, p)
		if err != nil {
			return models.PhaseSet{}, err
		}
		switch key {
		case models.Phase1:
			ps.Phase1 = clean
		case models.Phase2:
			ps.Phase2 = clean
		case models.Phase3:
			ps.Phase3 = clean
		}
	}
	if err := s.phases.Put(ctx, ps); err != nil {
		return models.PhaseSet{}, fmt.Errorf("save phases: %w", err)
	}
	return ps, nil
}

func cleanPhase(key string, p models.Phase) (models.Phase, error) {
	name, err := cleanText(p.Name, key+"_name", "Phase name", MaxPhaseNameLength, true)
	if err != nil {
		return models.Phase{}, err
	}
	color, err := cleanColor(p.Color, true)
	if err != nil {
		return models.Phase{}, err
	}
	if !validMonthDay(p.StartMonth, p.StartDay) || !validMonthDay(p.EndMonth, p.EndDay) {
		return models.Phase{}, apperr.Validation("invalid_phase_date", fmt.Sprintf("%s has an invalid month or day.", name))
	}
	start, _ := dates.Reanchor(p.StartMonth, p.StartDay, leapYear)
	end, _ := dates.Reanchor(p.EndMonth, p.EndDay, leapYear)
	if end.Before(start) {
		return models.Phase{}, apperr.Validation("phase_end_before_start", fmt.Sprintf("%s must end on or after its start.", name))
	}
	p.Name, p.Color = name, color
	return p, nil
}

func validMonthDay(month, day int) bool {
	if month < 1 || month > 12 {
		return false
	}
	return day >= 1 && day <= dates.DaysInMonth(time.Month(month), leapYear)
}

// Branding returns the project's branding, or the defaults.
func (s *Service) Branding(ctx context.Context, projectID primitive.ObjectID) (models.Branding, error) {
	b, err := s.branding.Get(ctx, projectID)
	if err != nil {
		return models.Branding{}, fmt.Errorf("load branding: %w", err)
	}
	return b, nil
}

// PutBranding validates every colour and saves the branding document.
func (s *Service) PutBranding(ctx context.Context, projectID primitive.ObjectID, b models.Branding) (models.Branding, error) {
	b.ProjectID = projectID
	for _, c := range []*string{&b.PrimaryColor, &b.AccentColor, &b.BackgroundColor, &b.TextColor} {
		clean, err := cleanColor(*c, true)
		if err != nil {
			return models.Branding{}, err
		}
		*c = clean
	}
	out, err := s.branding.Put(ctx, b)
	if err != nil {
		return models.Branding{}, fmt.Errorf("save branding: %w", err)
	}
	return out, nil
}

// Snapshot is every planning document of a project, as the timeline and
// analytics views consume them.
type Snapshot struct {
	Channels  []models.Channel
	Types     []models.CampaignType
	Campaigns []models.Campaign
	Phases    models.PhaseSet
}

// Snapshot loads channels, types, all campaigns and phases. Channels and
// types are seeded when missing.
func (s *Service) Snapshot(ctx context.Context, projectID primitive.ObjectID) (Snapshot, error) {
	var snap Snapshot
	var err error
	if snap.Channels, err = s.Channels(ctx, projectID); err != nil {
		return Snapshot{}, err
	}
	if snap.Types, err = s.CampaignTypes(ctx, projectID); err != nil {
		return Snapshot{}, err
	}
	if snap.Campaigns, err = s.Campaigns(ctx, projectID, CampaignFilter{}); err != nil {
		return Snapshot{}, err
	}
	if snap.Phases, err = s.Phases(ctx, projectID); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
