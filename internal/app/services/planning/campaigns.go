package planning

import (
	"context"
	"errors"
	"fmt"
	"math"

	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	"github.com/dalemusser/campaignhub/internal/app/system/analytics"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/dates"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CampaignFilter narrows a campaign listing. Year 0 with no Phase lists
// everything. Phase without Year uses the current year.
type CampaignFilter struct {
	Year  int
	Phase string
}

// Campaigns lists campaigns ordered by start date. With a phase, only
// campaigns overlapping that phase's window in the year are returned; a
// phase whose dates are invalid matches nothing.
func (s *Service) Campaigns(ctx context.Context, projectID primitive.ObjectID, f CampaignFilter) ([]models.Campaign, error) {
	var w campaignstore.Window
	switch {
	case f.Phase != "":
		if !isPhaseKey(f.Phase) {
			return nil, apperr.Validation("unknown_phase", "Phase must be phase1, phase2 or phase3.")
		}
		year := f.Year
		if year == 0 {
			year = s.now().UTC().Year()
		}
		ps, err := s.phases.Get(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("load phases: %w", err)
		}
		pw, ok := analytics.PhaseWindows(ps, year)[f.Phase]
		if !ok {
			return []models.Campaign{}, nil
		}
		w = campaignstore.Window{From: pw.Range.Start, To: pw.Range.End}
	case f.Year != 0:
		yr := dates.YearRange(f.Year)
		w = campaignstore.Window{From: yr.Start, To: yr.End}
	}
	list, err := s.campaigns.ListByProject(ctx, projectID, w)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	if list == nil {
		list = []models.Campaign{}
	}
	return list, nil
}

// Campaign loads one campaign.
func (s *Service) Campaign(ctx context.Context, projectID, id primitive.ObjectID) (models.Campaign, error) {
	c, err := s.campaigns.Get(ctx, projectID, id)
	if errors.Is(err, campaignstore.ErrNotFound) {
		return models.Campaign{}, apperr.ErrCampaignNotFound
	}
	return c, err
}

// CampaignInput is a complete campaign as submitted. StartDate and EndDate
// take any value dates.ToInstant understands. An empty ChannelID or TypeID
// selects the project's first channel or type.
type CampaignInput struct {
	Name          string
	ChannelID     string
	TypeID        string
	StartDate     any
	EndDate       any
	BudgetPlanned *float64
	BudgetActual  *float64
}

// CreateCampaign validates and stores a new campaign.
func (s *Service) CreateCampaign(ctx context.Context, projectID primitive.ObjectID, in CampaignInput) (models.Campaign, error) {
	c, err := s.buildCampaign(ctx, projectID, in, models.Campaign{})
	if err != nil {
		return models.Campaign{}, err
	}
	return s.campaigns.Create(ctx, c)
}

// UpdateCampaign replaces every editable field of a campaign. A channel or
// type reference that is left as stored is accepted even if it no longer
// resolves.
func (s *Service) UpdateCampaign(ctx context.Context, projectID, id primitive.ObjectID, in CampaignInput) (models.Campaign, error) {
	prev, err := s.Campaign(ctx, projectID, id)
	if err != nil {
		return models.Campaign{}, err
	}
	c, err := s.buildCampaign(ctx, projectID, in, prev)
	if err != nil {
		return models.Campaign{}, err
	}
	c.ID = prev.ID
	out, err := s.campaigns.Replace(ctx, c)
	if errors.Is(err, campaignstore.ErrNotFound) {
		return models.Campaign{}, apperr.ErrCampaignNotFound
	}
	return out, err
}

// DeleteCampaign removes a campaign.
func (s *Service) DeleteCampaign(ctx context.Context, projectID, id primitive.ObjectID) error {
	err := s.campaigns.Delete(ctx, projectID, id)
	if errors.Is(err, campaignstore.ErrNotFound) {
		return apperr.ErrCampaignNotFound
	}
	return err
}

func (s *Service) buildCampaign(ctx context.Context, projectID primitive.ObjectID, in CampaignInput, prev models.Campaign) (models.Campaign, error) {
	name, err := cleanText(in.Name, "name", "Campaign name", MaxCampaignNameLength, true)
	if err != nil {
		return models.Campaign{}, err
	}
	start, err := dates.ToDay(in.StartDate)
	if err != nil {
		return models.Campaign{}, apperr.Validation("invalid_start_date", "Start date is missing or not a date.")
	}
	end, err := dates.ToDay(in.EndDate)
	if err != nil {
		return models.Campaign{}, apperr.Validation("invalid_end_date", "End date is missing or not a date.")
	}
	if end.Before(start) {
		return models.Campaign{}, apperr.Validation("end_before_start", "End date must be on or after the start date.")
	}
	if err := checkBudget(in.BudgetPlanned, "planned"); err != nil {
		return models.Campaign{}, err
	}
	if err := checkBudget(in.BudgetActual, "actual"); err != nil {
		return models.Campaign{}, err
	}

	channelID, err := s.resolveChannel(ctx, projectID, in.ChannelID, prev.ChannelID)
	if err != nil {
		return models.Campaign{}, err
	}
	typeID, err := s.resolveType(ctx, projectID, in.TypeID, prev.TypeID)
	if err != nil {
		return models.Campaign{}, err
	}

	return models.Campaign{
		ProjectID:     projectID,
		Name:          name,
		ChannelID:     channelID,
		TypeID:        typeID,
		StartDate:     start,
		EndDate:       end,
		BudgetPlanned: in.BudgetPlanned,
		BudgetActual:  in.BudgetActual,
	}, nil
}

func checkBudget(v *float64, which string) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return apperr.Validation("invalid_budget", fmt.Sprintf("The %s budget must be zero or more.", which))
	}
	return nil
}

func (s *Service) resolveChannel(ctx context.Context, projectID primitive.ObjectID, raw string, keep primitive.ObjectID) (primitive.ObjectID, error) {
	list, err := s.Channels(ctx, projectID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if raw == "" {
		if !keep.IsZero() {
			return keep, nil
		}
		return list[0].ID, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrChannelNotFound
	}
	if id == keep {
		return id, nil
	}
	for _, ch := range list {
		if ch.ID == id {
			return id, nil
		}
	}
	return primitive.NilObjectID, apperr.ErrChannelNotFound
}

func (s *Service) resolveType(ctx context.Context, projectID primitive.ObjectID, raw string, keep primitive.ObjectID) (primitive.ObjectID, error) {
	list, err := s.CampaignTypes(ctx, projectID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if raw == "" {
		if !keep.IsZero() {
			return keep, nil
		}
		return list[0].ID, nil
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.ErrCampaignTypeNotFound
	}
	if id == keep {
		return id, nil
	}
	for _, ct := range list {
		if ct.ID == id {
			return id, nil
		}
	}
	return primitive.NilObjectID, apperr.ErrCampaignTypeNotFound
}

func isPhaseKey(key string) bool {
	for _, k := range models.PhaseKeys {
		if k == key {
			return true
		}
	}
	return false
}
