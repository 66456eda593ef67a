// Package planning owns a project's planning data: channels, campaign
// types, campaigns, phases and branding. It validates input, seeds the
// defaults a project must always have, and translates store errors into
// apperr values.
package planning

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	campaigntypestore "github.com/dalemusser/campaignhub/internal/app/store/campaigntypes"
	channelstore "github.com/dalemusser/campaignhub/internal/app/store/channels"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	MaxChannelNameLength  = 80
	MaxTypeNameLength     = 80
	MaxCampaignNameLength = 200
	MaxPhaseNameLength    = 60
)

// ChannelStore is satisfied by *channelstore.Store.
type ChannelStore interface {
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Channel, error)
	NextOrder(ctx context.Context, projectID primitive.ObjectID) (int, error)
	Create(ctx context.Context, ch models.Channel) (models.Channel, error)
	SeedDefault(ctx context.Context, projectID primitive.ObjectID) ([]models.Channel, error)
	Update(ctx context.Context, projectID, id primitive.ObjectID, upd channelstore.Update) (models.Channel, error)
	Reorder(ctx context.Context, projectID primitive.ObjectID, ids []primitive.ObjectID) error
	Delete(ctx context.Context, projectID, id primitive.ObjectID) error
}

// TypeStore is satisfied by *campaigntypestore.Store.
type TypeStore interface {
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.CampaignType, error)
	Create(ctx context.Context, ct models.CampaignType) (models.CampaignType, error)
	SeedDefault(ctx context.Context, projectID primitive.ObjectID) ([]models.CampaignType, error)
	Update(ctx context.Context, projectID, id primitive.ObjectID, upd campaigntypestore.Update) (models.CampaignType, error)
	Delete(ctx context.Context, projectID, id primitive.ObjectID) error
}

// CampaignStore is satisfied by *campaignstore.Store.
type CampaignStore interface {
	ListByProject(ctx context.Context, projectID primitive.ObjectID, w campaignstore.Window) ([]models.Campaign, error)
	Get(ctx context.Context, projectID, id primitive.ObjectID) (models.Campaign, error)
	Create(ctx context.Context, c models.Campaign) (models.Campaign, error)
	Replace(ctx context.Context, c models.Campaign) (models.Campaign, error)
	Delete(ctx context.Context, projectID, id primitive.ObjectID) error
}

// PhaseStore is satisfied by *phasestore.Store.
type PhaseStore interface {
	Get(ctx context.Context, projectID primitive.ObjectID) (models.PhaseSet, error)
	Put(ctx context.Context, ps models.PhaseSet) error
}

// BrandingStore is satisfied by *brandingstore.Store.
type BrandingStore interface {
	Get(ctx context.Context, projectID primitive.ObjectID) (models.Branding, error)
	Put(ctx context.Context, b models.Branding) (models.Branding, error)
}

// Service implements the planning-data operations.
type Service struct {
	channels  ChannelStore
	types     TypeStore
	campaigns CampaignStore
	phases    PhaseStore
	branding  BrandingStore
	log       *zap.Logger
	now       func() time.Time
}

// New builds a Service.
func New(channels ChannelStore, types TypeStore, campaigns CampaignStore, phases PhaseStore, branding BrandingStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		channels:  channels,
		types:     types,
		campaigns: campaigns,
		phases:    phases,
		branding:  branding,
		log:       logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Now returns the service clock's current time.
func (s *Service) Now() time.Time { return s.now() }

func cleanText(raw, field, label string, max int, required bool) (string, error) {
	v := normalize.Name(htmlsanitize.Text(raw))
	if v == "" && required {
		return "", apperr.Validation(field+"_required", label+" is required.")
	}
	if utf8.RuneCountInString(v) > max {
		return "", apperr.Validation(field+"_too_long", fmt.Sprintf("%s must be at most %d characters.", label, max))
	}
	return v, nil
}

// cleanColor accepts "" when the colour is optional.
func cleanColor(raw string, required bool) (string, error) {
	c := normalize.Color(raw)
	if c == "" && !required {
		return "", nil
	}
	if !inputval.IsValidHexColor(c) {
		return "", apperr.Validation("invalid_color", "Colour must be a hex value like #4f46e5.")
	}
	return c, nil
}

// ---- channels ----

// Channels lists the project's channels in display order, seeding the
// default channel when there are none.
func (s *Service) Channels(ctx context.Context, projectID primitive.ObjectID) ([]models.Channel, error) {
	list, err := s.channels.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	if len(list) > 0 {
		return list, nil
	}
	list, err = s.channels.SeedDefault(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("seed channel: %w", err)
	}
	return list, nil
}

// ChannelInput describes a new channel.
type ChannelInput struct {
	Name  string
	Color string
}

// CreateChannel appends a channel after the existing ones.
func (s *Service) CreateChannel(ctx context.Context, projectID primitive.ObjectID, in ChannelInput) (models.Channel, error) {
	name, err := cleanText(in.Name, "name", "Channel name", MaxChannelNameLength, true)
	if err != nil {
		return models.Channel{}, err
	}
	color, err := cleanColor(in.Color, false)
	if err != nil {
		return models.Channel{}, err
	}
	order, err := s.channels.NextOrder(ctx, projectID)
	if err != nil {
		return models.Channel{}, fmt.Errorf("next channel order: %w", err)
	}
	return s.channels.Create(ctx, models.Channel{ProjectID: projectID, Name: name, Color: color, Order: order})
}

// ChannelPatch holds the fields to change; nil leaves a field alone.
type ChannelPatch struct {
	Name  *string
	Color *string
}

// UpdateChannel renames or recolours a channel.
func (s *Service) UpdateChannel(ctx context.Context, projectID, id primitive.ObjectID, in ChannelPatch) (models.Channel, error) {
	var upd channelstore.Update
	if in.Name != nil {
		name, err := cleanText(*in.Name, "name", "Channel name", MaxChannelNameLength, true)
		if err != nil {
			return models.Channel{}, err
		}
		upd.Name = &name
	}
	if in.Color != nil {
		color, err := cleanColor(*in.Color, false)
		if err != nil {
			return models.Channel{}, err
		}
		upd.Color = &color
	}
	ch, err := s.channels.Update(ctx, projectID, id, upd)
	if errors.Is(err, channelstore.ErrNotFound) {
		return models.Channel{}, apperr.ErrChannelNotFound
	}
	return ch, err
}

// ReorderChannels sets display order to the position of each id. Every
// channel of the project must appear exactly once.
func (s *Service) ReorderChannels(ctx context.Context, projectID primitive.ObjectID, ids []primitive.ObjectID) ([]models.Channel, error) {
	current, err := s.channels.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	known := make(map[primitive.ObjectID]bool, len(current))
	for _, ch := range current {
		known[ch.ID] = true
	}
	seen := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return nil, apperr.ErrChannelNotFound
		}
		if seen[id] {
			return nil, apperr.Validation("duplicate_channel", "Each channel may appear only once.")
		}
		seen[id] = true
	}
	if len(seen) != len(known) {
		return nil, apperr.Validation("incomplete_order", "The new order must list every channel.")
	}
	if err := s.channels.Reorder(ctx, projectID, ids); err != nil {
		return nil, fmt.Errorf("reorder channels: %w", err)
	}
	return s.channels.ListByProject(ctx, projectID)
}

// DeleteChannel removes a channel. Campaigns that referenced it are kept
// and drawn on the "Unassigned" row.
func (s *Service) DeleteChannel(ctx context.Context, projectID, id primitive.ObjectID) error {
	err := s.channels.Delete(ctx, projectID, id)
	if errors.Is(err, channelstore.ErrNotFound) {
		return apperr.ErrChannelNotFound
	}
	return err
}

// ---- campaign types ----

// CampaignTypes lists the project's types, seeding the default type when
// there are none.
func (s *Service) CampaignTypes(ctx context.Context, projectID primitive.ObjectID) ([]models.CampaignType, error) {
	list, err := s.types.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list campaign types: %w", err)
	}
	if len(list) > 0 {
		return list, nil
	}
	list, err = s.types.SeedDefault(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("seed campaign type: %w", err)
	}
	return list, nil
}

// TypeInput describes a new campaign type. An empty colour takes the
// default type colour.
type TypeInput struct {
	Name  string
	Color string
}

// CreateCampaignType adds a type.
func (s *Service) CreateCampaignType(ctx context.Context, projectID primitive.ObjectID, in TypeInput) (models.CampaignType, error) {
	name, err := cleanText(in.Name, "name", "Type name", MaxTypeNameLength, true)
	if err != nil {
		return models.CampaignType{}, err
	}
	if in.Color == "" {
		in.Color = models.DefaultCampaignTypeColor
	}
	color, err := cleanColor(in.Color, true)
	if err != nil {
		return models.CampaignType{}, err
	}
	return s.types.Create(ctx, models.CampaignType{ProjectID: projectID, Name: name, Color: color})
}

// TypePatch holds the fields to change; nil leaves a field alone.
type TypePatch struct {
	Name  *string
	Color *string
}

// UpdateCampaignType renames or recolours a type.
func (s *Service) UpdateCampaignType(ctx context.Context, projectID, id primitive.ObjectID, in TypePatch) (models.CampaignType, error) {
	var upd campaigntypestore.Update
	if in.Name != nil {
		name, err := cleanText(*in.Name, "name", "Type name", MaxTypeNameLength, true)
		if err != nil {
			return models.CampaignType{}, err
		}
		upd.Name = &name
	}
	if in.Color != nil {
		color, err := cleanColor(*in.Color, true)
		if err != nil {
			return models.CampaignType{}, err
		}
		upd.Color = &color
	}
	ct, err := s.types.Update(ctx, projectID, id, upd)
	if errors.Is(err, campaigntypestore.ErrNotFound) {
		return models.CampaignType{}, apperr.ErrCampaignTypeNotFound
	}
	return ct, err
}

// DeleteCampaignType removes a type unless it is the project's last one.
func (s *Service) DeleteCampaignType(ctx context.Context, projectID, id primitive.ObjectID) error {
	err := s.types.Delete(ctx, projectID, id)
	switch {
	case errors.Is(err, campaigntypestore.ErrNotFound):
		return apperr.ErrCampaignTypeNotFound
	case errors.Is(err, campaigntypestore.ErrLast):
		return apperr.ErrLastCampaignType
	}
	return err
}
