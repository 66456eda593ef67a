package timeline

import (
	"sort"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/system/dates"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnassignedRowName labels the row for campaigns whose channel no longer exists.
const UnassignedRowName = "Unassigned"

// Item is one campaign drawn on a row.
type Item struct {
	CampaignID primitive.ObjectID `json:"campaign_id"`
	Name       string             `json:"name"`
	TypeID     primitive.ObjectID `json:"type_id"`
	TypeName   string             `json:"type_name,omitempty"`
	Color      string             `json:"color"`
	Range      dates.Range        `json:"range"`
	Span       Span               `json:"span"`
}

// Row groups the visible campaigns of one channel.
type Row struct {
	ChannelID  *primitive.ObjectID `json:"channel_id"`
	Name       string              `json:"name"`
	Color      string              `json:"color,omitempty"`
	Unassigned bool                `json:"unassigned,omitempty"`
	Items      []Item              `json:"items"`
}

// Chart is the complete timeline for a view.
type Chart struct {
	View      View          `json:"view"`
	TotalDays int           `json:"total_days"`
	Width     float64       `json:"width,omitempty"`
	Rows      []Row         `json:"rows"`
	Bands     []Band        `json:"bands"`
	Months    []MonthMarker `json:"months"`
}

// Input carries the project documents a chart is built from.
type Input struct {
	Channels  []models.Channel
	Types     []models.CampaignType
	Campaigns []models.Campaign
	Phases    models.PhaseSet
}

// Build lays out in for view. Every channel gets a row in display order, even
// when empty. Campaigns pointing at a missing channel land on a trailing
// "Unassigned" row, which is omitted when it would be empty. A campaign whose
// type is missing takes the default type colour. width, when positive, fills
// the pixel fields of every span.
func Build(view View, in Input, width float64) Chart {
	chart := Chart{
		View:      view,
		TotalDays: view.Range.Days(),
		Width:     width,
		Rows:      []Row{},
	}
	if chart.TotalDays <= 0 {
		chart.TotalDays = 0
		return chart
	}

	types := make(map[primitive.ObjectID]models.CampaignType, len(in.Types))
	for _, t := range in.Types {
		types[t.ID] = t
	}

	channels := append([]models.Channel(nil), in.Channels...)
	sort.SliceStable(channels, func(i, j int) bool {
		if channels[i].Order != channels[j].Order {
			return channels[i].Order < channels[j].Order
		}
		return strings.ToLower(channels[i].Name) < strings.ToLower(channels[j].Name)
	})
	rowIdx := make(map[primitive.ObjectID]int, len(channels))
	for _, ch := range channels {
		id := ch.ID
		rowIdx[id] = len(chart.Rows)
		chart.Rows = append(chart.Rows, Row{ChannelID: &id, Name: ch.Name, Color: ch.Color, Items: []Item{}})
	}
	unassigned := Row{Name: UnassignedRowName, Unassigned: true, Items: []Item{}}

	for _, c := range in.Campaigns {
		r := dates.NewRange(c.StartDate, c.EndDate)
		span, ok := Layout(view.Range, r)
		if !ok {
			continue
		}
		item := Item{
			CampaignID: c.ID,
			Name:       c.Name,
			TypeID:     c.TypeID,
			Color:      models.DefaultCampaignTypeColor,
			Range:      r,
			Span:       span.Scale(width),
		}
		if t, ok := types[c.TypeID]; ok {
			item.TypeName = t.Name
			if t.Color != "" {
				item.Color = t.Color
			}
		}
		if i, ok := rowIdx[c.ChannelID]; ok {
			chart.Rows[i].Items = append(chart.Rows[i].Items, item)
		} else {
			unassigned.Items = append(unassigned.Items, item)
		}
	}
	if len(unassigned.Items) > 0 {
		chart.Rows = append(chart.Rows, unassigned)
	}
	for i := range chart.Rows {
		sortItems(chart.Rows[i].Items)
	}

	for _, b := range PhaseBands(view, in.Phases) {
		b.Span = b.Span.Scale(width)
		chart.Bands = append(chart.Bands, b)
	}
	for _, m := range MonthMarkers(view.Range) {
		m.Span = m.Span.Scale(width)
		chart.Months = append(chart.Months, m)
	}
	return chart
}

func sortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Range.Start.Equal(items[j].Range.Start) {
			return items[i].Range.Start.Before(items[j].Range.Start)
		}
		return items[i].Name < items[j].Name
	})
}
