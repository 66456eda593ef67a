// Package analytics reduces campaign budgets into planned-versus-actual
// summaries grouped by channel, campaign type or phase.
package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/dalemusser/campaignhub/internal/app/system/dates"
	"github.com/dalemusser/campaignhub/internal/app/system/timeline"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trend is the budget classification of actual against planned spend.
// Positive means under budget.
type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNegative Trend = "negative"
	TrendNeutral  Trend = "neutral"
)

// Grouping keys.
const (
	GroupChannel = "channel"
	GroupType    = "type"
	GroupPhase   = "phase"
)

// Classify compares actual spend to the plan.
func Classify(planned, actual float64) Trend {
	switch {
	case actual < planned:
		return TrendPositive
	case actual > planned:
		return TrendNegative
	default:
		return TrendNeutral
	}
}

// Amount reads an optional budget, treating absent or non-finite values as 0.
func Amount(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

// Totals is a planned/actual reduction. Difference is planned minus actual;
// zero or above is favorable.
type Totals struct {
	Planned    float64 `json:"planned"`
	Actual     float64 `json:"actual"`
	Difference float64 `json:"difference"`
	Trend      Trend   `json:"trend"`
	Count      int     `json:"count"`
}

func (t *Totals) add(c models.Campaign) {
	t.Planned += Amount(c.BudgetPlanned)
	t.Actual += Amount(c.BudgetActual)
	t.Count++
}

func (t *Totals) finish() {
	t.Difference = t.Planned - t.Actual
	t.Trend = Classify(t.Planned, t.Actual)
}

// Sum reduces every campaign into one Totals.
func Sum(campaigns []models.Campaign) Totals {
	var t Totals
	for _, c := range campaigns {
		t.add(c)
	}
	t.finish()
	return t
}

// Group is one bucket of a grouped reduction.
type Group struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Totals
}

// Phases is a set of concrete phase windows keyed by phase key.
type Phases map[string]PhaseWindow

// PhaseWindow is a phase re-anchored to a year.
type PhaseWindow struct {
	Name  string
	Color string
	Range dates.Range
}

// PhaseWindows re-anchors every valid phase in ps to year.
func PhaseWindows(ps models.PhaseSet, year int) Phases {
	out := make(Phases, len(models.PhaseKeys))
	for _, key := range models.PhaseKeys {
		p, _ := ps.Get(key)
		if r, ok := timeline.PhaseWindow(p, year); ok {
			out[key] = PhaseWindow{Name: p.Name, Color: p.Color, Range: r}
		}
	}
	return out
}

func campaignRange(c models.Campaign) dates.Range {
	return dates.NewRange(c.StartDate, c.EndDate)
}

// InPhase reports whether c overlaps w. Overlap, not containment, decides
// membership.
func InPhase(c models.Campaign, w PhaseWindow) bool {
	return campaignRange(c).Overlaps(w.Range)
}

// FilterByPhase keeps campaigns overlapping w.
func FilterByPhase(campaigns []models.Campaign, w PhaseWindow) []models.Campaign {
	out := make([]models.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if InPhase(c, w) {
			out = append(out, c)
		}
	}
	return out
}

// FilterByYear keeps campaigns that touch the calendar year.
func FilterByYear(campaigns []models.Campaign, year int) []models.Campaign {
	yr := dates.YearRange(year)
	out := make([]models.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if campaignRange(c).Overlaps(yr) {
			out = append(out, c)
		}
	}
	return out
}

// ByChannel groups campaigns by channel. Every known channel is present,
// even with no campaigns; unknown channel ids share one "Unassigned" group.
// Groups are ordered like ChannelRanking.
func ByChannel(campaigns []models.Campaign, channels []models.Channel) []Group {
	idx := make(map[primitive.ObjectID]int, len(channels))
	groups := make([]Group, 0, len(channels)+1)
	for _, ch := range channels {
		idx[ch.ID] = len(groups)
		groups = append(groups, Group{Key: ch.ID.Hex(), Name: ch.Name, Color: ch.Color})
	}
	unassigned := -1
	for _, c := range campaigns {
		i, ok := idx[c.ChannelID]
		if !ok {
			if unassigned < 0 {
				unassigned = len(groups)
				groups = append(groups, Group{Key: "", Name: timeline.UnassignedRowName})
			}
			i = unassigned
		}
		groups[i].add(c)
	}
	for i := range groups {
		groups[i].finish()
	}
	sortRanking(groups)
	return groups
}

// ByType groups campaigns by campaign type. Unknown type ids share one
// "Unassigned" group drawn in the default type colour.
func ByType(campaigns []models.Campaign, types []models.CampaignType) []Group {
	idx := make(map[primitive.ObjectID]int, len(types))
	groups := make([]Group, 0, len(types)+1)
	for _, t := range types {
		idx[t.ID] = len(groups)
		groups = append(groups, Group{Key: t.ID.Hex(), Name: t.Name, Color: t.Color})
	}
	unassigned := -1
	for _, c := range campaigns {
		i, ok := idx[c.TypeID]
		if !ok {
			if unassigned < 0 {
				unassigned = len(groups)
				groups = append(groups, Group{Name: timeline.UnassignedRowName, Color: models.DefaultCampaignTypeColor})
			}
			i = unassigned
		}
		groups[i].add(c)
	}
	for i := range groups {
		groups[i].finish()
	}
	return groups
}

// ByPhase groups campaigns by phase window. A campaign overlapping several
// phases is counted in each of them.
func ByPhase(campaigns []models.Campaign, phases Phases) []Group {
	groups := make([]Group, 0, len(phases))
	for _, key := range models.PhaseKeys {
		w, ok := phases[key]
		if !ok {
			continue
		}
		g := Group{Key: key, Name: w.Name, Color: w.Color}
		for _, c := range campaigns {
			if InPhase(c, w) {
				g.add(c)
			}
		}
		g.finish()
		groups = append(groups, g)
	}
	return groups
}

// RankedChannel is a channel in budget order. NoBudget marks channels with
// neither planned nor actual spend; they are listed, not hidden.
type RankedChannel struct {
	Group
	NoBudget bool `json:"no_budget"`
}

// ChannelRanking orders channel groups by planned budget, highest first,
// breaking ties alphabetically by name.
func ChannelRanking(groups []Group) []RankedChannel {
	sorted := append([]Group(nil), groups...)
	sortRanking(sorted)
	out := make([]RankedChannel, len(sorted))
	for i, g := range sorted {
		out[i] = RankedChannel{Group: g, NoBudget: g.Planned == 0 && g.Actual == 0}
	}
	return out
}

func sortRanking(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Planned != groups[j].Planned {
			return groups[i].Planned > groups[j].Planned
		}
		return strings.ToLower(groups[i].Name) < strings.ToLower(groups[j].Name)
	})
}

// MixEntry is one type's share of actual spend.
type MixEntry struct {
	Group
	Share   float64 `json:"share"`
	Percent float64 `json:"percent"`
	Legend  bool    `json:"legend"`
}

// TypeMix computes each type's share of total actual spend. Types with no
// actual spend stay in the result but are left out of the legend. When the
// total is zero every share is zero.
func TypeMix(groups []Group) []MixEntry {
	var total float64
	for _, g := range groups {
		total += g.Actual
	}
	out := make([]MixEntry, len(groups))
	for i, g := range groups {
		e := MixEntry{Group: g, Legend: g.Actual > 0}
		if total > 0 {
			e.Share = g.Actual / total
			e.Percent = e.Share * 100
		}
		out[i] = e
	}
	return out
}

// Report is the full analytics view for a project.
type Report struct {
	GroupBy string          `json:"group_by"`
	Phase   string          `json:"phase,omitempty"`
	Year    int             `json:"year"`
	Totals  Totals          `json:"totals"`
	Groups  []Group         `json:"groups"`
	Ranking []RankedChannel `json:"channel_ranking"`
	Mix     []MixEntry      `json:"type_mix"`
}

// Input carries the project documents a report is computed from.
type Input struct {
	Campaigns []models.Campaign
	Channels  []models.Channel
	Types     []models.CampaignType
	Phases    models.PhaseSet
}

// Build computes a report for year. phaseKey, when set, pre-filters the
// campaigns to that phase window; an unknown or invalid phase yields an empty
// campaign set. groupBy falls back to channel.
func Build(in Input, groupBy, phaseKey string, year int) Report {
	windows := PhaseWindows(in.Phases, year)
	campaigns := FilterByYear(in.Campaigns, year)
	if phaseKey != "" {
		w, ok := windows[phaseKey]
		if ok {
			campaigns = FilterByPhase(campaigns, w)
		} else {
			campaigns = nil
		}
	}

	byChannel := ByChannel(campaigns, in.Channels)
	r := Report{
		GroupBy: groupBy,
		Phase:   phaseKey,
		Year:    year,
		Totals:  Sum(campaigns),
		Ranking: ChannelRanking(byChannel),
		Mix:     TypeMix(ByType(campaigns, in.Types)),
	}
	switch groupBy {
	case GroupType:
		r.Groups = ByType(campaigns, in.Types)
	case GroupPhase:
		r.Groups = ByPhase(campaigns, windows)
	default:
		r.GroupBy = GroupChannel
		r.Groups = byChannel
	}
	return r
}
