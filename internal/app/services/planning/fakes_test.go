package planning

import (
	"context"
	"sort"
	"sync"

	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	campaigntypestore "github.com/dalemusser/campaignhub/internal/app/store/campaigntypes"
	channelstore "github.com/dalemusser/campaignhub/internal/app/store/channels"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeChannels struct {
	mu    sync.Mutex
	rows  []models.Channel
	seeds int
}

func (f *fakeChannels) ListByProject(_ context.Context, projectID primitive.ObjectID) ([]models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Channel
	for _, ch := range f.rows {
		if ch.ProjectID == projectID {
			out = append(out, ch)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeChannels) NextOrder(_ context.Context, projectID primitive.ObjectID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := 0
	for _, ch := range f.rows {
		if ch.ProjectID == projectID && ch.Order >= next {
			next = ch.Order + 1
		}
	}
	return next, nil
}

func (f *fakeChannels) Create(_ context.Context, ch models.Channel) (models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ch.ID.IsZero() {
		ch.ID = primitive.NewObjectID()
	}
	f.rows = append(f.rows, ch)
	return ch, nil
}

func (f *fakeChannels) SeedDefault(ctx context.Context, projectID primitive.ObjectID) ([]models.Channel, error) {
	f.mu.Lock()
	f.seeds++
	f.rows = append(f.rows, models.Channel{ID: primitive.NewObjectID(), ProjectID: projectID, Name: models.DefaultChannelName})
	f.mu.Unlock()
	return f.ListByProject(ctx, projectID)
}

func (f *fakeChannels) find(projectID, id primitive.ObjectID) int {
	for i, ch := range f.rows {
		if ch.ID == id && ch.ProjectID == projectID {
			return i
		}
	}
	return -1
}

func (f *fakeChannels) Update(_ context.Context, projectID, id primitive.ObjectID, upd channelstore.Update) (models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(projectID, id)
	if i < 0 {
		return models.Channel{}, channelstore.ErrNotFound
	}
	if upd.Name != nil {
		f.rows[i].Name = *upd.Name
	}
	if upd.Color != nil {
		f.rows[i].Color = *upd.Color
	}
	return f.rows[i], nil
}

func (f *fakeChannels) Reorder(_ context.Context, projectID primitive.ObjectID, ids []primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for order, id := range ids {
		if i := f.find(projectID, id); i >= 0 {
			f.rows[i].Order = order
		}
	}
	return nil
}

func (f *fakeChannels) Delete(_ context.Context, projectID, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.find(projectID, id)
	if i < 0 {
		return channelstore.ErrNotFound
	}
	f.rows = append(f.rows[:i:i], f.rows[i+1:]...)
	return nil
}

type fakeTypes struct {
	mu   sync.Mutex
	rows []models.CampaignType
}

func (f *fakeTypes) ListByProject(_ context.Context, projectID primitive.ObjectID) ([]models.CampaignType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CampaignType
	for _, ct := range f.rows {
		if ct.ProjectID == projectID {
			out = append(out, ct)
		}
	}
	return out, nil
}

func (f *fakeTypes) Create(_ context.Context, ct models.CampaignType) (models.CampaignType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ct.ID.IsZero() {
		ct.ID = primitive.NewObjectID()
	}
	f.rows = append(f.rows, ct)
	return ct, nil
}

func (f *fakeTypes) SeedDefault(ctx context.Context, projectID primitive.ObjectID) ([]models.CampaignType, error) {
	f.mu.Lock()
	f.rows = append(f.rows, models.CampaignType{
		ID: primitive.NewObjectID(), ProjectID: projectID,
		Name: models.DefaultCampaignTypeName, Color: models.DefaultCampaignTypeColor,
	})
	f.mu.Unlock()
	return f.ListByProject(ctx, projectID)
}

func (f *fakeTypes) Update(_ context.Context, projectID, id primitive.ObjectID, upd campaigntypestore.Update) (models.CampaignType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, ct := range f.rows {
		if ct.ID == id && ct.ProjectID == projectID {
			if upd.Name != nil {
				f.rows[i].Name = *upd.Name
			}
			if upd.Color != nil {
				f.rows[i].Color = *upd.Color
			}
			return f.rows[i], nil
		}
	}
	return models.CampaignType{}, campaigntypestore.ErrNotFound
}

func (f *fakeTypes) Delete(_ context.Context, projectID, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	count, at := 0, -1
	for i, ct := range f.rows {
		if ct.ProjectID == projectID {
			count++
			if ct.ID == id {
				at = i
			}
		}
	}
	if at < 0 {
		return campaigntypestore.ErrNotFound
	}
	if count <= 1 {
		return campaigntypestore.ErrLast
	}
	f.rows = append(f.rows[:at:at], f.rows[at+1:]...)
	return nil
}

type fakeCampaigns struct {
	mu       sync.Mutex
	rows     map[primitive.ObjectID]models.Campaign
	lastWind campaignstore.Window
}

func newFakeCampaigns() *fakeCampaigns {
	return &fakeCampaigns{rows: map[primitive.ObjectID]models.Campaign{}}
}

func (f *fakeCampaigns) ListByProject(_ context.Context, projectID primitive.ObjectID, w campaignstore.Window) ([]models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWind = w
	var out []models.Campaign
	for _, c := range f.rows {
		if c.ProjectID != projectID {
			continue
		}
		if !w.To.IsZero() && c.StartDate.After(w.To) {
			continue
		}
		if !w.From.IsZero() && c.EndDate.Before(w.From) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (f *fakeCampaigns) Get(_ context.Context, projectID, id primitive.ObjectID) (models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || c.ProjectID != projectID {
		return models.Campaign{}, campaignstore.ErrNotFound
	}
	return c, nil
}

func (f *fakeCampaigns) Create(_ context.Context, c models.Campaign) (models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeCampaigns) Replace(_ context.Context, c models.Campaign) (models.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.rows[c.ID]
	if !ok || prev.ProjectID != c.ProjectID {
		return models.Campaign{}, campaignstore.ErrNotFound
	}
	c.CreatedAt = prev.CreatedAt
	f.rows[c.ID] = c
	return c, nil
}

func (f *fakeCampaigns) Delete(_ context.Context, projectID, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || c.ProjectID != projectID {
		return campaignstore.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakePhases struct {
	rows map[primitive.ObjectID]models.PhaseSet
}

func (f *fakePhases) Get(_ context.Context, projectID primitive.ObjectID) (models.PhaseSet, error) {
	if ps, ok := f.rows[projectID]; ok {
		return ps, nil
	}
	return models.DefaultPhaseSet(projectID), nil
}

func (f *fakePhases) Put(_ context.Context, ps models.PhaseSet) error {
	f.rows[ps.ProjectID] = ps
	return nil
}

type fakeBranding struct {
	rows map[primitive.ObjectID]models.Branding
}

func (f *fakeBranding) Get(_ context.Context, projectID primitive.ObjectID) (models.Branding, error) {
	if b, ok := f.rows[projectID]; ok {
		return b, nil
	}
	return models.DefaultBranding(projectID), nil
}

func (f *fakeBranding) Put(_ context.Context, b models.Branding) (models.Branding, error) {
	f.rows[b.ProjectID] = b
	return b, nil
}
