package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateUser creates a user profile with the given email and display name.
func (f *Fixtures) CreateUser(ctx context.Context, email, name string) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		Email:         email,
		DisplayName:   name,
		DisplayNameCI: text.Fold(name),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	f.insert(ctx, indexes.Users, u)
	return u
}

// CreateProject creates a project owned by owner together with the owner
// membership row.
func (f *Fixtures) CreateProject(ctx context.Context, owner primitive.ObjectID, name string) models.Project {
	f.t.Helper()
	now := time.Now().UTC()
	p := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, indexes.Projects, p)
	f.AddMember(ctx, p.ID, owner, models.RoleOwner)
	return p
}

// AddMember inserts a membership row.
func (f *Fixtures) AddMember(ctx context.Context, projectID, userID primitive.ObjectID, role string) models.ProjectMember {
	f.t.Helper()
	m := models.ProjectMember{
		ID:        models.MemberID(projectID, userID),
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
		JoinedAt:  time.Now().UTC(),
	}
	f.insert(ctx, indexes.ProjectMembers, m)
	return m
}

// CreateInvitation inserts a pending invitation expiring at expiresAt.
func (f *Fixtures) CreateInvitation(ctx context.Context, projectID primitive.ObjectID, email, role, token string, expiresAt time.Time) models.Invitation {
	f.t.Helper()
	inv := models.Invitation{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Email:     email,
		Role:      role,
		Token:     token,
		Status:    models.InvitationPending,
		InvitedBy: primitive.NewObjectID(),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt,
	}
	f.insert(ctx, indexes.Invitations, inv)
	return inv
}

// CreateChannel inserts a channel at the given order.
func (f *Fixtures) CreateChannel(ctx context.Context, projectID primitive.ObjectID, name string, order int) models.Channel {
	f.t.Helper()
	now := time.Now().UTC()
	ch := models.Channel{ID: primitive.NewObjectID(), ProjectID: projectID, Name: name, Order: order, CreatedAt: now, UpdatedAt: now}
	f.insert(ctx, indexes.Channels, ch)
	return ch
}

// CreateCampaignType inserts a campaign type.
func (f *Fixtures) CreateCampaignType(ctx context.Context, projectID primitive.ObjectID, name, color string) models.CampaignType {
	f.t.Helper()
	now := time.Now().UTC()
	ct := models.CampaignType{ID: primitive.NewObjectID(), ProjectID: projectID, Name: name, Color: color, CreatedAt: now, UpdatedAt: now}
	f.insert(ctx, indexes.CampaignTypes, ct)
	return ct
}

// CreateCampaign inserts a campaign spanning start..end.
func (f *Fixtures) CreateCampaign(ctx context.Context, projectID, channelID, typeID primitive.ObjectID, name string, start, end time.Time) models.Campaign {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Campaign{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		Name:      name,
		ChannelID: channelID,
		TypeID:    typeID,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, indexes.Campaigns, c)
	return c
}
