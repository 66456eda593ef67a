package campaignstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("campaign not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.Campaigns)}
}

// Window restricts a listing to campaigns overlapping [From, To]. A zero
// bound is open.
type Window struct {
	From time.Time
	To   time.Time
}

// ListByProject returns a project's campaigns ordered by start date.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID, w Window) ([]models.Campaign, error) {
	filter := bson.M{"project_id": projectID}
	if !w.To.IsZero() {
		filter["start_date"] = bson.M{"$lte": w.To}
	}
	if !w.From.IsZero() {
		filter["end_date"] = bson.M{"$gte": w.From}
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Campaign
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads one campaign of a project.
func (s *Store) Get(ctx context.Context, projectID, id primitive.ObjectID) (models.Campaign, error) {
	var c models.Campaign
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "project_id": projectID}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Campaign{}, ErrNotFound
		}
		return models.Campaign{}, err
	}
	return c, nil
}

// Create inserts c.
func (s *Store) Create(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Campaign{}, err
	}
	return c, nil
}

// Replace overwrites the mutable fields of c, keeping created_at.
func (s *Store) Replace(ctx context.Context, c models.Campaign) (models.Campaign, error) {
	set := bson.M{
		"name":       c.Name,
		"channel_id": c.ChannelID,
		"type_id":    c.TypeID,
		"start_date": c.StartDate,
		"end_date":   c.EndDate,
		"updated_at": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	unset := bson.M{}
	if c.BudgetPlanned != nil {
		set["budget_planned"] = *c.BudgetPlanned
	} else {
		unset["budget_planned"] = ""
	}
	if c.BudgetActual != nil {
		set["budget_actual"] = *c.BudgetActual
	} else {
		unset["budget_actual"] = ""
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var out models.Campaign
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": c.ID, "project_id": c.ProjectID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Campaign{}, ErrNotFound
		}
		return models.Campaign{}, err
	}
	return out, nil
}

// Delete removes one campaign.
func (s *Store) Delete(ctx context.Context, projectID, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "project_id": projectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByProject removes every campaign of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
