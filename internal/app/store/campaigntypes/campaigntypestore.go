package campaigntypestore

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

var (
	ErrNotFound = errors.New("campaign type not found")
	// ErrLast is returned when a delete would leave the project with no types.
	ErrLast = errors.New("cannot delete the last campaign type")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.CampaignTypes)}
}

// ListByProject returns a project's campaign types, oldest first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.CampaignType, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CampaignType
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads one campaign type of a project.
func (s *Store) Get(ctx context.Context, projectID, id primitive.ObjectID) (models.CampaignType, error) {
	var ct models.CampaignType
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "project_id": projectID}).Decode(&ct); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.CampaignType{}, ErrNotFound
		}
		return models.CampaignType{}, err
	}
	return ct, nil
}

// Count returns how many types the project has.
func (s *Store) Count(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"project_id": projectID})
}

// Create inserts ct.
func (s *Store) Create(ctx context.Context, ct models.CampaignType) (models.CampaignType, error) {
	if ct.ID.IsZero() {
		ct.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	ct.CreatedAt, ct.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, ct); err != nil {
		return models.CampaignType{}, err
	}
	return ct, nil
}

// SeedDefault inserts the default type when the project has none and returns
// the resulting list.
func (s *Store) SeedDefault(ctx context.Context, projectID primitive.ObjectID) ([]models.CampaignType, error) {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"project_id": projectID, "name": models.DefaultCampaignTypeName},
		bson.M{"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"color":      models.DefaultCampaignTypeColor,
			"created_at": now,
			"updated_at": now,
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return s.ListByProject(ctx, projectID)
}

// Update holds the mutable type fields. Nil leaves a field unchanged.
type Update struct {
	Name  *string
	Color *string
}

// Update merges upd into the type.
func (s *Store) Update(ctx context.Context, projectID, id primitive.ObjectID, upd Update) (models.CampaignType, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Color != nil {
		set["color"] = *upd.Color
	}
	var ct models.CampaignType
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "project_id": projectID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&ct)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.CampaignType{}, ErrNotFound
		}
		return models.CampaignType{}, err
	}
	return ct, nil
}

// Delete removes one type, refusing when it is the project's last. If a
// concurrent delete raced past the count check the removed type is
// restored and ErrLast is returned.
func (s *Store) Delete(ctx context.Context, projectID, id primitive.ObjectID) error {
	ct, err := s.Get(ctx, projectID, id)
	if err != nil {
		return err
	}
	n, err := s.Count(ctx, projectID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLast
	}
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "project_id": projectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	left, err := s.Count(ctx, projectID)
	if err != nil {
		return err
	}
	if left == 0 {
		if _, err := s.c.InsertOne(ctx, ct); err != nil {
			return err
		}
		return ErrLast
	}
	return nil
}

// DeleteByProject removes every type of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
