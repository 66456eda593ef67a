package channelstore

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

var ErrNotFound = errors.New("channel not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.Channels)}
}

// ListByProject returns a project's channels in display order.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Channel, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Channel
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads one channel of a project.
func (s *Store) Get(ctx context.Context, projectID, id primitive.ObjectID) (models.Channel, error) {
	var ch models.Channel
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "project_id": projectID}).Decode(&ch); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Channel{}, ErrNotFound
		}
		return models.Channel{}, err
	}
	return ch, nil
}

// NextOrder returns one more than the highest order in use, or 0 for a
// project with no channels.
func (s *Store) NextOrder(ctx context.Context, projectID primitive.ObjectID) (int, error) {
	var top models.Channel
	err := s.c.FindOne(ctx, bson.M{"project_id": projectID},
		options.FindOne().SetSort(bson.D{{Key: "order", Value: -1}})).Decode(&top)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return top.Order + 1, nil
}

// Create inserts ch as given.
func (s *Store) Create(ctx context.Context, ch models.Channel) (models.Channel, error) {
	if ch.ID.IsZero() {
		ch.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	ch.CreatedAt, ch.UpdatedAt = now, now
	if _, err := s.c.InsertOne(ctx, ch); err != nil {
		return models.Channel{}, err
	}
	return ch, nil
}

// SeedDefault inserts the default channel when the project has none and
// returns the resulting list.
func (s *Store) SeedDefault(ctx context.Context, projectID primitive.ObjectID) ([]models.Channel, error) {
	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"project_id": projectID, "order": 0, "name": models.DefaultChannelName},
		bson.M{"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": now,
			"updated_at": now,
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		return nil, err
	}
	return s.ListByProject(ctx, projectID)
}

// Update holds the mutable channel fields. Nil leaves a field unchanged.
type Update struct {
	Name  *string
	Color *string
}

// Update merges upd into the channel.
func (s *Store) Update(ctx context.Context, projectID, id primitive.ObjectID, upd Update) (models.Channel, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Color != nil {
		set["color"] = *upd.Color
	}
	var ch models.Channel
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id, "project_id": projectID}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&ch)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Channel{}, ErrNotFound
		}
		return models.Channel{}, err
	}
	return ch, nil
}

// Reorder assigns order = index for each id in ids with one bulk write.
// Ids that do not belong to the project are ignored.
func (s *Store) Reorder(ctx context.Context, projectID primitive.ObjectID, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	writes := make([]mongo.WriteModel, 0, len(ids))
	for i, id := range ids {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id, "project_id": projectID}).
			SetUpdate(bson.M{"$set": bson.M{"order": i, "updated_at": now}}))
	}
	_, err := s.c.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// Delete removes one channel.
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

// DeleteByProject removes every channel of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
