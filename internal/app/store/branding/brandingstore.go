package brandingstore

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

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.Branding)}
}

// Get returns the project's branding, or the defaults when none is saved.
func (s *Store) Get(ctx context.Context, projectID primitive.ObjectID) (models.Branding, error) {
	var b models.Branding
	err := s.c.FindOne(ctx, bson.M{"_id": projectID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DefaultBranding(projectID), nil
	}
	if err != nil {
		return models.Branding{}, err
	}
	return b, nil
}

// Put replaces the project's branding document.
func (s *Store) Put(ctx context.Context, b models.Branding) (models.Branding, error) {
	b.UpdatedAt = time.Now().UTC()
	if _, err := s.c.ReplaceOne(ctx, bson.M{"_id": b.ProjectID}, b, options.Replace().SetUpsert(true)); err != nil {
		return models.Branding{}, err
	}
	return b, nil
}

// DeleteByProject removes the project's branding document.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
