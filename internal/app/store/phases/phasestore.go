package phasestore

import (
	"context"
	"errors"

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
	return &Store{c: db.Collection(indexes.Phases)}
}

// Get returns the project's phases, or the defaults when none are saved.
func (s *Store) Get(ctx context.Context, projectID primitive.ObjectID) (models.PhaseSet, error) {
	var ps models.PhaseSet
	err := s.c.FindOne(ctx, bson.M{"_id": projectID}).Decode(&ps)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DefaultPhaseSet(projectID), nil
	}
	if err != nil {
		return models.PhaseSet{}, err
	}
	return ps, nil
}

// Put replaces the project's phases document.
func (s *Store) Put(ctx context.Context, ps models.PhaseSet) error {
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": ps.ProjectID}, ps, options.Replace().SetUpsert(true))
	return err
}

// DeleteByProject removes the project's phases document.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
