package memberstore

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

var ErrNotFound = errors.New("membership not found")

// Store owns project_members. Each (project, user) pair has exactly one
// document whose _id is models.MemberID, so every write is an upsert.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.ProjectMembers)}
}

// Upsert creates or overwrites the membership for (m.ProjectID, m.UserID).
// JoinedAt is preserved when the row already exists.
func (s *Store) Upsert(ctx context.Context, m models.ProjectMember) (models.ProjectMember, error) {
	m.ID = models.MemberID(m.ProjectID, m.UserID)
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	var out models.ProjectMember
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": m.ID},
		bson.M{
			"$set":         bson.M{"project_id": m.ProjectID, "user_id": m.UserID, "role": m.Role},
			"$setOnInsert": bson.M{"joined_at": m.JoinedAt},
		},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&out)
	if err != nil {
		return models.ProjectMember{}, err
	}
	return out, nil
}

// Get loads the membership for (projectID, userID).
func (s *Store) Get(ctx context.Context, projectID, userID primitive.ObjectID) (models.ProjectMember, error) {
	var m models.ProjectMember
	if err := s.c.FindOne(ctx, bson.M{"_id": models.MemberID(projectID, userID)}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ProjectMember{}, ErrNotFound
		}
		return models.ProjectMember{}, err
	}
	return m, nil
}

// SetRole changes an existing membership's role.
func (s *Store) SetRole(ctx context.Context, projectID, userID primitive.ObjectID, role string) error {
	res, err := s.c.UpdateByID(ctx, models.MemberID(projectID, userID), bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one membership. It reports whether a row was removed.
func (s *Store) Delete(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": models.MemberID(projectID, userID)})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// ListByProject returns a project's members in join order.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.ProjectMember, error) {
	return s.find(ctx, bson.M{"project_id": projectID}, options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
}

// ListByUser returns every membership held by userID.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ProjectMember, error) {
	return s.find(ctx, bson.M{"user_id": userID})
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.ProjectMember, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ProjectMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByProject removes every membership of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByUser removes every membership held by a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
