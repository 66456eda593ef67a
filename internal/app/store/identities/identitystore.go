package identitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrDuplicateEmail = errors.New("an account with this email already exists")
	ErrNotFound       = errors.New("identity not found")
)

// Store holds sign-in credentials.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.Identities)}
}

// Create inserts an identity. id must be the user id.
func (s *Store) Create(ctx context.Context, id primitive.ObjectID, email, passwordHash string) (models.Identity, error) {
	now := time.Now().UTC()
	ident := models.Identity{
		ID:           id,
		Email:        normalize.Email(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.c.InsertOne(ctx, ident); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Identity{}, ErrDuplicateEmail
		}
		return models.Identity{}, err
	}
	return ident, nil
}

// GetByEmail loads the identity for a sign-in attempt.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Identity, error) {
	var ident models.Identity
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&ident); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Identity{}, ErrNotFound
		}
		return models.Identity{}, err
	}
	return ident, nil
}

// SetPassword replaces the password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the identity. Deleting a missing identity is not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
