package userstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	ErrNotFound       = errors.New("user not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.Users)}
}

// Create inserts a new user after normalizing fields. The id is assigned
// here unless the caller already chose one (identities share the user id).
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.Email = normalize.Email(u.Email)
	u.DisplayName = normalize.Name(u.DisplayName)
	u.DisplayNameCI = text.Fold(u.DisplayName)
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a user by normalized email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": normalize.Email(email)})
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// ListByIDs loads the users with the given ids in one query.
func (s *Store) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

// ListParams filters and pages the admin user list.
type ListParams struct {
	Search string // prefix match on folded display name or email
	Limit  int64
	Offset int64
}

// List returns users ordered by display name, and the total match count.
func (s *Store) List(ctx context.Context, p ListParams) ([]models.User, int64, error) {
	filter := bson.M{}
	if q := normalize.QueryParam(p.Search); q != "" {
		folded := text.Fold(q)
		filter["$or"] = bson.A{
			bson.M{"display_name_ci": bson.M{"$regex": "^" + regexp.QuoteMeta(folded)}},
			bson.M{"email": bson.M{"$regex": "^" + regexp.QuoteMeta(normalize.Email(q))}},
		}
	}
	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "display_name_ci", Value: 1}, {Key: "_id", Value: 1}})
	if p.Limit > 0 {
		opts.SetLimit(p.Limit)
	}
	if p.Offset > 0 {
		opts.SetSkip(p.Offset)
	}
	users, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *Store) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.User, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateDisplayName changes the user's display name.
func (s *Store) UpdateDisplayName(ctx context.Context, id primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	return s.set(ctx, id, bson.M{"display_name": name, "display_name_ci": text.Fold(name)})
}

// SetBanned sets or clears the banned flag.
func (s *Store) SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error {
	return s.set(ctx, id, bson.M{"is_banned": banned})
}

// SetAdmin sets or clears the system-admin flag.
func (s *Store) SetAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error {
	return s.set(ctx, id, bson.M{"is_admin": admin})
}

func (s *Store) set(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user profile. Deleting a missing user is not an error.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
