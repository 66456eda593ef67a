package invitationstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("invitation not found")
	// ErrDuplicatePending is returned when a pending invitation already
	// exists for the same (project, email).
	ErrDuplicatePending = errors.New("a pending invitation already exists")
	// ErrDuplicateToken is returned on a token collision.
	ErrDuplicateToken = errors.New("invitation token already in use")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(indexes.Invitations)}
}

// Insert persists a new invitation. The partial unique index on
// (project_id, email) for pending rows rejects a second pending one.
func (s *Store) Insert(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	if inv.Status == "" {
		inv.Status = models.InvitationPending
	}
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "uniq_invitations_token") {
				return models.Invitation{}, ErrDuplicateToken
			}
			return models.Invitation{}, ErrDuplicatePending
		}
		return models.Invitation{}, err
	}
	return inv, nil
}

func (s *Store) findOne(ctx context.Context, filter bson.M) (models.Invitation, error) {
	var inv models.Invitation
	if err := s.c.FindOne(ctx, filter).Decode(&inv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Invitation{}, ErrNotFound
		}
		return models.Invitation{}, err
	}
	return inv, nil
}

// GetByID loads an invitation by id.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Invitation, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByToken loads an invitation by exact token match.
func (s *Store) GetByToken(ctx context.Context, token string) (models.Invitation, error) {
	if token == "" {
		return models.Invitation{}, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"token": token})
}

// FindPending returns the pending invitation for (projectID, email), expired
// or not.
func (s *Store) FindPending(ctx context.Context, projectID primitive.ObjectID, email string) (models.Invitation, error) {
	return s.findOne(ctx, bson.M{"project_id": projectID, "email": email, "status": models.InvitationPending})
}

// ListByProject returns a project's invitations, newest first.
func (s *Store) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Invitation, error) {
	cur, err := s.c.Find(ctx, bson.M{"project_id": projectID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Invitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// leavePending applies set to id only while the invitation is still pending.
// It reports whether the write matched.
func (s *Store) leavePending(ctx context.Context, id primitive.ObjectID, set bson.M) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvitationPending},
		bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// MarkExpired moves a pending invitation to expired.
func (s *Store) MarkExpired(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.leavePending(ctx, id, bson.M{"status": models.InvitationExpired})
}

// MarkAccepted moves a pending invitation to accepted.
func (s *Store) MarkAccepted(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return s.leavePending(ctx, id, bson.M{"status": models.InvitationAccepted, "accepted_at": at})
}

// Cancel moves a pending invitation to cancelled.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return s.leavePending(ctx, id, bson.M{"status": models.InvitationCancelled, "cancelled_at": at})
}

// ExtendExpiry sets a new expiry on a pending invitation.
func (s *Store) ExtendExpiry(ctx context.Context, id primitive.ObjectID, expiresAt time.Time) (bool, error) {
	return s.leavePending(ctx, id, bson.M{"expires_at": expiresAt})
}

// ExpireOverdue persists expired for every pending invitation whose expiry
// is before now. It returns the number of invitations changed.
func (s *Store) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.InvitationPending, "expires_at": bson.M{"$lt": now}},
		bson.M{"$set": bson.M{"status": models.InvitationExpired}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteByProject removes every invitation of a project.
func (s *Store) DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
