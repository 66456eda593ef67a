// internal/app/store/resettokens/store.go
package resettokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/indexes"
	"github.com/dalemusser/campaignhub/internal/app/system/tokens"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	// DefaultExpiry is how long a reset link is valid.
	DefaultExpiry = time.Hour
	// MaxRequests is the number of reset emails allowed per user within RequestWindow.
	MaxRequests = 3
	// RequestWindow is the window for MaxRequests.
	RequestWindow = 15 * time.Minute
)

var (
	// ErrNotFound is returned when a reset token is unknown, used, or expired.
	ErrNotFound = errors.New("reset link not found or expired")
	// ErrTooManyRequests is returned when a user asks for too many reset emails.
	ErrTooManyRequests = errors.New("too many password reset requests")
)

// Reset is a pending password reset. Only the SHA-256 of the token is stored.
type Reset struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id"`
	Email        string             `bson:"email"`
	Token        string             `bson:"token"`      // sha256 hex of the emailed token
	ExpiresAt    time.Time          `bson:"expires_at"` // TTL index field
	CreatedAt    time.Time          `bson:"created_at"`
	RequestCount int                `bson:"request_count"`
	WindowStart  time.Time          `bson:"window_start"`
}

// Store manages password reset records.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
	now    func() time.Time
}

// New creates a Store. If expiry is 0 or negative, DefaultExpiry is used.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection(indexes.PasswordResets), expiry: expiry, now: time.Now}
}

// Expiry returns the validity window of reset links.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Create replaces any pending reset for userID and returns the plain token
// to embed in the emailed link.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, email string) (string, error) {
	now := s.now().UTC()

	count, windowStart := 1, now
	var existing Reset
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&existing); err == nil {
		if now.Before(existing.WindowStart.Add(RequestWindow)) {
			if existing.RequestCount >= MaxRequests {
				return "", ErrTooManyRequests
			}
			count, windowStart = existing.RequestCount+1, existing.WindowStart
		}
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	token, err := tokens.New()
	if err != nil {
		return "", err
	}

	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return "", err
	}
	r := Reset{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		Email:        email,
		Token:        hash(token),
		ExpiresAt:    now.Add(s.expiry),
		CreatedAt:    now,
		RequestCount: count,
		WindowStart:  windowStart,
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return "", fmt.Errorf("insert password reset: %w", err)
	}
	return token, nil
}

// Consume validates token and deletes the record (single use).
func (s *Store) Consume(ctx context.Context, token string) (Reset, error) {
	var r Reset
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"token":      hash(token),
		"expires_at": bson.M{"$gt": s.now().UTC()},
	}).Decode(&r)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Reset{}, ErrNotFound
		}
		return Reset{}, err
	}
	return r, nil
}

// DeleteByUser deletes all reset records for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	return err
}

func hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
