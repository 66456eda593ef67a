package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each request.
type Fetcher struct {
	users *Store
}

// NewFetcher creates a UserFetcher backed by s.
func NewFetcher(s *Store) *Fetcher {
	return &Fetcher{users: s}
}

// FetchSessionUser returns nil when the user no longer exists or is banned,
// which signs the session out. Database errors are returned so the session
// layer can fall back to cached values.
func (f *Fetcher) FetchSessionUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := f.users.GetByID(ctx, oid)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.IsBanned {
		return nil, nil
	}
	return &auth.SessionUser{
		ID:      u.ID.Hex(),
		Name:    u.DisplayName,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}, nil
}
