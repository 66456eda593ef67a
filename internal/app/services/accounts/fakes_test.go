package accounts

import (
	"context"
	"sync"
	"time"

	identitystore "github.com/dalemusser/campaignhub/internal/app/store/identities"
	"github.com/dalemusser/campaignhub/internal/app/store/resettokens"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// steps records cascade writes in order.
type steps struct {
	mu  sync.Mutex
	log []string
}

func (s *steps) add(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = append(s.log, step)
}

type fakeUsers struct {
	rows  map[primitive.ObjectID]models.User
	steps *steps
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	for _, r := range f.rows {
		if r.Email == u.Email {
			return models.User{}, userstore.ErrDuplicateEmail
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.rows[u.ID] = u
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := f.rows[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (models.User, error) {
	for _, u := range f.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, userstore.ErrNotFound
}

func (f *fakeUsers) List(context.Context, userstore.ListParams) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range f.rows {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) mutate(id primitive.ObjectID, fn func(*models.User)) error {
	u, ok := f.rows[id]
	if !ok {
		return userstore.ErrNotFound
	}
	fn(&u)
	f.rows[id] = u
	return nil
}

func (f *fakeUsers) UpdateDisplayName(_ context.Context, id primitive.ObjectID, name string) error {
	return f.mutate(id, func(u *models.User) { u.DisplayName = name })
}

func (f *fakeUsers) SetBanned(_ context.Context, id primitive.ObjectID, banned bool) error {
	return f.mutate(id, func(u *models.User) { u.IsBanned = banned })
}

func (f *fakeUsers) SetAdmin(_ context.Context, id primitive.ObjectID, admin bool) error {
	return f.mutate(id, func(u *models.User) { u.IsAdmin = admin })
}

func (f *fakeUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	f.steps.add("profile")
	delete(f.rows, id)
	return nil
}

type fakeIdentities struct {
	rows      map[primitive.ObjectID]models.Identity
	steps     *steps
	createErr error
}

func (f *fakeIdentities) Create(_ context.Context, id primitive.ObjectID, email, hash string) (models.Identity, error) {
	if f.createErr != nil {
		return models.Identity{}, f.createErr
	}
	for _, r := range f.rows {
		if r.Email == email {
			return models.Identity{}, identitystore.ErrDuplicateEmail
		}
	}
	ident := models.Identity{ID: id, Email: email, PasswordHash: hash}
	f.rows[id] = ident
	return ident, nil
}

func (f *fakeIdentities) GetByEmail(_ context.Context, email string) (models.Identity, error) {
	for _, r := range f.rows {
		if r.Email == email {
			return r, nil
		}
	}
	return models.Identity{}, identitystore.ErrNotFound
}

func (f *fakeIdentities) SetPassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r, ok := f.rows[id]
	if !ok {
		return identitystore.ErrNotFound
	}
	r.PasswordHash = hash
	f.rows[id] = r
	return nil
}

func (f *fakeIdentities) Delete(_ context.Context, id primitive.ObjectID) error {
	f.steps.add("identity")
	delete(f.rows, id)
	return nil
}

type fakeResets struct {
	tokens map[string]resettokens.Reset
	steps  *steps
	err    error
}

func (f *fakeResets) Create(_ context.Context, userID primitive.ObjectID, email string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	token := "reset-" + userID.Hex()
	f.tokens[token] = resettokens.Reset{UserID: userID, Email: email}
	return token, nil
}

func (f *fakeResets) Consume(_ context.Context, token string) (resettokens.Reset, error) {
	r, ok := f.tokens[token]
	if !ok {
		return resettokens.Reset{}, resettokens.ErrNotFound
	}
	delete(f.tokens, token)
	return r, nil
}

func (f *fakeResets) DeleteByUser(context.Context, primitive.ObjectID) error {
	f.steps.add("resets")
	return nil
}

func (f *fakeResets) Expiry() time.Duration { return time.Hour }

type fakeProjects struct {
	owned  map[primitive.ObjectID][]models.Project
	steps  *steps
	failOn primitive.ObjectID
}

func (f *fakeProjects) ListOwned(_ context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	return append([]models.Project(nil), f.owned[userID]...), nil
}

func (f *fakeProjects) Purge(_ context.Context, id primitive.ObjectID) error {
	if id == f.failOn {
		return errPurge
	}
	f.steps.add("project:" + id.Hex())
	for uid, ps := range f.owned {
		var kept []models.Project
		for _, p := range ps {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		f.owned[uid] = kept
	}
	return nil
}

type fakeMemberships struct{ steps *steps }

func (f *fakeMemberships) DeleteByUser(context.Context, primitive.ObjectID) (int64, error) {
	f.steps.add("memberships")
	return 0, nil
}
