package invitations

import (
	"context"
	"errors"
	"sync"
	"time"

	invitationstore "github.com/dalemusser/campaignhub/internal/app/store/invitations"
	memberstore "github.com/dalemusser/campaignhub/internal/app/store/members"
	projectstore "github.com/dalemusser/campaignhub/internal/app/store/projects"
	"github.com/dalemusser/campaignhub/internal/app/system/mailer"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeStore struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Invitation
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[primitive.ObjectID]models.Invitation{}}
}

func (f *fakeStore) Insert(_ context.Context, inv models.Invitation) (models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.Token == inv.Token {
			return models.Invitation{}, invitationstore.ErrDuplicateToken
		}
		if r.Status == models.InvitationPending && r.ProjectID == inv.ProjectID && r.Email == inv.Email {
			return models.Invitation{}, invitationstore.ErrDuplicatePending
		}
	}
	if inv.ID.IsZero() {
		inv.ID = primitive.NewObjectID()
	}
	f.rows[inv.ID] = inv
	return inv, nil
}

func (f *fakeStore) GetByID(_ context.Context, id primitive.ObjectID) (models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.rows[id]
	if !ok {
		return models.Invitation{}, invitationstore.ErrNotFound
	}
	return inv, nil
}

func (f *fakeStore) GetByToken(_ context.Context, token string) (models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if token != "" && r.Token == token {
			return r, nil
		}
	}
	return models.Invitation{}, invitationstore.ErrNotFound
}

func (f *fakeStore) FindPending(_ context.Context, pid primitive.ObjectID, email string) (models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rows {
		if r.ProjectID == pid && r.Email == email && r.Status == models.InvitationPending {
			return r, nil
		}
	}
	return models.Invitation{}, invitationstore.ErrNotFound
}

func (f *fakeStore) ListByProject(_ context.Context, pid primitive.ObjectID) ([]models.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Invitation
	for _, r := range f.rows {
		if r.ProjectID == pid {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) leavePending(id primitive.ObjectID, mut func(*models.Invitation)) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok || r.Status != models.InvitationPending {
		return false, nil
	}
	mut(&r)
	f.rows[id] = r
	return true, nil
}

func (f *fakeStore) MarkExpired(_ context.Context, id primitive.ObjectID) (bool, error) {
	return f.leavePending(id, func(r *models.Invitation) { r.Status = models.InvitationExpired })
}

func (f *fakeStore) MarkAccepted(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return f.leavePending(id, func(r *models.Invitation) {
		r.Status = models.InvitationAccepted
		r.AcceptedAt = &at
	})
}

func (f *fakeStore) Cancel(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return f.leavePending(id, func(r *models.Invitation) {
		r.Status = models.InvitationCancelled
		r.CancelledAt = &at
	})
}

func (f *fakeStore) ExtendExpiry(_ context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	return f.leavePending(id, func(r *models.Invitation) { r.ExpiresAt = at })
}

func (f *fakeStore) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, r := range f.rows {
		if r.Status == models.InvitationPending && r.ExpiresAt.Before(now) {
			r.Status = models.InvitationExpired
			f.rows[id] = r
			n++
		}
	}
	return n, nil
}

type fakeMembers struct {
	mu   sync.Mutex
	rows map[string]models.ProjectMember
	err  error
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{rows: map[string]models.ProjectMember{}}
}

func (f *fakeMembers) Get(_ context.Context, pid, uid primitive.ObjectID) (models.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.rows[models.MemberID(pid, uid)]
	if !ok {
		return models.ProjectMember{}, memberstore.ErrNotFound
	}
	return m, nil
}

func (f *fakeMembers) Upsert(_ context.Context, m models.ProjectMember) (models.ProjectMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.ProjectMember{}, f.err
	}
	m.ID = models.MemberID(m.ProjectID, m.UserID)
	if prev, ok := f.rows[m.ID]; ok {
		m.JoinedAt = prev.JoinedAt
	}
	f.rows[m.ID] = m
	return m, nil
}

type fakeProjects map[primitive.ObjectID]models.Project

func (f fakeProjects) GetByID(_ context.Context, id primitive.ObjectID) (models.Project, error) {
	p, ok := f[id]
	if !ok {
		return models.Project{}, projectstore.ErrNotFound
	}
	return p, nil
}

type failingMailer struct{ calls int }

func (m *failingMailer) Send(context.Context, mailer.Email) error {
	m.calls++
	return errors.New("smtp: connection refused")
}
