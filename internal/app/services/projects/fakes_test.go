package projects

import (
	"context"
	"errors"
	"sort"
	"sync"

	memberstore "github.com/dalemusser/campaignhub/internal/app/store/members"
	projectstore "github.com/dalemusser/campaignhub/internal/app/store/projects"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeProjects struct {
	mu   sync.Mutex
	rows map[primitive.ObjectID]models.Project
}

func newFakeProjects() *fakeProjects {
	return &fakeProjects{rows: map[primitive.ObjectID]models.Project{}}
}

func (f *fakeProjects) Create(_ context.Context, p models.Project) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.UpdatedAt = p.CreatedAt
	f.rows[p.ID] = p
	return p, nil
}

func (f *fakeProjects) GetByID(_ context.Context, id primitive.ObjectID) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Project{}, projectstore.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) Update(_ context.Context, id primitive.ObjectID, upd projectstore.Update) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return models.Project{}, projectstore.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	f.rows[id] = p
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, id primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return 0, nil
	}
	delete(f.rows, id)
	return 1, nil
}

func (f *fakeProjects) filter(keep func(models.Project) bool) []models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Project
	for _, p := range f.rows {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeProjects) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Project, error) {
	return f.filter(func(p models.Project) bool { return p.OwnerID == owner }), nil
}

func (f *fakeProjects) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Project, error) {
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return f.filter(func(p models.Project) bool { return want[p.ID] }), nil
}

func (f *fakeProjects) ListAll(_ context.Context, limit, offset int64) ([]models.Project, int64, error) {
	all := f.filter(func(models.Project) bool { return true })
	return all, int64(len(all)), nil
}

func (f *fakeProjects) SetOwner(_ context.Context, id, owner primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.rows[id]
	if !ok {
		return projectstore.ErrNotFound
	}
	p.OwnerID = owner
	f.rows[id] = p
	return nil
}

type fakeMembers struct {
	mu        sync.Mutex
	rows      map[string]models.ProjectMember
	upsertErr error
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
	if f.upsertErr != nil {
		return models.ProjectMember{}, f.upsertErr
	}
	m.ID = models.MemberID(m.ProjectID, m.UserID)
	if prev, ok := f.rows[m.ID]; ok {
		m.JoinedAt = prev.JoinedAt
	}
	f.rows[m.ID] = m
	return m, nil
}

func (f *fakeMembers) SetRole(_ context.Context, pid, uid primitive.ObjectID, role string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := models.MemberID(pid, uid)
	m, ok := f.rows[id]
	if !ok {
		return memberstore.ErrNotFound
	}
	m.Role = role
	f.rows[id] = m
	return nil
}

func (f *fakeMembers) Delete(_ context.Context, pid, uid primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := models.MemberID(pid, uid)
	_, ok := f.rows[id]
	delete(f.rows, id)
	return ok, nil
}

func (f *fakeMembers) list(keep func(models.ProjectMember) bool) []models.ProjectMember {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ProjectMember
	for _, m := range f.rows {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

func (f *fakeMembers) ListByProject(_ context.Context, pid primitive.ObjectID) ([]models.ProjectMember, error) {
	return f.list(func(m models.ProjectMember) bool { return m.ProjectID == pid }), nil
}

func (f *fakeMembers) ListByUser(_ context.Context, uid primitive.ObjectID) ([]models.ProjectMember, error) {
	return f.list(func(m models.ProjectMember) bool { return m.UserID == uid }), nil
}

func (f *fakeMembers) DeleteByProject(_ context.Context, pid primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, m := range f.rows {
		if m.ProjectID == pid {
			delete(f.rows, id)
			n++
		}
	}
	return n, nil
}

type fakeUsers map[primitive.ObjectID]models.User

func (f fakeUsers) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type countingPurger struct {
	calls []primitive.ObjectID
	err   error
}

func (p *countingPurger) DeleteByProject(_ context.Context, pid primitive.ObjectID) (int64, error) {
	p.calls = append(p.calls, pid)
	if p.err != nil {
		return 0, p.err
	}
	return 1, nil
}

var errBoom = errors.New("boom")
