// Package projects is the project and membership adapter: access listing,
// role lookup, project CRUD, member management and ownership transfer.
package projects

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	memberstore "github.com/dalemusser/campaignhub/internal/app/store/members"
	projectstore "github.com/dalemusser/campaignhub/internal/app/store/projects"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	MaxNameLength        = 120
	MaxDescriptionLength = 2000
)

// ProjectStore is satisfied by *projectstore.Store.
type ProjectStore interface {
	Create(ctx context.Context, p models.Project) (models.Project, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
	Update(ctx context.Context, id primitive.ObjectID, upd projectstore.Update) (models.Project, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Project, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error)
	ListAll(ctx context.Context, limit, offset int64) ([]models.Project, int64, error)
	SetOwner(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// MemberStore is satisfied by *memberstore.Store.
type MemberStore interface {
	Get(ctx context.Context, projectID, userID primitive.ObjectID) (models.ProjectMember, error)
	Upsert(ctx context.Context, m models.ProjectMember) (models.ProjectMember, error)
	SetRole(ctx context.Context, projectID, userID primitive.ObjectID, role string) error
	Delete(ctx context.Context, projectID, userID primitive.ObjectID) (bool, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.ProjectMember, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.ProjectMember, error)
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// UserLookup loads member profiles in one query.
type UserLookup interface {
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}

// Purger removes every document a project owns in one collection.
type Purger interface {
	DeleteByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error)
}

// Collection names a Purger for logging.
type Collection struct {
	Name   string
	Purger Purger
}

// Runner groups writes into one unit. *txn.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// Service implements project and membership operations.
type Service struct {
	projects ProjectStore
	members  MemberStore
	users    UserLookup
	owned    []Collection
	runner   Runner
	log      *zap.Logger
	now      func() time.Time
}

// New builds a Service. owned lists the project-scoped collections swept on
// delete; members are always swept last. runner may be nil.
func New(projects ProjectStore, members MemberStore, users UserLookup, owned []Collection, runner Runner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		projects: projects,
		members:  members,
		users:    users,
		owned:    owned,
		runner:   runner,
		log:      logger,
		now:      time.Now,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if s.runner == nil {
		return fn(ctx)
	}
	return s.runner.Run(ctx, name, fn)
}

func (s *Service) get(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if errors.Is(err, projectstore.ErrNotFound) {
		return models.Project{}, apperr.ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("load project: %w", err)
	}
	return p, nil
}

// ProjectRole loads the project and userID's role in it. The owner_id field
// wins over membership rows. Role is "" for non-members.
func (s *Service) ProjectRole(ctx context.Context, projectID, userID primitive.ObjectID) (models.Project, string, error) {
	p, err := s.get(ctx, projectID)
	if err != nil {
		return models.Project{}, "", err
	}
	if p.OwnerID == userID {
		return p, models.RoleOwner, nil
	}
	m, err := s.members.Get(ctx, projectID, userID)
	if errors.Is(err, memberstore.ErrNotFound) {
		return p, "", nil
	}
	if err != nil {
		return models.Project{}, "", fmt.Errorf("load membership: %w", err)
	}
	if m.Role == models.RoleOwner {
		// A stale owner row left behind by an interrupted transfer.
		return p, models.RoleEditor, nil
	}
	return p, m.Role, nil
}

// ListAccessible returns the union of projects userID owns and projects it
// is a non-owner member of, each annotated with the role, newest first.
func (s *Service) ListAccessible(ctx context.Context, userID primitive.ObjectID) ([]models.ProjectWithRole, error) {
	owned, err := s.projects.ListByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list owned projects: %w", err)
	}
	memberships, err := s.members.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}

	seen := make(map[primitive.ObjectID]bool, len(owned))
	out := make([]models.ProjectWithRole, 0, len(owned)+len(memberships))
	for _, p := range owned {
		seen[p.ID] = true
		out = append(out, models.ProjectWithRole{Project: p, Role: models.RoleOwner})
	}

	roles := map[primitive.ObjectID]string{}
	var ids []primitive.ObjectID
	for _, m := range memberships {
		if m.Role == models.RoleOwner || seen[m.ProjectID] {
			continue
		}
		if _, dup := roles[m.ProjectID]; dup {
			continue
		}
		roles[m.ProjectID] = m.Role
		ids = append(ids, m.ProjectID)
	}
	if len(ids) > 0 {
		joined, err := s.projects.ListByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list member projects: %w", err)
		}
		for _, p := range joined {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, models.ProjectWithRole{Project: p, Role: roles[p.ID]})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	return out, nil
}

// cleanName sanitizes and validates a project name.
func cleanName(raw string) (string, error) {
	name := normalize.Name(htmlsanitize.Text(raw))
	if name == "" {
		return "", apperr.Validation("name_required", "Project name is required.")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperr.Validation("name_too_long", fmt.Sprintf("Project name must be at most %d characters.", MaxNameLength))
	}
	return name, nil
}

func cleanDescription(raw string) (string, error) {
	desc := htmlsanitize.Text(raw)
	if utf8.RuneCountInString(desc) > MaxDescriptionLength {
		return "", apperr.Validation("description_too_long", fmt.Sprintf("Description must be at most %d characters.", MaxDescriptionLength))
	}
	return desc, nil
}

// CreateInput describes a new project.
type CreateInput struct {
	Name        string
	Description string
	OwnerID     primitive.ObjectID
}

// Create persists the project and its owner membership. If the membership
// write fails the error is returned; the project is still reachable through
// owner_id and Members repairs the missing row.
func (s *Service) Create(ctx context.Context, in CreateInput) (models.Project, error) {
	name, err := cleanName(in.Name)
	if err != nil {
		return models.Project{}, err
	}
	desc, err := cleanDescription(in.Description)
	if err != nil {
		return models.Project{}, err
	}

	now := s.now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Description: desc,
		OwnerID:     in.OwnerID,
		CreatedAt:   now,
	}
	var created models.Project
	err = s.run(ctx, "project.create", func(ctx context.Context) error {
		if existing, err := s.projects.GetByID(ctx, p.ID); err == nil {
			created = existing
		} else {
			if created, err = s.projects.Create(ctx, p); err != nil {
				return fmt.Errorf("insert project: %w", err)
			}
		}
		if _, err := s.members.Upsert(ctx, models.ProjectMember{
			ProjectID: p.ID,
			UserID:    in.OwnerID,
			Role:      models.RoleOwner,
			JoinedAt:  now,
		}); err != nil {
			return fmt.Errorf("add owner membership: %w", err)
		}
		return nil
	})
	return created, err
}

// UpdateInput holds optional project changes.
type UpdateInput struct {
	Name        *string
	Description *string
}

// Update merges in into the project.
func (s *Service) Update(ctx context.Context, projectID primitive.ObjectID, in UpdateInput) (models.Project, error) {
	var upd projectstore.Update
	if in.Name != nil {
		name, err := cleanName(*in.Name)
		if err != nil {
			return models.Project{}, err
		}
		upd.Name = &name
	}
	if in.Description != nil {
		desc, err := cleanDescription(*in.Description)
		if err != nil {
			return models.Project{}, err
		}
		upd.Description = &desc
	}
	p, err := s.projects.Update(ctx, projectID, upd)
	if errors.Is(err, projectstore.ErrNotFound) {
		return models.Project{}, apperr.ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes the project document and then sweeps the collections it
// owns. The sweep is not atomic: a failure is returned after every
// collection has been attempted and re-running Delete finishes the job.
func (s *Service) Delete(ctx context.Context, projectID primitive.ObjectID) error {
	if _, err := s.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return s.sweep(ctx, projectID)
}

// Purge sweeps the owned collections first and deletes the project
// document last. Account deletion uses this order.
func (s *Service) Purge(ctx context.Context, projectID primitive.ObjectID) error {
	if err := s.sweep(ctx, projectID); err != nil {
		return err
	}
	if _, err := s.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (s *Service) sweep(ctx context.Context, projectID primitive.ObjectID) error {
	var errs []error
	purge := func(name string, p Purger) {
		n, err := p.DeleteByProject(ctx, projectID)
		if err != nil {
			s.log.Warn("project sweep failed",
				zap.String("project_id", projectID.Hex()),
				zap.String("collection", name),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		if n > 0 {
			s.log.Debug("project sweep",
				zap.String("project_id", projectID.Hex()),
				zap.String("collection", name),
				zap.Int64("deleted", n))
		}
	}
	for _, c := range s.owned {
		purge(c.Name, c.Purger)
	}
	purge("project_members", s.members)
	return errors.Join(errs...)
}

// ListAll pages through every project for system admins.
func (s *Service) ListAll(ctx context.Context, limit, offset int64) ([]models.Project, int64, error) {
	return s.projects.ListAll(ctx, limit, offset)
}

// ListOwned returns the projects userID owns.
func (s *Service) ListOwned(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error) {
	return s.projects.ListByOwner(ctx, userID)
}

// Members lists a project's members with their profiles, owner first. A
// missing owner row is recreated from owner_id.
func (s *Service) Members(ctx context.Context, projectID primitive.ObjectID) ([]models.MemberView, error) {
	p, err := s.get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	rows, err := s.members.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	hasOwner := false
	for _, m := range rows {
		if m.UserID == p.OwnerID {
			hasOwner = true
			break
		}
	}
	if !hasOwner && !p.OwnerID.IsZero() {
		repaired, err := s.members.Upsert(ctx, models.ProjectMember{
			ProjectID: p.ID,
			UserID:    p.OwnerID,
			Role:      models.RoleOwner,
			JoinedAt:  p.CreatedAt,
		})
		if err != nil {
			s.log.Warn("owner membership repair failed", zap.String("project_id", p.ID.Hex()), zap.Error(err))
			repaired = models.ProjectMember{ProjectID: p.ID, UserID: p.OwnerID, Role: models.RoleOwner, JoinedAt: p.CreatedAt}
		} else {
			s.log.Info("owner membership repaired", zap.String("project_id", p.ID.Hex()))
		}
		rows = append(rows, repaired)
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, m := range rows {
		ids = append(ids, m.UserID)
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load member profiles: %w", err)
	}
	byID := make(map[primitive.ObjectID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]models.MemberView, 0, len(rows))
	for _, m := range rows {
		role := m.Role
		if m.UserID == p.OwnerID {
			role = models.RoleOwner
		} else if role == models.RoleOwner {
			role = models.RoleEditor
		}
		u := byID[m.UserID]
		out = append(out, models.MemberView{
			UserID:      m.UserID,
			Email:       u.Email,
			DisplayName: u.DisplayName,
			Role:        role,
			JoinedAt:    m.JoinedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, oj := out[i].Role == models.RoleOwner, out[j].Role == models.RoleOwner
		if oi != oj {
			return oi
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out, nil
}

// target loads a non-owner membership for a role change or removal.
func (s *Service) target(ctx context.Context, projectID, userID primitive.ObjectID) (models.Project, models.ProjectMember, error) {
	p, err := s.get(ctx, projectID)
	if err != nil {
		return models.Project{}, models.ProjectMember{}, err
	}
	if p.OwnerID == userID {
		return models.Project{}, models.ProjectMember{}, apperr.ErrCannotModifyOwner
	}
	m, err := s.members.Get(ctx, projectID, userID)
	if errors.Is(err, memberstore.ErrNotFound) {
		return models.Project{}, models.ProjectMember{}, apperr.ErrMemberNotFound
	}
	if err != nil {
		return models.Project{}, models.ProjectMember{}, fmt.Errorf("load membership: %w", err)
	}
	if m.Role == models.RoleOwner {
		return models.Project{}, models.ProjectMember{}, apperr.ErrCannotModifyOwner
	}
	return p, m, nil
}

// ChangeRole sets a member's role to editor or viewer. It returns the
// previous role. The owner cannot be changed here.
func (s *Service) ChangeRole(ctx context.Context, projectID, userID primitive.ObjectID, role string) (string, error) {
	role = normalize.Role(role)
	if role != models.RoleEditor && role != models.RoleViewer {
		return "", apperr.Validation("invalid_role", "Role must be editor or viewer.")
	}
	_, m, err := s.target(ctx, projectID, userID)
	if err != nil {
		return "", err
	}
	if m.Role == role {
		return m.Role, nil
	}
	if err := s.members.SetRole(ctx, projectID, userID, role); err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return "", apperr.ErrMemberNotFound
		}
		return "", fmt.Errorf("set role: %w", err)
	}
	return m.Role, nil
}

// RemoveMember deletes a non-owner membership.
func (s *Service) RemoveMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	if _, _, err := s.target(ctx, projectID, userID); err != nil {
		return err
	}
	if _, err := s.members.Delete(ctx, projectID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// TransferOwnership makes newOwnerID, an existing member, the owner and
// demotes the current owner to editor. The three writes run in one unit;
// each is idempotent so a retry after a partial failure converges.
func (s *Service) TransferOwnership(ctx context.Context, projectID, newOwnerID primitive.ObjectID) error {
	p, err := s.get(ctx, projectID)
	if err != nil {
		return err
	}
	if p.OwnerID == newOwnerID {
		return nil
	}
	if _, err := s.members.Get(ctx, projectID, newOwnerID); err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return apperr.ErrMemberNotFound
		}
		return fmt.Errorf("load membership: %w", err)
	}

	now := s.now().UTC()
	return s.run(ctx, "project.transfer", func(ctx context.Context) error {
		if _, err := s.members.Upsert(ctx, models.ProjectMember{ProjectID: projectID, UserID: newOwnerID, Role: models.RoleOwner, JoinedAt: now}); err != nil {
			return fmt.Errorf("promote new owner: %w", err)
		}
		if !p.OwnerID.IsZero() {
			if _, err := s.members.Upsert(ctx, models.ProjectMember{ProjectID: projectID, UserID: p.OwnerID, Role: models.RoleEditor, JoinedAt: now}); err != nil {
				return fmt.Errorf("demote previous owner: %w", err)
			}
		}
		if err := s.projects.SetOwner(ctx, projectID, newOwnerID); err != nil {
			return fmt.Errorf("set project owner: %w", err)
		}
		return nil
	})
}
