// Package invitations manages the magic-link invitation lifecycle:
// pending -> accepted | expired | cancelled. No transition leaves a
// terminal state.
package invitations

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	invitationstore "github.com/dalemusser/campaignhub/internal/app/store/invitations"
	memberstore "github.com/dalemusser/campaignhub/internal/app/store/members"
	projectstore "github.com/dalemusser/campaignhub/internal/app/store/projects"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/inputval"
	"github.com/dalemusser/campaignhub/internal/app/system/mailer"
	"github.com/dalemusser/campaignhub/internal/app/system/metrics"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/app/system/tokens"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long an invitation stays acceptable.
	DefaultTTL = 7 * 24 * time.Hour
	// StaleCancelled hides cancelled invitations older than this from listings.
	StaleCancelled = 7 * 24 * time.Hour
)

// Store is the persistence the service needs. *invitationstore.Store
// satisfies it.
type Store interface {
	Insert(ctx context.Context, inv models.Invitation) (models.Invitation, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Invitation, error)
	GetByToken(ctx context.Context, token string) (models.Invitation, error)
	FindPending(ctx context.Context, projectID primitive.ObjectID, email string) (models.Invitation, error)
	ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Invitation, error)
	MarkExpired(ctx context.Context, id primitive.ObjectID) (bool, error)
	MarkAccepted(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	Cancel(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	ExtendExpiry(ctx context.Context, id primitive.ObjectID, expiresAt time.Time) (bool, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Members is the membership persistence used on accept. *memberstore.Store
// satisfies it.
type Members interface {
	Get(ctx context.Context, projectID, userID primitive.ObjectID) (models.ProjectMember, error)
	Upsert(ctx context.Context, m models.ProjectMember) (models.ProjectMember, error)
}

// Projects resolves project names for emails and the landing page.
type Projects interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error)
}

// Runner groups writes into one unit. *txn.Runner satisfies it.
type Runner interface {
	Run(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// Config holds the service settings.
type Config struct {
	BaseURL  string
	SiteName string
	TTL      time.Duration
}

// Service implements the invitation lifecycle.
type Service struct {
	store    Store
	members  Members
	projects Projects
	mail     mailer.Mailer
	runner   Runner
	metrics  *metrics.Metrics
	log      *zap.Logger
	cfg      Config

	now      func() time.Time
	newToken func() (string, error)
}

// New builds a Service. runner and m may be nil.
func New(store Store, members Members, projects Projects, mail mailer.Mailer, runner Runner, m *metrics.Metrics, logger *zap.Logger, cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "CampaignHub"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		members:  members,
		projects: projects,
		mail:     mail,
		runner:   runner,
		metrics:  m,
		log:      logger,
		cfg:      cfg,
		now:      time.Now,
		newToken: tokens.New,
	}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

func (s *Service) clock() time.Time { return s.now().UTC() }

func (s *Service) run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if s.runner == nil {
		return fn(ctx)
	}
	return s.runner.Run(ctx, name, fn)
}

// Link returns the acceptance URL for token.
func (s *Service) Link(token string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/invite?token=" + url.QueryEscape(token)
}

// CreateInput describes a new invitation.
type CreateInput struct {
	ProjectID   primitive.ObjectID
	Email       string
	Role        string
	InvitedBy   primitive.ObjectID
	InviterName string
}

// Created is the outcome of Create. The invitation exists even when
// EmailSent is false.
type Created struct {
	Invitation models.Invitation `json:"invitation"`
	EmailSent  bool              `json:"email_sent"`
}

// Create persists a pending invitation and then tries to email its link.
// A pending invitation already past its expiry is persisted as expired
// first so it no longer blocks the new one.
func (s *Service) Create(ctx context.Context, in CreateInput) (Created, error) {
	email := normalize.Email(in.Email)
	role := normalize.Role(in.Role)
	if !inputval.IsValidEmail(email) {
		return Created{}, apperr.Validation("invalid_email", "A valid email address is required.")
	}
	if role != models.RoleEditor && role != models.RoleViewer {
		return Created{}, apperr.Validation("invalid_role", "Role must be editor or viewer.")
	}

	project, err := s.projects.GetByID(ctx, in.ProjectID)
	if err != nil {
		return Created{}, projectErr(err)
	}

	now := s.clock()
	existing, err := s.store.FindPending(ctx, in.ProjectID, email)
	switch {
	case err == nil:
		if !existing.ExpiresAt.Before(now) {
			return Created{}, apperr.ErrDuplicatePendingInvitation
		}
		if _, err := s.store.MarkExpired(ctx, existing.ID); err != nil {
			return Created{}, fmt.Errorf("expire stale invitation: %w", err)
		}
		s.metrics.Invitation(metrics.InvitationExpired)
	case !errors.Is(err, invitationstore.ErrNotFound):
		return Created{}, fmt.Errorf("find pending invitation: %w", err)
	}

	inv := models.Invitation{
		ProjectID: in.ProjectID,
		Email:     email,
		Role:      role,
		Status:    models.InvitationPending,
		InvitedBy: in.InvitedBy,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	}
	inv, err = s.insert(ctx, inv)
	if err != nil {
		return Created{}, err
	}
	s.metrics.Invitation(metrics.InvitationCreated)

	out := Created{Invitation: inv, EmailSent: true}
	if err := s.send(ctx, inv, project.Name, in.InviterName); err != nil {
		out.EmailSent = false
	}
	return out, nil
}

// insert retries once on a token collision.
func (s *Service) insert(ctx context.Context, inv models.Invitation) (models.Invitation, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := s.newToken()
		if err != nil {
			return models.Invitation{}, fmt.Errorf("generate invitation token: %w", err)
		}
		inv.Token = token
		saved, err := s.store.Insert(ctx, inv)
		switch {
		case err == nil:
			return saved, nil
		case errors.Is(err, invitationstore.ErrDuplicatePending):
			return models.Invitation{}, apperr.ErrDuplicatePendingInvitation
		case errors.Is(err, invitationstore.ErrDuplicateToken):
			continue
		default:
			return models.Invitation{}, fmt.Errorf("insert invitation: %w", err)
		}
	}
	return models.Invitation{}, errors.New("insert invitation: token collision")
}

// send emails the invitation link. Failures are logged and counted; the
// caller decides whether they matter.
func (s *Service) send(ctx context.Context, inv models.Invitation, projectName, inviterName string) error {
	if s.mail == nil {
		return apperr.ErrEmailDelivery
	}
	email := mailer.BuildInvitationEmail(inv.Email, mailer.InvitationEmailData{
		SiteName:    s.cfg.SiteName,
		ProjectName: projectName,
		InviterName: inviterName,
		Role:        inv.Role,
		Link:        s.Link(inv.Token),
		ExpiresIn:   humanize(inv.ExpiresAt.Sub(s.clock())),
	})
	if err := s.mail.Send(ctx, email); err != nil {
		s.metrics.Invitation(metrics.InvitationEmailFailed)
		s.log.Warn("invitation email failed",
			zap.String("invitation_id", inv.ID.Hex()),
			zap.String("project_id", inv.ProjectID.Hex()),
			zap.Error(err))
		return apperr.ErrEmailDelivery.WithCause(err)
	}
	return nil
}

func humanize(d time.Duration) string {
	days := int((d + 12*time.Hour) / (24 * time.Hour))
	switch {
	case days > 1:
		return fmt.Sprintf("%d days", days)
	case days == 1:
		return "1 day"
	}
	hours := int(d.Round(time.Hour) / time.Hour)
	if hours <= 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}

// get loads an invitation and checks it belongs to projectID.
func (s *Service) get(ctx context.Context, projectID, id primitive.ObjectID) (models.Invitation, error) {
	inv, err := s.store.GetByID(ctx, id)
	if errors.Is(err, invitationstore.ErrNotFound) || (err == nil && inv.ProjectID != projectID) {
		return models.Invitation{}, apperr.ErrInvitationNotFound
	}
	if err != nil {
		return models.Invitation{}, fmt.Errorf("load invitation: %w", err)
	}
	return inv, nil
}

// Resend re-emails a pending invitation with the same token. An invitation
// already past its expiry gets a fresh window first. When the email fails
// the extension is kept and ErrEmailDelivery is returned.
func (s *Service) Resend(ctx context.Context, projectID, id primitive.ObjectID, inviterName string) (models.Invitation, error) {
	inv, err := s.get(ctx, projectID, id)
	if err != nil {
		return models.Invitation{}, err
	}
	if inv.Status != models.InvitationPending {
		return models.Invitation{}, apperr.ErrNotPending
	}

	now := s.clock()
	if inv.ExpiresAt.Before(now) {
		expires := now.Add(s.cfg.TTL)
		ok, err := s.store.ExtendExpiry(ctx, inv.ID, expires)
		if err != nil {
			return models.Invitation{}, fmt.Errorf("extend invitation: %w", err)
		}
		if !ok {
			return models.Invitation{}, apperr.ErrNotPending
		}
		inv.ExpiresAt = expires
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return models.Invitation{}, projectErr(err)
	}
	s.metrics.Invitation(metrics.InvitationResent)
	if err := s.send(ctx, inv, project.Name, inviterName); err != nil {
		return inv, err
	}
	return inv, nil
}

// Cancel marks a pending invitation cancelled. Cancelling a terminal
// invitation is a no-op that returns it unchanged.
func (s *Service) Cancel(ctx context.Context, projectID, id primitive.ObjectID) (models.Invitation, error) {
	inv, err := s.get(ctx, projectID, id)
	if err != nil {
		return models.Invitation{}, err
	}
	if inv.IsTerminal() {
		return inv, nil
	}
	now := s.clock()
	ok, err := s.store.Cancel(ctx, inv.ID, now)
	if err != nil {
		return models.Invitation{}, fmt.Errorf("cancel invitation: %w", err)
	}
	if !ok {
		return s.get(ctx, projectID, id)
	}
	s.metrics.Invitation(metrics.InvitationCancelled)
	inv.Status = models.InvitationCancelled
	inv.CancelledAt = &now
	return inv, nil
}

// Accepted is the outcome of Accept.
type Accepted struct {
	ProjectID primitive.ObjectID `json:"project_id"`
	Role      string             `json:"role"`
}

// statusErr maps a terminal status to the error Accept reports for it.
func statusErr(status string) error {
	switch status {
	case models.InvitationAccepted:
		return apperr.ErrAlreadyAccepted
	case models.InvitationCancelled:
		return apperr.ErrInvitationCancelled
	case models.InvitationExpired:
		return apperr.ErrInvitationExpired
	}
	return apperr.ErrNotPending
}

// Accept redeems token for userID. A pending invitation past its expiry is
// persisted as expired and ErrInvitationExpired is returned together with
// the invitation's project for auditing. Otherwise the
// membership is upserted and the invitation marked accepted. An existing
// owner keeps the owner role.
func (s *Service) Accept(ctx context.Context, token string, userID primitive.ObjectID) (Accepted, error) {
	inv, err := s.store.GetByToken(ctx, token)
	if errors.Is(err, invitationstore.ErrNotFound) {
		return Accepted{}, apperr.ErrInvitationNotFound
	}
	if err != nil {
		return Accepted{}, fmt.Errorf("load invitation: %w", err)
	}
	if inv.Status != models.InvitationPending {
		return Accepted{}, statusErr(inv.Status)
	}

	now := s.clock()
	if now.After(inv.ExpiresAt) {
		if _, err := s.store.MarkExpired(ctx, inv.ID); err != nil {
			return Accepted{}, fmt.Errorf("expire invitation: %w", err)
		}
		s.metrics.Invitation(metrics.InvitationExpired)
		return Accepted{ProjectID: inv.ProjectID, Role: inv.Role}, apperr.ErrInvitationExpired
	}

	out := Accepted{ProjectID: inv.ProjectID, Role: inv.Role}
	err = s.run(ctx, "invitation.accept", func(ctx context.Context) error {
		out.Role = inv.Role
		current, err := s.members.Get(ctx, inv.ProjectID, userID)
		switch {
		case err == nil && current.Role == models.RoleOwner:
			out.Role = models.RoleOwner
		case err == nil || errors.Is(err, memberstore.ErrNotFound):
			if _, err := s.members.Upsert(ctx, models.ProjectMember{
				ProjectID: inv.ProjectID,
				UserID:    userID,
				Role:      inv.Role,
				JoinedAt:  now,
			}); err != nil {
				return fmt.Errorf("add member: %w", err)
			}
		default:
			return fmt.Errorf("load membership: %w", err)
		}

		ok, err := s.store.MarkAccepted(ctx, inv.ID, now)
		if err != nil {
			return fmt.Errorf("mark invitation accepted: %w", err)
		}
		if !ok {
			latest, err := s.store.GetByID(ctx, inv.ID)
			if err != nil {
				return fmt.Errorf("reload invitation: %w", err)
			}
			return statusErr(latest.Status)
		}
		return nil
	})
	if err != nil {
		return Accepted{}, err
	}
	s.metrics.Invitation(metrics.InvitationAccepted)
	return out, nil
}

// View is an invitation as listed: Status is the effective status and
// StoredStatus what is persisted.
type View struct {
	models.Invitation
	Status       string `json:"status"`
	StoredStatus string `json:"stored_status"`
}

// List returns a project's invitations with effective statuses. Cancelled
// invitations older than StaleCancelled are left out unless includeStale.
func (s *Service) List(ctx context.Context, projectID primitive.ObjectID, includeStale bool) ([]View, error) {
	all, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	now := s.clock()
	out := make([]View, 0, len(all))
	for _, inv := range all {
		if !includeStale && inv.Status == models.InvitationCancelled {
			at := inv.CreatedAt
			if inv.CancelledAt != nil {
				at = *inv.CancelledAt
			}
			if now.Sub(at) > StaleCancelled {
				continue
			}
		}
		out = append(out, View{Invitation: inv, Status: inv.EffectiveStatus(now), StoredStatus: inv.Status})
	}
	return out, nil
}

// Landing is what an invite link shows before it is accepted.
type Landing struct {
	ProjectID   primitive.ObjectID `json:"project_id"`
	ProjectName string             `json:"project_name"`
	Email       string             `json:"email"`
	Role        string             `json:"role"`
	Status      string             `json:"status"`
	ExpiresAt   time.Time          `json:"expires_at"`
}

// Lookup describes the invitation behind token without changing it.
func (s *Service) Lookup(ctx context.Context, token string) (Landing, error) {
	inv, err := s.store.GetByToken(ctx, token)
	if errors.Is(err, invitationstore.ErrNotFound) {
		return Landing{}, apperr.ErrInvitationNotFound
	}
	if err != nil {
		return Landing{}, fmt.Errorf("load invitation: %w", err)
	}
	l := Landing{
		ProjectID: inv.ProjectID,
		Email:     inv.Email,
		Role:      inv.Role,
		Status:    inv.EffectiveStatus(s.clock()),
		ExpiresAt: inv.ExpiresAt,
	}
	if p, err := s.projects.GetByID(ctx, inv.ProjectID); err == nil {
		l.ProjectName = p.Name
	}
	return l, nil
}

// SweepExpired persists expired for every overdue pending invitation.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.store.ExpireOverdue(ctx, s.clock())
	if err != nil {
		return 0, err
	}
	s.metrics.InvitationN(metrics.InvitationSweptExpired, n)
	return n, nil
}

func projectErr(err error) error {
	if errors.Is(err, projectstore.ErrNotFound) {
		return apperr.ErrProjectNotFound
	}
	return fmt.Errorf("load project: %w", err)
}
