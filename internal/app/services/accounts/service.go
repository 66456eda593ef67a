// Package accounts implements the identity surface (registration, sign-in,
// password reset), account deletion and system-admin user management.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	identitystore "github.com/dalemusser/campaignhub/internal/app/store/identities"
	"github.com/dalemusser/campaignhub/internal/app/store/resettokens"
	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/authutil"
	"github.com/dalemusser/campaignhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/campaignhub/internal/app/system/mailer"
	"github.com/dalemusser/campaignhub/internal/app/system/normalize"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = apperr.Validation("invalid_credentials", "Email or password is incorrect.")
	ErrEmailTaken         = apperr.StateConflict("email_taken", "An account with this email already exists.")
	ErrBanned             = apperr.Permission("account_banned", "This account has been suspended.")
	ErrResetInvalid       = apperr.New(apperr.KindExpired, "reset_link_invalid", "This reset link is invalid or has expired.")
	ErrSelfAction         = apperr.Validation("self_action", "You cannot do that to your own account.")
)

// UserStore is satisfied by *userstore.Store.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, p userstore.ListParams) ([]models.User, int64, error)
	UpdateDisplayName(ctx context.Context, id primitive.ObjectID, name string) error
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error
	SetAdmin(ctx context.Context, id primitive.ObjectID, admin bool) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// IdentityStore is satisfied by *identitystore.Store.
type IdentityStore interface {
	Create(ctx context.Context, id primitive.ObjectID, email, passwordHash string) (models.Identity, error)
	GetByEmail(ctx context.Context, email string) (models.Identity, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ResetStore is satisfied by *resettokens.Store.
type ResetStore interface {
	Create(ctx context.Context, userID primitive.ObjectID, email string) (string, error)
	Consume(ctx context.Context, token string) (resettokens.Reset, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
	Expiry() time.Duration
}

// Projects is the part of the projects service account deletion needs.
type Projects interface {
	ListOwned(ctx context.Context, userID primitive.ObjectID) ([]models.Project, error)
	Purge(ctx context.Context, projectID primitive.ObjectID) error
}

// Memberships removes a user's rows across every project.
type Memberships interface {
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Config holds link settings for emails.
type Config struct {
	BaseURL  string
	SiteName string
}

// Service implements account operations.
type Service struct {
	users      UserStore
	identities IdentityStore
	resets     ResetStore
	projects   Projects
	members    Memberships
	mail       mailer.Mailer
	log        *zap.Logger
	cfg        Config

	hash  func(string) (string, error)
	check func(pw, hash string) bool
}

// New builds a Service.
func New(users UserStore, identities IdentityStore, resets ResetStore, projects Projects, members Memberships, mail mailer.Mailer, logger *zap.Logger, cfg Config) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "CampaignHub"
	}
	return &Service{
		users:      users,
		identities: identities,
		resets:     resets,
		projects:   projects,
		members:    members,
		mail:       mail,
		log:        logger,
		cfg:        cfg,
		hash:       authutil.HashPassword,
		check:      authutil.CheckPassword,
	}
}

// credentialErr classifies an authutil validation error.
func credentialErr(err error) error {
	switch {
	case errors.Is(err, authutil.ErrEmailRequired):
		return apperr.Validation("email_required", "Email is required.")
	case errors.Is(err, authutil.ErrInvalidEmail):
		return apperr.Validation("invalid_email", "A valid email address is required.")
	case errors.Is(err, authutil.ErrPasswordRequired):
		return apperr.Validation("password_required", "Password is required.")
	case errors.Is(err, authutil.ErrPasswordTooShort):
		return apperr.Validation("password_too_short", fmt.Sprintf("Password must be at least %d characters.", authutil.MinPasswordLength))
	case errors.Is(err, authutil.ErrPasswordTooLong):
		return apperr.Validation("password_too_long", fmt.Sprintf("Password must be at most %d characters.", authutil.MaxPasswordLength))
	case errors.Is(err, authutil.ErrPasswordCommon):
		return apperr.Validation("password_common", "That password is too common. Choose another.")
	}
	return err
}

func userErr(err error) error {
	if errors.Is(err, userstore.ErrNotFound) {
		return apperr.ErrUserNotFound
	}
	return fmt.Errorf("load user: %w", err)
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register creates the user profile and then its identity under the same
// id. When the identity cannot be written the profile is removed again.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	email, err := authutil.ValidateCredentials(in.Email, in.Password)
	if err != nil {
		return models.User{}, credentialErr(err)
	}
	name := normalize.Name(htmlsanitize.Text(in.DisplayName))
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	if _, err := s.identities.GetByEmail(ctx, email); err == nil {
		return models.User{}, ErrEmailTaken
	} else if !errors.Is(err, identitystore.ErrNotFound) {
		return models.User{}, fmt.Errorf("check identity: %w", err)
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, models.User{Email: email, DisplayName: name})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	if _, err := s.identities.Create(ctx, u.ID, email, hash); err != nil {
		if derr := s.users.Delete(ctx, u.ID); derr != nil {
			s.log.Error("orphan user profile after identity failure", zap.String("user_id", u.ID.Hex()), zap.Error(derr))
		}
		if errors.Is(err, identitystore.ErrDuplicateEmail) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("create identity: %w", err)
	}
	return u, nil
}

// Login checks credentials and returns the user. A banned user gets
// ErrBanned; the returned user is still filled in for auditing.
func (s *Service) Login(ctx context.Context, email, password string) (models.User, error) {
	email = normalize.Email(email)
	if email == "" || password == "" {
		return models.User{}, ErrInvalidCredentials
	}
	id, err := s.identities.GetByEmail(ctx, email)
	if errors.Is(err, identitystore.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load identity: %w", err)
	}
	if !s.check(password, id.PasswordHash) {
		return models.User{ID: id.ID, Email: email}, ErrInvalidCredentials
	}
	u, err := s.users.GetByID(ctx, id.ID)
	if errors.Is(err, userstore.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if u.IsBanned {
		return u, ErrBanned
	}
	return u, nil
}

// RequestPasswordReset emails a reset link when email belongs to an
// account. Unknown emails, throttled requests and mail failures all return
// nil so the response never reveals whether an account exists.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalize.Email(email)
	id, err := s.identities.GetByEmail(ctx, email)
	if errors.Is(err, identitystore.ErrNotFound) || email == "" {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load identity: %w", err)
	}

	token, err := s.resets.Create(ctx, id.ID, email)
	if errors.Is(err, resettokens.ErrTooManyRequests) {
		s.log.Info("password reset throttled", zap.String("user_id", id.ID.Hex()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("create reset: %w", err)
	}

	if s.mail == nil {
		return nil
	}
	link := strings.TrimRight(s.cfg.BaseURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
	msg := mailer.BuildPasswordResetEmail(email, mailer.PasswordResetEmailData{
		SiteName:  s.cfg.SiteName,
		Link:      link,
		ExpiresIn: expiryText(s.resets.Expiry()),
	})
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.Warn("password reset email failed", zap.String("user_id", id.ID.Hex()), zap.Error(err))
	}
	return nil
}

func expiryText(d time.Duration) string {
	if m := int(d / time.Minute); m < 60 {
		return fmt.Sprintf("%d minutes", m)
	}
	if h := int(d / time.Hour); h > 1 {
		return fmt.Sprintf("%d hours", h)
	}
	return "1 hour"
}

// ConfirmPasswordReset redeems token and sets a new password. It returns
// the user whose password changed.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, password string) (primitive.ObjectID, error) {
	if err := authutil.ValidatePassword(password); err != nil {
		return primitive.NilObjectID, credentialErr(err)
	}
	reset, err := s.resets.Consume(ctx, token)
	if errors.Is(err, resettokens.ErrNotFound) {
		return primitive.NilObjectID, ErrResetInvalid
	}
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("consume reset: %w", err)
	}
	hash, err := s.hash(password)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("hash password: %w", err)
	}
	if err := s.identities.SetPassword(ctx, reset.UserID, hash); err != nil {
		if errors.Is(err, identitystore.ErrNotFound) {
			return primitive.NilObjectID, ErrResetInvalid
		}
		return primitive.NilObjectID, fmt.Errorf("set password: %w", err)
	}
	return reset.UserID, nil
}

// Profile returns the user's profile.
func (s *Service) Profile(ctx context.Context, userID primitive.ObjectID) (models.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, userErr(err)
	}
	return u, nil
}

// UpdateDisplayName changes the user's display name.
func (s *Service) UpdateDisplayName(ctx context.Context, userID primitive.ObjectID, name string) (models.User, error) {
	name = normalize.Name(htmlsanitize.Text(name))
	if name == "" {
		return models.User{}, apperr.Validation("name_required", "Display name is required.")
	}
	if err := s.users.UpdateDisplayName(ctx, userID, name); err != nil {
		return models.User{}, userErr(err)
	}
	return s.Profile(ctx, userID)
}

// Deletion reports what DeleteAccount removed.
type Deletion struct {
	ProjectsDeleted int `json:"projects_deleted"`
}

// DeleteAccount cascades in a fixed order: every owned project (its
// collections, then the project), the user's memberships elsewhere, pending
// reset links, the profile, and finally the identity. It stops at the first
// failure; completed steps stay done and a retry resumes the cascade.
func (s *Service) DeleteAccount(ctx context.Context, userID primitive.ObjectID) (Deletion, error) {
	var d Deletion
	owned, err := s.projects.ListOwned(ctx, userID)
	if err != nil {
		return d, fmt.Errorf("list owned projects: %w", err)
	}
	for _, p := range owned {
		if err := s.projects.Purge(ctx, p.ID); err != nil {
			return d, fmt.Errorf("delete project %s: %w", p.ID.Hex(), err)
		}
		d.ProjectsDeleted++
	}
	if _, err := s.members.DeleteByUser(ctx, userID); err != nil {
		return d, fmt.Errorf("delete memberships: %w", err)
	}
	if err := s.resets.DeleteByUser(ctx, userID); err != nil {
		return d, fmt.Errorf("delete reset links: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return d, fmt.Errorf("delete profile: %w", err)
	}
	if err := s.identities.Delete(ctx, userID); err != nil {
		return d, fmt.Errorf("delete identity: %w", err)
	}
	s.log.Info("account deleted", zap.String("user_id", userID.Hex()), zap.Int("projects_deleted", d.ProjectsDeleted))
	return d, nil
}

// ListUsers pages through users for the admin dashboard.
func (s *Service) ListUsers(ctx context.Context, p userstore.ListParams) ([]models.User, int64, error) {
	return s.users.List(ctx, p)
}

// SetBanned bans or unbans target. Admins cannot ban themselves.
func (s *Service) SetBanned(ctx context.Context, actorID, targetID primitive.ObjectID, banned bool) error {
	if actorID == targetID {
		return ErrSelfAction
	}
	if err := s.users.SetBanned(ctx, targetID, banned); err != nil {
		return userErr(err)
	}
	return nil
}

// SetAdmin grants or revokes the system admin flag. Admins cannot revoke
// their own flag.
func (s *Service) SetAdmin(ctx context.Context, actorID, targetID primitive.ObjectID, admin bool) error {
	if actorID == targetID && !admin {
		return ErrSelfAction
	}
	if err := s.users.SetAdmin(ctx, targetID, admin); err != nil {
		return userErr(err)
	}
	return nil
}

// DeleteUser runs the account deletion cascade for another user.
func (s *Service) DeleteUser(ctx context.Context, actorID, targetID primitive.ObjectID) (Deletion, error) {
	if actorID == targetID {
		return Deletion{}, ErrSelfAction
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return Deletion{}, userErr(err)
	}
	return s.DeleteAccount(ctx, targetID)
}

// BootstrapAdmin promotes the user with email to system admin. A missing
// user is logged and ignored so a fresh install can start before anyone
// has registered.
func (s *Service) BootstrapAdmin(ctx context.Context, email string) error {
	email = normalize.Email(email)
	if email == "" {
		return nil
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		s.log.Info("admin bootstrap: no user yet", zap.String("email", email))
		return nil
	}
	if err != nil {
		return fmt.Errorf("load admin user: %w", err)
	}
	if u.IsAdmin {
		return nil
	}
	if err := s.users.SetAdmin(ctx, u.ID, true); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	s.log.Info("admin bootstrap: promoted user", zap.String("user_id", u.ID.Hex()))
	return nil
}
