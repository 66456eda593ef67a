package invitations

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/campaignhub/internal/app/system/apperr"
	"github.com/dalemusser/campaignhub/internal/app/system/mailer"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type harness struct {
	svc     *Service
	store   *fakeStore
	members *fakeMembers
	mail    *mailer.Log
	project models.Project
	now     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   newFakeStore(),
		members: newFakeMembers(),
		mail:    mailer.NewLog(zap.NewNop()),
		project: models.Project{ID: primitive.NewObjectID(), Name: "Spring Launch"},
		now:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	projects := fakeProjects{h.project.ID: h.project}
	h.svc = New(h.store, h.members, projects, h.mail, nil, nil, zap.NewNop(), Config{BaseURL: "https://app.example.com/"})
	h.svc.SetClock(func() time.Time { return h.now })
	return h
}

func (h *harness) create(t *testing.T, email, role string) Created {
	t.Helper()
	c, err := h.svc.Create(context.Background(), CreateInput{
		ProjectID:   h.project.ID,
		Email:       email,
		Role:        role,
		InvitedBy:   primitive.NewObjectID(),
		InviterName: "Olivia",
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", email, err)
	}
	return c
}

func TestCreate_SendsLinkAndExpiresInSevenDays(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "  Alice@Example.com ", "EDITOR")

	inv := c.Invitation
	if inv.Email != "alice@example.com" || inv.Role != models.RoleEditor || inv.Status != models.InvitationPending {
		t.Errorf("invitation = %+v", inv)
	}
	if want := h.now.Add(7 * 24 * time.Hour); !inv.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", inv.ExpiresAt, want)
	}
	if len(inv.Token) < 32 {
		t.Errorf("token %q too short", inv.Token)
	}
	if !c.EmailSent {
		t.Error("EmailSent = false")
	}

	sent := h.mail.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sent))
	}
	if sent[0].To != "alice@example.com" || !strings.Contains(sent[0].TextBody, "https://app.example.com/invite?token="+inv.Token) {
		t.Errorf("email = %+v", sent[0])
	}
	if !strings.Contains(sent[0].TextBody, "7 days") {
		t.Errorf("expiry missing from body: %s", sent[0].TextBody)
	}
}

func TestCreate_Validation(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name  string
		email string
		role  string
		code  string
	}{
		{"bad email", "nope", "editor", "invalid_email"},
		{"owner role", "a@example.com", "owner", "invalid_role"},
		{"empty role", "a@example.com", "", "invalid_role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Create(context.Background(), CreateInput{ProjectID: h.project.ID, Email: tt.email, Role: tt.role})
			if apperr.KindOf(err) != apperr.KindValidation || apperr.Code(err) != tt.code {
				t.Errorf("err = %v, want validation %s", err, tt.code)
			}
		})
	}

	_, err := h.svc.Create(context.Background(), CreateInput{ProjectID: primitive.NewObjectID(), Email: "a@example.com", Role: "viewer"})
	if !errors.Is(err, apperr.ErrProjectNotFound) {
		t.Errorf("unknown project: err = %v", err)
	}
}

func TestCreate_SinglePending(t *testing.T) {
	h := newHarness(t)
	first := h.create(t, "alice@example.com", "editor")

	_, err := h.svc.Create(context.Background(), CreateInput{ProjectID: h.project.ID, Email: "alice@example.com", Role: "viewer"})
	if !errors.Is(err, apperr.ErrDuplicatePendingInvitation) {
		t.Fatalf("second create: err = %v, want ErrDuplicatePendingInvitation", err)
	}

	if _, err := h.svc.Cancel(context.Background(), h.project.ID, first.Invitation.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	h.create(t, "alice@example.com", "editor")
}

func TestCreate_StalePendingIsExpiredFirst(t *testing.T) {
	h := newHarness(t)
	old := h.create(t, "alice@example.com", "viewer")

	h.now = h.now.Add(8 * 24 * time.Hour)
	fresh := h.create(t, "alice@example.com", "editor")

	if fresh.Invitation.ID == old.Invitation.ID {
		t.Fatal("expected a new invitation")
	}
	got, _ := h.store.GetByID(context.Background(), old.Invitation.ID)
	if got.Status != models.InvitationExpired {
		t.Errorf("stale invitation status = %q, want expired", got.Status)
	}
}

func TestCreate_EmailFailureKeepsInvitation(t *testing.T) {
	h := newHarness(t)
	fail := &failingMailer{}
	h.svc.mail = fail

	c := h.create(t, "alice@example.com", "editor")
	if c.EmailSent {
		t.Error("EmailSent = true after failure")
	}
	if _, err := h.store.GetByID(context.Background(), c.Invitation.ID); err != nil {
		t.Errorf("invitation not persisted: %v", err)
	}
	if fail.calls != 1 {
		t.Errorf("mailer calls = %d", fail.calls)
	}
}

func TestResend(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "alice@example.com", "editor")

	h.now = h.now.Add(10 * 24 * time.Hour)
	inv, err := h.svc.Resend(context.Background(), h.project.ID, c.Invitation.ID, "Olivia")
	if err != nil {
		t.Fatalf("Resend: %v", err)
	}
	if want := h.now.Add(7 * 24 * time.Hour); !inv.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", inv.ExpiresAt, want)
	}
	if inv.Token != c.Invitation.Token {
		t.Error("resend changed the token")
	}
	if n := len(h.mail.Sent()); n != 2 {
		t.Errorf("sent %d emails, want 2", n)
	}

	if _, err := h.svc.Resend(context.Background(), primitive.NewObjectID(), c.Invitation.ID, ""); !errors.Is(err, apperr.ErrInvitationNotFound) {
		t.Errorf("other project: err = %v", err)
	}

	h.svc.mail = &failingMailer{}
	if _, err := h.svc.Resend(context.Background(), h.project.ID, c.Invitation.ID, ""); !errors.Is(err, apperr.ErrEmailDelivery) {
		t.Errorf("failing mailer: err = %v, want ErrEmailDelivery", err)
	}

	if _, err := h.svc.Cancel(context.Background(), h.project.ID, c.Invitation.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := h.svc.Resend(context.Background(), h.project.ID, c.Invitation.ID, ""); !errors.Is(err, apperr.ErrNotPending) {
		t.Errorf("cancelled: err = %v, want ErrNotPending", err)
	}
}

func TestCancel_TerminalIsNoop(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "alice@example.com", "editor")
	userID := primitive.NewObjectID()
	if _, err := h.svc.Accept(context.Background(), c.Invitation.Token, userID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	inv, err := h.svc.Cancel(context.Background(), h.project.ID, c.Invitation.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if inv.Status != models.InvitationAccepted {
		t.Errorf("status = %q, want accepted", inv.Status)
	}
}

func TestAccept(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "alice@example.com", "editor")
	alice := primitive.NewObjectID()

	res, err := h.svc.Accept(context.Background(), c.Invitation.Token, alice)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if res.ProjectID != h.project.ID || res.Role != models.RoleEditor {
		t.Errorf("result = %+v", res)
	}
	m, err := h.members.Get(context.Background(), h.project.ID, alice)
	if err != nil || m.Role != models.RoleEditor {
		t.Errorf("membership = %+v, %v", m, err)
	}
	inv, _ := h.store.GetByID(context.Background(), c.Invitation.ID)
	if inv.Status != models.InvitationAccepted || inv.AcceptedAt == nil || !inv.AcceptedAt.Equal(h.now) {
		t.Errorf("invitation = %+v", inv)
	}

	if _, err := h.svc.Accept(context.Background(), c.Invitation.Token, alice); !errors.Is(err, apperr.ErrAlreadyAccepted) {
		t.Errorf("second accept: err = %v, want ErrAlreadyAccepted", err)
	}
	if _, err := h.svc.Accept(context.Background(), "missing", alice); !errors.Is(err, apperr.ErrInvitationNotFound) {
		t.Errorf("unknown token: err = %v", err)
	}
	if _, err := h.svc.Accept(context.Background(), c.Invitation.Token[:10], alice); !errors.Is(err, apperr.ErrInvitationNotFound) {
		t.Errorf("prefix token: err = %v", err)
	}
}

func TestAccept_Expired(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "alice@example.com", "editor")
	h.now = h.now.Add(7*24*time.Hour + time.Second)

	_, err := h.svc.Accept(context.Background(), c.Invitation.Token, primitive.NewObjectID())
	if !errors.Is(err, apperr.ErrInvitationExpired) || apperr.KindOf(err) != apperr.KindExpired {
		t.Fatalf("err = %v, want ErrInvitationExpired", err)
	}
	inv, _ := h.store.GetByID(context.Background(), c.Invitation.ID)
	if inv.Status != models.InvitationExpired {
		t.Errorf("status = %q, want expired", inv.Status)
	}
	if len(h.members.rows) != 0 {
		t.Error("membership written for expired invitation")
	}
}

func TestAccept_Cancelled(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "alice@example.com", "viewer")
	if _, err := h.svc.Cancel(context.Background(), h.project.ID, c.Invitation.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := h.svc.Accept(context.Background(), c.Invitation.Token, primitive.NewObjectID()); !errors.Is(err, apperr.ErrInvitationCancelled) {
		t.Errorf("err = %v, want ErrInvitationCancelled", err)
	}
}

func TestAccept_OwnerKeepsOwnerRole(t *testing.T) {
	h := newHarness(t)
	owner := primitive.NewObjectID()
	h.members.Upsert(context.Background(), models.ProjectMember{ProjectID: h.project.ID, UserID: owner, Role: models.RoleOwner})
	c := h.create(t, "owner@example.com", "viewer")

	res, err := h.svc.Accept(context.Background(), c.Invitation.Token, owner)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if res.Role != models.RoleOwner {
		t.Errorf("role = %q, want owner", res.Role)
	}
	m, _ := h.members.Get(context.Background(), h.project.ID, owner)
	if m.Role != models.RoleOwner {
		t.Errorf("membership downgraded to %q", m.Role)
	}
}

func TestAccept_MembershipFailureLeavesPending(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "alice@example.com", "editor")
	h.members.err = errors.New("write failed")

	if _, err := h.svc.Accept(context.Background(), c.Invitation.Token, primitive.NewObjectID()); err == nil {
		t.Fatal("expected error")
	}
	inv, _ := h.store.GetByID(context.Background(), c.Invitation.ID)
	if inv.Status != models.InvitationPending {
		t.Errorf("status = %q, want pending so the link can be retried", inv.Status)
	}

	h.members.err = nil
	if _, err := h.svc.Accept(context.Background(), c.Invitation.Token, primitive.NewObjectID()); err != nil {
		t.Errorf("retry: %v", err)
	}
}

func TestList_EffectiveStatusAndStaleCancelled(t *testing.T) {
	h := newHarness(t)
	cancelled := h.create(t, "old@example.com", "viewer")
	if _, err := h.svc.Cancel(context.Background(), h.project.ID, cancelled.Invitation.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	h.now = h.now.Add(8 * 24 * time.Hour)
	overdue := h.create(t, "late@example.com", "viewer")
	h.now = h.now.Add(8 * 24 * time.Hour)

	list, err := h.svc.List(context.Background(), h.project.ID, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != overdue.Invitation.ID {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Status != models.InvitationExpired || list[0].StoredStatus != models.InvitationPending {
		t.Errorf("status = %q stored %q", list[0].Status, list[0].StoredStatus)
	}

	all, _ := h.svc.List(context.Background(), h.project.ID, true)
	if len(all) != 2 {
		t.Errorf("include stale = %d, want 2", len(all))
	}
}

func TestLookupAndSweep(t *testing.T) {
	h := newHarness(t)
	c := h.create(t, "alice@example.com", "editor")

	l, err := h.svc.Lookup(context.Background(), c.Invitation.Token)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if l.ProjectName != "Spring Launch" || l.Status != models.InvitationPending || l.Role != models.RoleEditor {
		t.Errorf("landing = %+v", l)
	}

	h.now = h.now.Add(30 * 24 * time.Hour)
	n, err := h.svc.SweepExpired(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("SweepExpired = %d, %v", n, err)
	}
	if n, _ := h.svc.SweepExpired(context.Background()); n != 0 {
		t.Errorf("second sweep = %d", n)
	}
}

func TestHumanize(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{7 * 24 * time.Hour, "7 days"},
		{24 * time.Hour, "1 day"},
		{5 * time.Hour, "5 hours"},
		{10 * time.Minute, "1 hour"},
	}
	for _, tt := range tests {
		if got := humanize(tt.in); got != tt.want {
			t.Errorf("humanize(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
