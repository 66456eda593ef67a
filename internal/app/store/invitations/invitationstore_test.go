package invitationstore_test

import (
	"testing"
	"time"

	invitationstore "github.com/dalemusser/campaignhub/internal/app/store/invitations"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newInvite(pid primitive.ObjectID, email, token string, expires time.Time) models.Invitation {
	return models.Invitation{
		ProjectID: pid,
		Email:     email,
		Role:      models.RoleEditor,
		Token:     token,
		InvitedBy: primitive.NewObjectID(),
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expires,
	}
}

func TestStore_SinglePending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	week := time.Now().UTC().Add(7 * 24 * time.Hour)

	first, err := store.Insert(ctx, newInvite(pid, "alice@example.com", "tok-1", week))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if first.Status != models.InvitationPending {
		t.Errorf("status = %q", first.Status)
	}

	if _, err := store.Insert(ctx, newInvite(pid, "alice@example.com", "tok-2", week)); err != invitationstore.ErrDuplicatePending {
		t.Fatalf("second pending: err = %v, want ErrDuplicatePending", err)
	}
	if _, err := store.Insert(ctx, newInvite(primitive.NewObjectID(), "bob@example.com", "tok-1", week)); err != invitationstore.ErrDuplicateToken {
		t.Errorf("token reuse: err = %v, want ErrDuplicateToken", err)
	}

	ok, err := store.Cancel(ctx, first.ID, time.Now().UTC())
	if err != nil || !ok {
		t.Fatalf("Cancel = %v, %v", ok, err)
	}
	if _, err := store.Insert(ctx, newInvite(pid, "alice@example.com", "tok-3", week)); err != nil {
		t.Errorf("insert after cancel: %v", err)
	}
}

func TestStore_TransitionsOnlyLeavePending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inv, err := store.Insert(ctx, newInvite(primitive.NewObjectID(), "alice@example.com", "tok-a", time.Now().UTC().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	now := time.Now().UTC()
	if ok, err := store.MarkAccepted(ctx, inv.ID, now); err != nil || !ok {
		t.Fatalf("MarkAccepted = %v, %v", ok, err)
	}
	if ok, _ := store.Cancel(ctx, inv.ID, now); ok {
		t.Error("Cancel matched an accepted invitation")
	}
	if ok, _ := store.MarkExpired(ctx, inv.ID); ok {
		t.Error("MarkExpired matched an accepted invitation")
	}
	if ok, _ := store.ExtendExpiry(ctx, inv.ID, now.Add(time.Hour)); ok {
		t.Error("ExtendExpiry matched an accepted invitation")
	}

	got, err := store.GetByToken(ctx, "tok-a")
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.Status != models.InvitationAccepted || got.AcceptedAt == nil {
		t.Errorf("got %+v", got)
	}
	if _, err := store.GetByToken(ctx, ""); err != invitationstore.ErrNotFound {
		t.Errorf("empty token: err = %v", err)
	}
	if _, err := store.GetByToken(ctx, "tok-"); err != invitationstore.ErrNotFound {
		t.Errorf("prefix token: err = %v", err)
	}
}

func TestStore_ExpireOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invitationstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	now := time.Now().UTC()
	stale := fx.CreateInvitation(ctx, pid, "old@example.com", models.RoleViewer, "tok-old", now.Add(-time.Hour))
	fresh := fx.CreateInvitation(ctx, pid, "new@example.com", models.RoleViewer, "tok-new", now.Add(time.Hour))

	n, err := store.ExpireOverdue(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("ExpireOverdue = %d, %v", n, err)
	}
	if got, _ := store.GetByID(ctx, stale.ID); got.Status != models.InvitationExpired {
		t.Errorf("stale status = %q", got.Status)
	}
	if got, _ := store.FindPending(ctx, pid, "new@example.com"); got.ID != fresh.ID {
		t.Errorf("FindPending = %+v", got)
	}

	list, err := store.ListByProject(ctx, pid)
	if err != nil || len(list) != 2 {
		t.Errorf("ListByProject = %d, %v", len(list), err)
	}
	if n, err := store.DeleteByProject(ctx, pid); err != nil || n != 2 {
		t.Errorf("DeleteByProject = %d, %v", n, err)
	}
}
