package userstore_test

import (
	"context"
	"testing"

	userstore "github.com/dalemusser/campaignhub/internal/app/store/users"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := store.Create(ctx, models.User{Email: "  Alice@Example.com ", DisplayName: " Alice   Smith "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if u.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if u.Email != "alice@example.com" {
		t.Errorf("Email = %q", u.Email)
	}
	if u.DisplayName != "Alice Smith" || u.DisplayNameCI == "" {
		t.Errorf("DisplayName = %q, CI = %q", u.DisplayName, u.DisplayNameCI)
	}

	if _, err := store.Create(ctx, models.User{Email: "alice@example.com"}); err != userstore.ErrDuplicateEmail {
		t.Errorf("duplicate: err = %v, want ErrDuplicateEmail", err)
	}
}

func TestStore_GetByEmail_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByEmail(ctx, "nobody@example.com"); err != userstore.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_FlagsAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fx.CreateUser(ctx, "alice@example.com", "Alice")
	bob := fx.CreateUser(ctx, "bob@example.com", "Bob")
	fx.CreateUser(ctx, "carol@example.com", "Carol")

	if err := store.SetBanned(ctx, bob.ID, true); err != nil {
		t.Fatalf("SetBanned: %v", err)
	}
	if err := store.SetAdmin(ctx, alice.ID, true); err != nil {
		t.Fatalf("SetAdmin: %v", err)
	}
	if err := store.SetAdmin(ctx, primitive.NewObjectID(), true); err != userstore.ErrNotFound {
		t.Errorf("SetAdmin unknown: err = %v", err)
	}

	got, _ := store.GetByID(ctx, bob.ID)
	if !got.IsBanned {
		t.Error("expected bob to be banned")
	}

	users, total, err := store.List(ctx, userstore.ListParams{Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(users) != 2 || users[0].DisplayName != "Alice" {
		t.Errorf("List = %d users (total %d), first %q", len(users), total, users[0].DisplayName)
	}

	users, total, _ = store.List(ctx, userstore.ListParams{Search: "car"})
	if total != 1 || users[0].Email != "carol@example.com" {
		t.Errorf("search: total %d", total)
	}

	byIDs, err := store.ListByIDs(ctx, []primitive.ObjectID{alice.ID, bob.ID})
	if err != nil || len(byIDs) != 2 {
		t.Errorf("ListByIDs = %d, %v", len(byIDs), err)
	}
}

func TestFetcher(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateUser(ctx, "alice@example.com", "Alice")
	f := userstore.NewFetcher(store)

	su, err := f.FetchSessionUser(ctx, u.ID.Hex())
	if err != nil || su == nil || su.Email != "alice@example.com" {
		t.Fatalf("FetchSessionUser = %+v, %v", su, err)
	}

	_ = store.SetBanned(ctx, u.ID, true)
	if su, err := f.FetchSessionUser(ctx, u.ID.Hex()); su != nil || err != nil {
		t.Errorf("banned user: %+v, %v", su, err)
	}
	if su, _ := f.FetchSessionUser(context.Background(), "bad"); su != nil {
		t.Error("malformed id should yield nil")
	}
}
