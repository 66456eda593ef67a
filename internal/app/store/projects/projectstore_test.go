package projectstore_test

import (
	"testing"
	"time"

	projectstore "github.com/dalemusser/campaignhub/internal/app/store/projects"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateGetUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	p, err := store.Create(ctx, models.Project{Name: "Spring Launch", OwnerID: owner})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID.IsZero() || p.NameCI == "" {
		t.Fatalf("Create did not fill ID/NameCI: %+v", p)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil || got.Name != "Spring Launch" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}

	name, desc := "Autumn Launch", "Q3 push"
	upd, err := store.Update(ctx, p.ID, projectstore.Update{Name: &name, Description: &desc})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Name != name || upd.Description != desc || upd.OwnerID != owner {
		t.Errorf("Update = %+v", upd)
	}

	if _, err := store.Update(ctx, primitive.NewObjectID(), projectstore.Update{Name: &name}); err != projectstore.ErrNotFound {
		t.Errorf("Update unknown: err = %v", err)
	}
	if _, err := store.GetByID(ctx, primitive.NewObjectID()); err != projectstore.ErrNotFound {
		t.Errorf("GetByID unknown: err = %v", err)
	}
}

func TestStore_ListsAndOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Now().UTC().Add(-time.Hour)
	older, _ := store.Create(ctx, models.Project{Name: "Older", OwnerID: alice, CreatedAt: base})
	newer, _ := store.Create(ctx, models.Project{Name: "Newer", OwnerID: alice, CreatedAt: base.Add(time.Minute)})
	bobs, _ := store.Create(ctx, models.Project{Name: "Bob's", OwnerID: bob, CreatedAt: base.Add(2 * time.Minute)})

	owned, err := store.ListByOwner(ctx, alice)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(owned) != 2 || owned[0].ID != newer.ID || owned[1].ID != older.ID {
		t.Errorf("ListByOwner order wrong: %+v", owned)
	}

	byIDs, err := store.ListByIDs(ctx, []primitive.ObjectID{older.ID, bobs.ID})
	if err != nil || len(byIDs) != 2 || byIDs[0].ID != bobs.ID {
		t.Errorf("ListByIDs = %+v, %v", byIDs, err)
	}
	if none, err := store.ListByIDs(ctx, nil); err != nil || none != nil {
		t.Errorf("ListByIDs(nil) = %v, %v", none, err)
	}

	all, total, err := store.ListAll(ctx, 2, 0)
	if err != nil || total != 3 || len(all) != 2 {
		t.Errorf("ListAll = %d (total %d), %v", len(all), total, err)
	}

	if err := store.SetOwner(ctx, older.ID, bob); err != nil {
		t.Fatalf("SetOwner: %v", err)
	}
	if got, _ := store.GetByID(ctx, older.ID); got.OwnerID != bob {
		t.Errorf("owner = %v, want bob", got.OwnerID)
	}
	if err := store.SetOwner(ctx, primitive.NewObjectID(), bob); err != projectstore.ErrNotFound {
		t.Errorf("SetOwner unknown: err = %v", err)
	}

	n, err := store.Delete(ctx, older.ID)
	if err != nil || n != 1 {
		t.Errorf("Delete = %d, %v", n, err)
	}
	if n, _ := store.Delete(ctx, older.ID); n != 0 {
		t.Errorf("second Delete = %d, want 0", n)
	}
}
