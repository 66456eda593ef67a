package brandingstore_test

import (
	"testing"

	brandingstore "github.com/dalemusser/campaignhub/internal/app/store/branding"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_DefaultsThenPut(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := brandingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	got, err := store.Get(ctx, pid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != models.DefaultBranding(pid) {
		t.Errorf("Get without document = %+v", got)
	}

	got.PrimaryColor = "#123456"
	saved, err := store.Put(ctx, got)
	if err != nil || saved.UpdatedAt.IsZero() {
		t.Fatalf("Put = %+v, %v", saved, err)
	}
	again, _ := store.Get(ctx, pid)
	if again.PrimaryColor != "#123456" || again.AccentColor != got.AccentColor {
		t.Errorf("after Put = %+v", again)
	}
}
