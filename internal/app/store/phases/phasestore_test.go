package phasestore_test

import (
	"testing"

	phasestore "github.com/dalemusser/campaignhub/internal/app/store/phases"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_DefaultsThenPut(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := phasestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	got, err := store.Get(ctx, pid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != models.DefaultPhaseSet(pid) {
		t.Errorf("Get without document = %+v", got)
	}

	got.Phase1 = models.Phase{Name: "Kickoff", StartMonth: 1, StartDay: 1, EndMonth: 3, EndDay: 31, Color: "#000000"}
	if err := store.Put(ctx, got); err != nil {
		t.Fatalf("Put: %v", err)
	}
	again, _ := store.Get(ctx, pid)
	if again.Phase1.Name != "Kickoff" || again.Phase1.EndMonth != 3 {
		t.Errorf("after Put = %+v", again.Phase1)
	}

	if n, err := store.DeleteByProject(ctx, pid); err != nil || n != 1 {
		t.Fatalf("DeleteByProject = %d, %v", n, err)
	}
	if reset, _ := store.Get(ctx, pid); reset.Phase1.Name != "Phase 1" {
		t.Errorf("after Delete = %+v", reset.Phase1)
	}
}
