package campaignstore_test

import (
	"testing"
	"time"

	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestStore_WindowIsOverlap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := campaignstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	ch, ty := primitive.NewObjectID(), primitive.NewObjectID()
	fx.CreateCampaign(ctx, pid, ch, ty, "Straddle", day("2026-03-15"), day("2026-04-15"))
	fx.CreateCampaign(ctx, pid, ch, ty, "Inside", day("2026-02-01"), day("2026-02-10"))
	fx.CreateCampaign(ctx, pid, ch, ty, "After", day("2026-06-01"), day("2026-06-30"))
	fx.CreateCampaign(ctx, primitive.NewObjectID(), ch, ty, "Elsewhere", day("2026-02-01"), day("2026-02-10"))

	got, err := store.ListByProject(ctx, pid, campaignstore.Window{From: day("2026-01-01"), To: day("2026-03-31")})
	if err != nil {
		t.Fatalf("ListByProject: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Inside" || got[1].Name != "Straddle" {
		t.Errorf("got %d campaigns: %+v", len(got), got)
	}

	all, _ := store.ListByProject(ctx, pid, campaignstore.Window{})
	if len(all) != 3 {
		t.Errorf("open window = %d, want 3", len(all))
	}
}

func TestStore_ReplaceClearsBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := campaignstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pid := primitive.NewObjectID()
	c := fx.CreateCampaign(ctx, pid, primitive.NewObjectID(), primitive.NewObjectID(), "Promo", day("2026-05-01"), day("2026-05-31"))

	planned := 1000.0
	c.BudgetPlanned = &planned
	c.Name = "Promo v2"
	got, err := store.Replace(ctx, c)
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if got.Name != "Promo v2" || got.BudgetPlanned == nil || *got.BudgetPlanned != 1000 {
		t.Errorf("Replace = %+v", got)
	}

	c.BudgetPlanned = nil
	got, err = store.Replace(ctx, c)
	if err != nil || got.BudgetPlanned != nil {
		t.Errorf("cleared budget = %v, %v", got.BudgetPlanned, err)
	}

	c.ProjectID = primitive.NewObjectID()
	if _, err := store.Replace(ctx, c); err != campaignstore.ErrNotFound {
		t.Errorf("Replace other project: err = %v", err)
	}
	if err := store.Delete(ctx, pid, c.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, pid, c.ID); err != campaignstore.ErrNotFound {
		t.Errorf("Get after delete: err = %v", err)
	}
}
