package settings_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/campaignhub/internal/app/features/settings"
	"github.com/dalemusser/campaignhub/internal/app/services/planning"
	brandingstore "github.com/dalemusser/campaignhub/internal/app/store/branding"
	campaignstore "github.com/dalemusser/campaignhub/internal/app/store/campaigns"
	campaigntypestore "github.com/dalemusser/campaignhub/internal/app/store/campaigntypes"
	channelstore "github.com/dalemusser/campaignhub/internal/app/store/channels"
	phasestore "github.com/dalemusser/campaignhub/internal/app/store/phases"
	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"github.com/dalemusser/campaignhub/internal/testutil"
	"go.uber.org/zap"
)

type env struct {
	router  http.Handler
	project models.Project
	user    *auth.SessionUser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := planning.New(channelstore.New(db), campaigntypestore.New(db), campaignstore.New(db),
		phasestore.New(db), brandingstore.New(db), zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)
	owner := fx.CreateUser(ctx, "owner@example.com", "Owner")
	return &env{
		router:  settings.Routes(settings.NewHandler(svc, zap.NewNop())),
		project: fx.CreateProject(ctx, owner.ID, "Launch"),
		user:    &auth.SessionUser{ID: owner.ID.Hex()},
	}
}

func (e *env) serve(t *testing.T, method, path string, body any, role string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewAuthenticatedRequest(t, method, path, body, e.user)
	req = testutil.WithProjectAccess(req, e.project, e.user, role)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestPhases(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(t, "GET", "/phases", nil, models.RoleViewer)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d %s", rec.Code, rec.Body.String())
	}
	var ps models.PhaseSet
	testutil.DecodeJSON(t, rec, &ps)
	if ps != models.DefaultPhaseSet(e.project.ID) {
		t.Errorf("defaults = %+v", ps)
	}

	ps.Phase1.Name = "Kickoff"
	ps.Phase1.EndMonth, ps.Phase1.EndDay = 2, 29
	body := map[string]models.Phase{"phase1": ps.Phase1, "phase2": ps.Phase2, "phase3": ps.Phase3}

	if rec := e.serve(t, "PUT", "/phases", body, models.RoleViewer); rec.Code != http.StatusForbidden {
		t.Errorf("viewer put status = %d", rec.Code)
	}
	rec = e.serve(t, "PUT", "/phases", body, models.RoleEditor)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: %d %s", rec.Code, rec.Body.String())
	}

	rec = e.serve(t, "GET", "/phases", nil, models.RoleViewer)
	var saved models.PhaseSet
	testutil.DecodeJSON(t, rec, &saved)
	if saved.Phase1.Name != "Kickoff" || saved.Phase1.EndDay != 29 {
		t.Errorf("saved = %+v", saved.Phase1)
	}

	bad := ps.Phase2
	bad.StartMonth = 0
	body["phase2"] = bad
	rec = e.serve(t, "PUT", "/phases", body, models.RoleEditor)
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "invalid_phase_date" {
		t.Errorf("invalid month: %d %s", rec.Code, rec.Body.String())
	}
}

func TestBranding(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(t, "GET", "/branding", nil, models.RoleViewer)
	var b models.Branding
	testutil.DecodeJSON(t, rec, &b)
	if b.PrimaryColor != models.DefaultBranding(e.project.ID).PrimaryColor {
		t.Errorf("default branding = %+v", b)
	}

	body := map[string]any{
		"primary_color":      "#111111",
		"accent_color":       "#222",
		"background_color":   "#FFFFFF",
		"text_color":         "#000000",
		"export_show_phases": false,
		"export_show_logo":   true,
	}
	rec = e.serve(t, "PUT", "/branding", body, models.RoleOwner)
	if rec.Code != http.StatusOK {
		t.Fatalf("put: %d %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &b)
	if b.BackgroundColor != "#ffffff" || b.ExportShowPhase || !b.ExportShowLogo {
		t.Errorf("saved = %+v", b)
	}

	body["text_color"] = "black"
	rec = e.serve(t, "PUT", "/branding", body, models.RoleOwner)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad colour status = %d", rec.Code)
	}
}
