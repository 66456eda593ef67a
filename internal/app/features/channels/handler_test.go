package channels_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/campaignhub/internal/app/features/channels"
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
	fx      *testutil.Fixtures
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
		router:  channels.Routes(channels.NewHandler(svc, zap.NewNop())),
		project: fx.CreateProject(ctx, owner.ID, "Launch"),
		user:    &auth.SessionUser{ID: owner.ID.Hex(), Name: "Owner"},
		fx:      fx,
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

type listBody struct {
	Channels []models.Channel `json:"channels"`
}

func TestList_SeedsDefault(t *testing.T) {
	e := newEnv(t)
	rec := e.serve(t, "GET", "/", nil, models.RoleViewer)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body listBody
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Channels) != 1 || body.Channels[0].Name != models.DefaultChannelName {
		t.Errorf("channels = %+v", body.Channels)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	e := newEnv(t)

	rec := e.serve(t, "POST", "/", map[string]string{"name": "Social"}, models.RoleViewer)
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer create status = %d, want 403", rec.Code)
	}

	rec = e.serve(t, "POST", "/", map[string]string{"name": "Social", "color": "#FF00AA"}, models.RoleEditor)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var ch models.Channel
	testutil.DecodeJSON(t, rec, &ch)
	if ch.Color != "#ff00aa" || ch.Order != 0 {
		t.Errorf("created = %+v", ch)
	}

	rec = e.serve(t, "POST", "/", map[string]string{"name": "Print", "color": "magenta"}, models.RoleEditor)
	if rec.Code != http.StatusBadRequest || testutil.ErrorCode(t, rec) != "invalid_color" {
		t.Errorf("bad colour: %d %s", rec.Code, rec.Body.String())
	}

	rec = e.serve(t, "PATCH", "/"+ch.ID.Hex(), map[string]string{"name": "Social media"}, models.RoleOwner)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}
	testutil.DecodeJSON(t, rec, &ch)
	if ch.Name != "Social media" || ch.Color != "#ff00aa" {
		t.Errorf("updated = %+v", ch)
	}

	rec = e.serve(t, "DELETE", "/"+ch.ID.Hex(), nil, models.RoleEditor)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = e.serve(t, "DELETE", "/"+ch.ID.Hex(), nil, models.RoleEditor)
	if rec.Code != http.StatusNotFound || testutil.ErrorCode(t, rec) != "channel_not_found" {
		t.Errorf("second delete: %d %s", rec.Code, rec.Body.String())
	}
}

func TestReorder(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := e.fx.CreateChannel(ctx, e.project.ID, "A", 0)
	b := e.fx.CreateChannel(ctx, e.project.ID, "B", 1)

	rec := e.serve(t, "PUT", "/order", map[string][]string{"ids": {b.ID.Hex(), a.ID.Hex()}}, models.RoleEditor)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body listBody
	testutil.DecodeJSON(t, rec, &body)
	if len(body.Channels) != 2 || body.Channels[0].ID != b.ID || body.Channels[1].ID != a.ID {
		t.Errorf("order = %+v", body.Channels)
	}

	rec = e.serve(t, "PUT", "/order", map[string][]string{"ids": {a.ID.Hex()}}, models.RoleEditor)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("partial order status = %d", rec.Code)
	}
	rec = e.serve(t, "PUT", "/order", map[string][]string{"ids": {"bogus", a.ID.Hex()}}, models.RoleEditor)
	if rec.Code != http.StatusNotFound {
		t.Errorf("bogus id status = %d", rec.Code)
	}
}
