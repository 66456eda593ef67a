package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/campaignhub/internal/app/system/auth"
	"github.com/dalemusser/campaignhub/internal/app/system/authz"
	"github.com/dalemusser/campaignhub/internal/app/system/permissions"
	"github.com/dalemusser/campaignhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser returns a signed-in user with a fresh id.
func TestUser(name, email string) *auth.SessionUser {
	return &auth.SessionUser{ID: primitive.NewObjectID().Hex(), Name: name, Email: email}
}

// AdminUser returns a signed-in system admin.
func AdminUser() *auth.SessionUser {
	u := TestUser("Test Admin", "admin@test.com")
	u.IsAdmin = true
	return u
}

// WithUser injects u into the request context, as LoadSessionUser does.
func WithUser(r *http.Request, u *auth.SessionUser) *http.Request {
	return auth.WithUser(r, u)
}

// NewAuthenticatedRequest builds a request with a JSON body (when body is
// non-nil) on behalf of u.
func NewAuthenticatedRequest(t *testing.T, method, target string, body any, u *auth.SessionUser) *http.Request {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rdr = strings.NewReader(string(b))
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if u != nil {
		req = auth.WithUser(req, u)
	}
	return req
}

// WithProjectAccess attaches the resolved project access that
// authz.Gate.RequireProject would have loaded for u with role, and sets the
// projectID URL parameter.
func WithProjectAccess(r *http.Request, p models.Project, u *auth.SessionUser, role string) *http.Request {
	userID, _ := primitive.ObjectIDFromHex(u.ID)
	r = WithChiURLParam(r, authz.ProjectParam, p.ID.Hex())
	a := authz.Access{Project: p, UserID: userID, Role: role, Caps: permissions.Resolve(u.IsAdmin, role)}
	return r.WithContext(authz.WithAccess(r.Context(), a))
}

// DecodeJSON decodes the recorder body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// ErrorCode extracts error.code from a JSON error response.
func ErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error response %q: %v", rec.Body.String(), err)
	}
	return body.Error.Code
}
