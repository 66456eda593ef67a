package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/projects/{projectID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/projects/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/projects/def", nil))

	got := testutil.ToFloat64(m.requestTotal.WithLabelValues("GET", "/projects/{projectID}", "418"))
	if got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
}

func TestInvitationCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, reg)
	m.Invitation(InvitationCreated)
	m.Invitation(InvitationCreated)
	m.Invitation(InvitationAccepted)

	if got := testutil.ToFloat64(m.invitations.WithLabelValues(InvitationCreated)); got != 2 {
		t.Errorf("created = %v, want 2", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "campaignhub_invitations_events_total") {
		t.Error("metrics output missing invitation counter")
	}
}

func TestNew_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := New(reg, reg)
	b := New(reg, reg)
	a.Invitation(InvitationResent)
	if got := testutil.ToFloat64(b.invitations.WithLabelValues(InvitationResent)); got != 1 {
		t.Errorf("second New should share collectors, got %v", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.Invitation(InvitationCreated)
	m.RateLimited("/login")
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}
