// Package metrics exposes Prometheus instrumentation for HTTP requests and
// the invitation lifecycle.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Invitation lifecycle events counted by Invitation.
const (
	InvitationCreated      = "created"
	InvitationResent       = "resent"
	InvitationCancelled    = "cancelled"
	InvitationAccepted     = "accepted"
	InvitationExpired      = "expired"
	InvitationEmailFailed  = "email_failed"
	InvitationSweptExpired = "swept"
)

// Metrics holds the registered collectors. A nil *Metrics records nothing.
type Metrics struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	invitations    *prometheus.CounterVec
	rateLimitHits  *prometheus.CounterVec
	gatherer       prometheus.Gatherer
}

// New registers collectors with reg. Collectors already registered (for
// example by a previous New in the same process) are reused.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campaignhub",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "campaignhub",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
		invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campaignhub",
			Subsystem: "invitations",
			Name:      "events_total",
			Help:      "Invitation lifecycle events",
		}, []string{"event"}),
		rateLimitHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campaignhub",
			Subsystem: "auth",
			Name:      "rate_limit_hits_total",
			Help:      "Number of rate-limited sign-in attempts",
		}, []string{"route"}),
		gatherer: gatherer,
	}
	m.requestTotal = registerCounter(reg, m.requestTotal)
	m.requestLatency = registerHistogram(reg, m.requestLatency)
	m.invitations = registerCounter(reg, m.invitations)
	m.rateLimitHits = registerCounter(reg, m.rateLimitHits)
	return m
}

// NewDefault registers with the global Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

func registerCounter(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing
			}
		}
	}
	return c
}

func registerHistogram(reg prometheus.Registerer, h *prometheus.HistogramVec) *prometheus.HistogramVec {
	if err := reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing
			}
		}
	}
	return h
}

// Middleware records request count and latency labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{"method": r.Method, "route": route, "status": strconv.Itoa(status)}
		m.requestTotal.With(labels).Inc()
		m.requestLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Invitation counts an invitation lifecycle event.
func (m *Metrics) Invitation(event string) {
	if m == nil {
		return
	}
	m.invitations.WithLabelValues(event).Inc()
}

// InvitationN counts n occurrences of an invitation lifecycle event.
func (m *Metrics) InvitationN(event string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.invitations.WithLabelValues(event).Add(float64(n))
}

// RateLimited counts a rejected sign-in attempt.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimitHits.WithLabelValues(route).Inc()
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
