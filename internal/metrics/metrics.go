// Package metrics holds the Prometheus collectors for the forum API and the
// HTTP middleware that feeds them.
//
// Metrics implements auth.VerificationObserver and service.LikeObserver, so
// the auth and service packages report outcomes without importing Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	TokenVerificationsTotal *prometheus.CounterVec

	// Business metrics
	LikeOperationsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on registry.
// Pass prometheus.NewRegistry() so tests never collide on the global one.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forum_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TokenVerificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_token_verifications_total",
				Help: "Bearer token verification attempts by outcome",
			},
			[]string{"outcome"},
		),
		LikeOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forum_like_operations_total",
				Help: "Like and unlike operations by outcome",
			},
			[]string{"op", "outcome"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.TokenVerificationsTotal,
		m.LikeOperationsTotal,
	)
	return m
}

// TokenVerified counts one authentication attempt.
func (m *Metrics) TokenVerified(outcome string) {
	m.TokenVerificationsTotal.WithLabelValues(outcome).Inc()
}

// LikeOperation counts one AddLike or RemoveLike call.
func (m *Metrics) LikeOperation(op, outcome string) {
	m.LikeOperationsTotal.WithLabelValues(op, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per chi route pattern.
//
// The route label is the pattern ("/posts/{postID}"), never the raw path, so
// IDs in URLs cannot blow up label cardinality. Unmatched requests are
// labelled "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := RoutePattern(r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RoutePattern returns the chi pattern that matched r, or "unmatched".
// It is only meaningful after the router has run.
func RoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
