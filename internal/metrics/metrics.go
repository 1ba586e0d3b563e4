// Package metrics exposes Prometheus counters and gauges for the server.
//
// Each Metrics value owns its registry, so tests can build one without
// colliding with the default global registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "simmer"

// Metrics holds the registry and the collectors recorded by handlers and services.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AuthAttempts        *prometheus.CounterVec
	RecipeEvents        *prometheus.CounterVec
	Reactions           *prometheus.CounterVec
	CommentsAdded       prometheus.Counter
	TagsCreated         prometheus.Counter
	SearchQueries       prometheus.Counter
}

// New creates a Metrics with Go runtime and process collectors registered.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Counter of HTTP requests by route and status.",
			}, []string{"method", "route", "code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "http",
				Name:      "request_seconds",
				Help:      "Bucketed histogram of HTTP request processing time.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
			}, []string{"method", "route"}),

		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "auth",
				Name:      "attempts_total",
				Help:      "Counter of signup, login and refresh attempts by outcome.",
			}, []string{"action", "outcome"}),

		RecipeEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "recipes",
				Name:      "events_total",
				Help:      "Counter of recipe creates, updates, publishes and deletes.",
			}, []string{"event"}),

		Reactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "recipes",
				Name:      "reactions_total",
				Help:      "Counter of like and favorite toggles.",
			}, []string{"kind", "state"}),

		CommentsAdded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "comments",
				Name:      "added_total",
				Help:      "Counter of comments added.",
			}),

		TagsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "tags",
				Name:      "created_total",
				Help:      "Counter of tags created on first use.",
			}),

		SearchQueries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "search",
				Name:      "queries_total",
				Help:      "Counter of full-text search queries.",
			}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPRequestDuration,
		m.AuthAttempts,
		m.RecipeEvents,
		m.Reactions,
		m.CommentsAdded,
		m.TagsCreated,
		m.SearchQueries,
	)

	return m
}

// RegisterGauge registers a gauge whose value is read from fn at scrape time.
func (m *Metrics) RegisterGauge(subsystem, name, help string, fn func() float64) {
	m.Registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, fn))
}

// RegisterCounter registers a counter whose running total is read from fn at scrape time.
func (m *Metrics) RegisterCounter(subsystem, name, help string, fn func() float64) {
	m.Registry.MustRegister(prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		}, fn))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// Middleware records request counts and latency, labelled by chi route pattern
// so path parameters do not explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
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

		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Outcome labels an operation result for AuthAttempts.
func Outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// The recorders below are safe to call on a nil *Metrics, so services
// built without metrics (tests, the seed command) need no guards.

// AuthAttempt counts a signup, login or refresh attempt.
func (m *Metrics) AuthAttempt(action string, err error) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(action, Outcome(err)).Inc()
}

// RecipeEvent counts a recipe lifecycle event.
func (m *Metrics) RecipeEvent(event string) {
	if m == nil {
		return
	}
	m.RecipeEvents.WithLabelValues(event).Inc()
}

// Reaction counts a like or favorite toggle.
func (m *Metrics) Reaction(kind string, on bool) {
	if m == nil {
		return
	}
	state := "off"
	if on {
		state = "on"
	}
	m.Reactions.WithLabelValues(kind, state).Inc()
}

// CommentAdded counts a new comment.
func (m *Metrics) CommentAdded() {
	if m == nil {
		return
	}
	m.CommentsAdded.Inc()
}

// TagCreated counts a newly created tag.
func (m *Metrics) TagCreated() {
	if m == nil {
		return
	}
	m.TagsCreated.Inc()
}

// SearchQuery counts a full-text search.
func (m *Metrics) SearchQuery() {
	if m == nil {
		return
	}
	m.SearchQueries.Inc()
}
