// Package metrics exposes the auth service's Prometheus instruments. It
// implements service.Observer and wraps HTTP handlers with request metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auth"

type Metrics struct {
	registry *prometheus.Registry

	Registrations    *prometheus.CounterVec
	Logins           *prometheus.CounterVec
	MFAVerifications *prometheus.CounterVec
	GuardDecisions   *prometheus.CounterVec

	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the instruments on a private registry, so several instances
// (one per test) never collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Accounts registered, by role.",
		}, []string{"role"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Password logins, by outcome.",
		}, []string{"outcome"}),
		MFAVerifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mfa_verifications_total",
			Help:      "MFA code submissions, by outcome.",
		}, []string{"outcome"}),
		GuardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Access control decisions, by outcome.",
		}, []string{"outcome"}),
		RequestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Registrations,
		m.Logins,
		m.MFAVerifications,
		m.GuardDecisions,
		m.RequestCount,
		m.RequestDuration,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) AccountRegistered(role string)  { m.Registrations.WithLabelValues(role).Inc() }
func (m *Metrics) LoginAttempt(outcome string)    { m.Logins.WithLabelValues(outcome).Inc() }
func (m *Metrics) MFAVerification(outcome string) { m.MFAVerifications.WithLabelValues(outcome).Inc() }
func (m *Metrics) GuardDecision(outcome string)   { m.GuardDecisions.WithLabelValues(outcome).Inc() }

// Middleware records count and latency per route pattern. It must wrap the
// ServeMux directly: the mux sets r.Pattern on the request it receives.
// Requests that matched no route are labelled "unmatched".
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.RequestCount.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
