// Package metrics exposes Prometheus collectors for credential operations and HTTP traffic.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"passgate/config"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "passgate"

// Credential operations.
const (
	OperationSignup = "signup"
	OperationLogin  = "login"
	OperationVerify = "verify"
)

// Outcomes of a credential operation.
const (
	OutcomeSuccess           = "success"
	OutcomeDuplicate         = "duplicate"
	OutcomeInvalidCredential = "invalid_credentials"
	OutcomeInvalidInput      = "invalid_input"
	OutcomeTokenMissing      = "token_missing"
	OutcomeTokenInvalid      = "token_invalid"
	OutcomeTokenExpired      = "token_expired"
	OutcomeError             = "error"
)

// Metrics owns a dedicated registry so that several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	credentialOps *prometheus.CounterVec
	hashDuration  *prometheus.HistogramVec
	httpInFlight  prometheus.Gauge
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec

	enabled bool
	path    string
}

// New builds the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New(cfg *config.Config) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		credentialOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_operations_total",
			Help:      "Credential operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		hashDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "password_hash_duration_seconds",
			Help:      "Time spent hashing or comparing passwords.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		path: "/metrics",
	}

	if cfg != nil && cfg.Metrics != nil {
		m.enabled = cfg.Metrics.Enabled
		if cfg.Metrics.Path != "" {
			m.path = cfg.Metrics.Path
		}
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.credentialOps,
		m.hashDuration,
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

// Enabled reports whether the scrape endpoint should be exposed.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Path is the route the scrape endpoint is mounted on.
func (m *Metrics) Path() string {
	return m.path
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CredentialOperations exposes the credential outcome counter.
func (m *Metrics) CredentialOperations() *prometheus.CounterVec {
	return m.credentialOps
}

// RecordCredentialOperation counts one signup, login or verify outcome.
func (m *Metrics) RecordCredentialOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.credentialOps.WithLabelValues(operation, outcome).Inc()
}

// ObservePasswordHash records how long a hash or compare took.
func (m *Metrics) ObservePasswordHash(operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.hashDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func (m *Metrics) TrackInFlight() func() {
	if m == nil {
		return func() {}
	}
	m.httpInFlight.Inc()

	return m.httpInFlight.Dec
}

// ObserveHTTPRequest records a finished request against its route template.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, route, code).Inc()
	m.httpDuration.WithLabelValues(method, route, code).Observe(elapsed.Seconds())
}

// RegisterDBStats exports connection pool statistics for the given database handle.
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	if m == nil || db == nil {
		return nil
	}
	if err := m.registry.Register(collectors.NewDBStatsCollector(db, dbName)); err != nil {
		return errors.Wrap(err, "failed to register database stats collector")
	}

	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
