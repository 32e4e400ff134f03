// Package metrics exposes Prometheus instruments for backend calls, guard decisions,
// visitor sessions and logins.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	obserrors "github.com/minboot/ats-web/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// Collector records application metrics. A nil *Collector is a valid no-op.
type Collector struct {
	backendRequests *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	guardDecisions  *prometheus.CounterVec
	logins          *prometheus.CounterVec
	visitors        prometheus.Gauge
	staleDiscarded  prometheus.Counter
}

// NewCollector creates a Collector and registers it with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atsweb_backend_requests_total",
			Help: "Backend API calls by endpoint and outcome.",
		}, []string{"endpoint", "method", "status", "error_class"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "atsweb_backend_request_seconds",
			Help:    "Backend API call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		guardDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atsweb_guard_decisions_total",
			Help: "Route guard outcomes.",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "atsweb_logins_total",
			Help: "Login attempts by result.",
		}, []string{"result"}),
		visitors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atsweb_visitors_active",
			Help: "Visitor sessions currently held in memory.",
		}),
		staleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "atsweb_search_stale_discarded_total",
			Help: "Search responses dropped because a newer search superseded them.",
		}),
	}

	reg.MustRegister(
		c.backendRequests,
		c.backendLatency,
		c.guardDecisions,
		c.logins,
		c.visitors,
		c.staleDiscarded,
	)
	return c
}

// ObserveBackendRequest records one backend call. status is 0 when no response arrived.
func (c *Collector) ObserveBackendRequest(endpoint, method string, status int, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.backendRequests.WithLabelValues(endpoint, method, strconv.Itoa(status), obserrors.Classify(err)).Inc()
	c.backendLatency.WithLabelValues(endpoint).Observe(d.Seconds())
}

// RecordGuardDecision counts a route guard outcome.
func (c *Collector) RecordGuardDecision(outcome string) {
	if c == nil {
		return
	}
	c.guardDecisions.WithLabelValues(outcome).Inc()
}

// RecordLogin counts a login attempt.
func (c *Collector) RecordLogin(result string) {
	if c == nil {
		return
	}
	c.logins.WithLabelValues(result).Inc()
}

// SetVisitors sets the number of in-memory visitor sessions.
func (c *Collector) SetVisitors(n int) {
	if c == nil {
		return
	}
	c.visitors.Set(float64(n))
}

// RecordStaleDiscarded counts a superseded search response.
func (c *Collector) RecordStaleDiscarded() {
	if c == nil {
		return
	}
	c.staleDiscarded.Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
