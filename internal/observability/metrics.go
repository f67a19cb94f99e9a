package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	toggles       *prometheus.CounterVec
	auditFailures prometheus.Counter
	jobs          *prometheus.CounterVec
}

// NewMetrics builds collectors on a private registry so tests can create many instances.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factdeck_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "factdeck_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "factdeck_http_inflight_requests",
			Help: "In-flight HTTP requests.",
		}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factdeck_moderation_toggles_total",
			Help: "Moderation toggle requests by kind and resulting action.",
		}, []string{"kind", "action"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "factdeck_audit_write_failures_total",
			Help: "History entries that could not be written.",
		}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "factdeck_jobs_total",
			Help: "Background jobs by type and final status.",
		}, []string{"job_type", "status"}),
	}
	reg.MustRegister(
		m.apiRequests, m.apiLatency, m.apiInflight, m.toggles, m.auditFailures, m.jobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) IncToggle(kind, action string) {
	if m != nil {
		m.toggles.WithLabelValues(kind, action).Inc()
	}
}

func (m *Metrics) IncAuditFailure() {
	if m != nil {
		m.auditFailures.Inc()
	}
}

func (m *Metrics) IncJob(jobType, status string) {
	if m != nil {
		m.jobs.WithLabelValues(jobType, status).Inc()
	}
}
