package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config controls metric namespacing and whether collection is active.
type Config struct {
	// Enabled gates every Record*/Set* call; when false they're no-ops.
	Enabled bool

	// Namespace and Subsystem prefix every metric name
	// ("<namespace>_<subsystem>_<metric>").
	Namespace string
	Subsystem string

	// RequestDurationBuckets overrides the HTTP request-latency histogram
	// buckets (seconds). Defaults to buckets tuned for CLI-backed requests
	// (hundreds of ms to tens of seconds) when empty.
	RequestDurationBuckets []float64
}

// Collector is the orchestrator for every Prometheus metric this gateway
// exposes: per-model health-tracker counters, job-manager status gauges,
// and HTTP request metrics for the wire-protocol endpoints.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	health  *HealthMetrics
	jobs    *JobMetrics
	request *RequestMetrics
}

// NewCollector creates a Collector bound to registry. A nil registry gets a
// fresh prometheus.Registry (use this for /metrics; the default global
// registry pulls in Go runtime metrics callers may not want).
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "cligate"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		cfg.RequestDurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0}
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		health:   newHealthMetrics(cfg, registry),
		jobs:     newJobMetrics(cfg, registry),
		request:  newRequestMetrics(cfg, registry),
	}
}

// RecordAttempt mirrors one pkg/health.Tracker.RecordAttempt call.
func (c *Collector) RecordAttempt(model string) {
	if !c.config.Enabled {
		return
	}
	c.health.attempts.WithLabelValues(model).Inc()
}

// RecordSuccess mirrors one pkg/health.Tracker.RecordSuccess call.
func (c *Collector) RecordSuccess(model string) {
	if !c.config.Enabled {
		return
	}
	c.health.successes.WithLabelValues(model).Inc()
}

// RecordFailure mirrors one pkg/health.Tracker.RecordFailure call.
func (c *Collector) RecordFailure(model, kind string) {
	if !c.config.Enabled {
		return
	}
	c.health.failures.WithLabelValues(model, kind).Inc()
}

// RecordFallback mirrors one pkg/health.Tracker.RecordFallback call.
func (c *Collector) RecordFallback(fromModel, toModel string) {
	if !c.config.Enabled {
		return
	}
	c.health.fallbacks.WithLabelValues(fromModel, toModel).Inc()
}

// SetModelState mirrors a model's current suggested health state as a
// gauge (1 for the active state, 0 otherwise) so dashboards can alert on
// transitions into "rate_limited" or "cooldown".
func (c *Collector) SetModelState(model, state string) {
	if !c.config.Enabled {
		return
	}
	for _, s := range []string{"healthy", "degraded", "rate_limited", "cooldown"} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		c.health.state.WithLabelValues(model, s).Set(v)
	}
}

// SetJobCounts mirrors pkg/jobmanager.Manager's current job table: one
// gauge entry per status, overwritten wholesale on every call (statuses
// absent from counts are dropped). The job manager calls it after every
// job start, job finish and prune sweep.
func (c *Collector) SetJobCounts(counts map[string]int) {
	if !c.config.Enabled {
		return
	}
	c.jobs.byStatus.Reset()
	for status, n := range counts {
		c.jobs.byStatus.WithLabelValues(status).Set(float64(n))
	}
}

// RecordRequest records one completed wire-protocol HTTP request.
func (c *Collector) RecordRequest(route, method, status string, durationSeconds float64) {
	if !c.config.Enabled {
		return
	}
	c.request.total.WithLabelValues(route, method, status).Inc()
	c.request.duration.WithLabelValues(route, method).Observe(durationSeconds)
}

// Registry returns the underlying Prometheus registry, e.g. to mount via
// promhttp.HandlerFor.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// HealthMetrics holds the model-health-tracker mirror counters.
type HealthMetrics struct {
	attempts  *prometheus.CounterVec
	successes *prometheus.CounterVec
	failures  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	state     *prometheus.GaugeVec
}

func newHealthMetrics(cfg Config, registry *prometheus.Registry) *HealthMetrics {
	hm := &HealthMetrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "model_attempts_total", Help: "Total dispatch attempts per model.",
		}, []string{"model"}),
		successes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "model_successes_total", Help: "Total successful dispatch attempts per model.",
		}, []string{"model"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "model_failures_total", Help: "Total dispatch failures per model, labeled by classified failure kind.",
		}, []string{"model", "kind"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "model_fallbacks_total", Help: "Total fallback-chain transitions between models.",
		}, []string{"from_model", "to_model"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "model_state", Help: "1 for a model's current suggested health state, 0 otherwise.",
		}, []string{"model", "state"}),
	}
	registry.MustRegister(hm.attempts, hm.successes, hm.failures, hm.fallbacks, hm.state)
	return hm
}

// JobMetrics holds the background-job-manager mirror gauges.
type JobMetrics struct {
	byStatus *prometheus.GaugeVec
}

func newJobMetrics(cfg Config, registry *prometheus.Registry) *JobMetrics {
	jm := &JobMetrics{
		byStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "jobs_current", Help: "Current number of background jobs in each status.",
		}, []string{"status"}),
	}
	registry.MustRegister(jm.byStatus)
	return jm
}

// RequestMetrics holds HTTP-layer request counters for the wire-protocol
// endpoints.
type RequestMetrics struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newRequestMetrics(cfg Config, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "http_requests_total", Help: "Total HTTP requests by route, method, and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace, Subsystem: cfg.Subsystem,
			Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.",
			Buckets: cfg.RequestDurationBuckets,
		}, []string{"route", "method"}),
	}
	registry.MustRegister(rm.total, rm.duration)
	return rm
}
