// Package metrics exports resilience and pipeline events as Prometheus
// metrics on a dedicated registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/resilience"
)

const namespace = "ats"

// Recorder implements resilience.Observer.
type Recorder struct {
	registry *prometheus.Registry

	cacheRequests      *prometheus.CounterVec
	gateRejections     *prometheus.CounterVec
	breakerState       *prometheus.GaugeVec
	breakerTransitions *prometheus.CounterVec
	retries            *prometheus.CounterVec
	operations         *prometheus.CounterVec
	duration           *prometheus.HistogramVec
}

var _ resilience.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with its own registry, including the Go
// runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Cache lookups by cache and result (hit or miss).",
		}, []string{"cache", "result"}),
		gateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_rejections_total",
			Help:      "Operations rejected because the concurrency ceiling was reached.",
		}, []string{"gate"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Circuit breaker state: 0 closed, 1 open, 2 half-open.",
		}, []string{"breaker"}),
		breakerTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transitions_total",
			Help:      "Circuit breaker state transitions.",
		}, []string{"breaker", "from", "to"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retry attempts by operation.",
		}, []string{"op"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Completed operations by outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Operation latency, including queueing and retries.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"op"}),
	}
	r.registry.MustRegister(
		r.cacheRequests,
		r.gateRejections,
		r.breakerState,
		r.breakerTransitions,
		r.retries,
		r.operations,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry returns the registry the recorder writes to.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// CacheLookup implements resilience.Observer.
func (r *Recorder) CacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheRequests.WithLabelValues(cache, result).Inc()
}

// GateRejected implements resilience.Observer.
func (r *Recorder) GateRejected(gate string) {
	r.gateRejections.WithLabelValues(gate).Inc()
}

// BreakerTransition implements resilience.Observer.
func (r *Recorder) BreakerTransition(breaker string, from, to resilience.State) {
	r.breakerState.WithLabelValues(breaker).Set(float64(to))
	r.breakerTransitions.WithLabelValues(breaker, from.String(), to.String()).Inc()
}

// RetryAttempt implements resilience.Observer.
func (r *Recorder) RetryAttempt(op string, _ int, _ error) {
	r.retries.WithLabelValues(op).Inc()
}

// OperationDone implements resilience.Observer.
func (r *Recorder) OperationDone(op, outcome string, elapsed time.Duration) {
	r.operations.WithLabelValues(op, outcome).Inc()
	r.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

var (
	inFlightDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "in_flight_operations"),
		"Operations currently holding a gate slot.",
		nil, nil,
	)
	cacheEntriesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "cache_entries"),
		"Entries currently stored, including expired ones not yet evicted.",
		[]string{"cache"}, nil,
	)
)

// StatusCollector reads gauges from the service status on each scrape.
type StatusCollector struct {
	status func() pipeline.Status
}

// WatchStatus registers a collector backed by status.
func (r *Recorder) WatchStatus(status func() pipeline.Status) {
	r.registry.MustRegister(&StatusCollector{status: status})
}

// Describe implements prometheus.Collector.
func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- inFlightDesc
	ch <- cacheEntriesDesc
}

// Collect implements prometheus.Collector.
func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.status()
	ch <- prometheus.MustNewConstMetric(inFlightDesc, prometheus.GaugeValue, float64(st.InFlight))
	for name, n := range st.Caches {
		ch <- prometheus.MustNewConstMetric(cacheEntriesDesc, prometheus.GaugeValue, float64(n), name)
	}
}
