// Package metrics exposes needsradar's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spektr-org/needsradar/loader"
	"github.com/spektr-org/needsradar/session"
)

// Namespace prefixes every metric name.
const Namespace = "needsradar"

var _ session.Observer = (*Metrics)(nil)

// Metrics owns a private registry and the application collectors.
type Metrics struct {
	registry *prometheus.Registry

	transitions   *prometheus.CounterVec
	deriveSeconds prometheus.Histogram
	viewRecords   prometheus.Histogram
	httpRequests  *prometheus.CounterVec
	httpSeconds   *prometheus.HistogramVec
}

// New registers all collectors. withRuntime adds Go and process collectors.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: Namespace}),
		)
	}

	m := &Metrics{
		registry: reg,
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Coordinator interactions by source and outcome.",
		}, []string{"source", "applied", "reason"}),
		deriveSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "derive_seconds",
			Help:      "Time to filter and derive one snapshot.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
		viewRecords: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "engine",
			Name:      "view_records",
			Help:      "Records in the filtered view per derivation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.transitions, m.deriveSeconds, m.viewRecords, m.httpRequests, m.httpSeconds)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveTransition counts one coordinator interaction.
func (m *Metrics) ObserveTransition(source string, t session.Transition) {
	m.transitions.WithLabelValues(source, strconv.FormatBool(t.Applied), t.Reason).Inc()
}

// ObserveDerive records one derivation.
func (m *Metrics) ObserveDerive(d time.Duration, records int) {
	m.deriveSeconds.Observe(d.Seconds())
	m.viewRecords.Observe(float64(records))
}

// ObserveHTTP records one served request. route is the chi route pattern.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

// WatchSessions exports the live session count read from fn at scrape time.
func (m *Metrics) WatchSessions(fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: Namespace,
		Subsystem: "session",
		Name:      "live",
		Help:      "Live sessions.",
	}, func() float64 { return float64(fn()) }))
}

// WatchCache exports the dataset cache counters.
func (m *Metrics) WatchCache(c *loader.Cache) {
	tier := func(name, help string, read func(loader.CacheStats) uint64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace:   Namespace,
			Subsystem:   "cache",
			Name:        "lookups_total",
			Help:        help,
			ConstLabels: prometheus.Labels{"result": name},
		}, func() float64 { return float64(read(c.Stats())) })
	}
	m.registry.MustRegister(
		tier("memory_hit", "Dataset cache lookups by result.", func(s loader.CacheStats) uint64 { return s.MemoryHits }),
		tier("store_hit", "Dataset cache lookups by result.", func(s loader.CacheStats) uint64 { return s.StoreHits }),
		tier("miss", "Dataset cache lookups by result.", func(s loader.CacheStats) uint64 { return s.Misses }),
	)
}
