// Package metrics provides Prometheus metrics for the CMS core.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics. A nil *Collector records nothing,
// so services can run without metrics.
type Collector struct {
	registry *prometheus.Registry

	// Structured data
	GraphBuilds       *prometheus.CounterVec
	GraphDuration     prometheus.Histogram
	GraphCacheHits    prometheus.Counter
	GraphCacheMisses  prometheus.Counter
	GraphCacheEntries prometheus.Gauge

	// Authoring
	ValidationFailures *prometheus.CounterVec
	Publishes          *prometheus.CounterVec
	ToolCalls          *prometheus.CounterVec

	// Background jobs
	ScheduledRuns   prometheus.Counter
	FixtureImports  *prometheus.CounterVec
	ArchiveFailures prometheus.Counter
}

// New creates a collector registered on its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(reg)
}

// NewWithRegistry creates a collector on reg. Tests pass a fresh registry.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		GraphBuilds: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "structured_data_builds_total",
				Help:      "Total number of schema.org graphs synthesized",
			},
			[]string{"page_type"},
		),
		GraphDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ventanita",
				Name:      "structured_data_duration_seconds",
				Help:      "Time spent synthesizing and encoding a graph",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
			},
		),
		GraphCacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "structured_data_cache_hits_total",
				Help:      "Graph requests served from cache",
			},
		),
		GraphCacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "structured_data_cache_misses_total",
				Help:      "Graph requests that required synthesis",
			},
		),
		GraphCacheEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ventanita",
				Name:      "structured_data_cache_entries",
				Help:      "Graphs currently cached",
			},
		),

		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "stream_validation_failures_total",
				Help:      "Stream submissions rejected by validation",
			},
			[]string{"stream"},
		),
		Publishes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "page_publishes_total",
				Help:      "Pages published, by trigger",
			},
			[]string{"trigger"},
		),
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "mcp_tool_calls_total",
				Help:      "MCP tool invocations",
			},
			[]string{"tool", "status"},
		),

		ScheduledRuns: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "scheduled_publish_runs_total",
				Help:      "Runs of the scheduled publishing job",
			},
		),
		FixtureImports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "fixture_imports_total",
				Help:      "Fixture files imported",
			},
			[]string{"status"},
		),
		ArchiveFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ventanita",
				Name:      "archive_failures_total",
				Help:      "Structured data documents that could not be archived",
			},
		),
	}
}

// Registry returns the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ── recording helpers, nil-safe ─────────────────────────────

func (c *Collector) GraphBuilt(pageType string, d time.Duration) {
	if c == nil {
		return
	}
	c.GraphBuilds.WithLabelValues(pageType).Inc()
	c.GraphDuration.Observe(d.Seconds())
}

func (c *Collector) CacheLookup(hit bool, entries int) {
	if c == nil {
		return
	}
	if hit {
		c.GraphCacheHits.Inc()
	} else {
		c.GraphCacheMisses.Inc()
	}
	c.GraphCacheEntries.Set(float64(entries))
}

func (c *Collector) ValidationFailed(stream string) {
	if c == nil {
		return
	}
	c.ValidationFailures.WithLabelValues(stream).Inc()
}

func (c *Collector) Published(trigger string) {
	if c == nil {
		return
	}
	c.Publishes.WithLabelValues(trigger).Inc()
}

func (c *Collector) ToolCalled(tool string, failed bool) {
	if c == nil {
		return
	}
	status := "ok"
	if failed {
		status = "error"
	}
	c.ToolCalls.WithLabelValues(tool, status).Inc()
}

func (c *Collector) ScheduledRun() {
	if c == nil {
		return
	}
	c.ScheduledRuns.Inc()
}

func (c *Collector) FixtureImported(ok bool) {
	if c == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "error"
	}
	c.FixtureImports.WithLabelValues(status).Inc()
}

func (c *Collector) ArchiveFailed() {
	if c == nil {
		return
	}
	c.ArchiveFailures.Inc()
}
