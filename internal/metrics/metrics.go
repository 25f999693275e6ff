// Package metrics exposes harmonization and API metrics to Prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agenthands/fuxi/internal/core/model"
)

// Registry holds every collector on its own prometheus.Registry so tests and
// multiple servers never collide on the global one.
type Registry struct {
	registry *prometheus.Registry

	RunsTotal          *prometheus.CounterVec
	RunDuration        *prometheus.HistogramVec
	Systems            *prometheus.GaugeVec
	Integrations       prometheus.Gauge
	DroppedReferences  prometheus.Counter
	ConflictsTotal     prometheus.Counter
	SourceCoverage     *prometheus.GaugeVec
	SuggestionsTotal   *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	f := promauto.With(r.registry)

	r.RunsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "fuxi_harmonization_runs_total",
		Help: "Harmonization runs by mode and outcome",
	}, []string{"mode", "status"})

	r.RunDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fuxi_harmonization_duration_seconds",
		Help:    "Harmonization run duration in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	}, []string{"mode"})

	r.Systems = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fuxi_graph_systems",
		Help: "Systems in the last harmonized graph by state",
	}, []string{"state"})

	r.Integrations = f.NewGauge(prometheus.GaugeOpts{
		Name: "fuxi_graph_integrations",
		Help: "Integrations in the last harmonized graph",
	})

	r.DroppedReferences = f.NewCounter(prometheus.CounterOpts{
		Name: "fuxi_dropped_references_total",
		Help: "Dependency references that matched no system",
	})

	r.ConflictsTotal = f.NewCounter(prometheus.CounterOpts{
		Name: "fuxi_domain_conflicts_total",
		Help: "Domain disagreements between sources",
	})

	r.SourceCoverage = f.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fuxi_source_header_coverage_ratio",
		Help: "Fraction of field concerns covered by a source's headers",
	}, []string{"source"})

	r.SuggestionsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "fuxi_connection_suggestions_total",
		Help: "Connection suggestions returned by kind",
	}, []string{"kind"})

	r.HTTPRequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Name: "fuxi_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	r.HTTPRequestLatency = f.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fuxi_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the underlying registry for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordRun records one harmonization run. Graph gauges are only updated on
// success.
func (r *Registry) RecordRun(mode model.Mode, duration time.Duration, stats model.GraphStats, dropped, conflicts int, err error) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.RunsTotal.WithLabelValues(string(mode), status).Inc()
	r.RunDuration.WithLabelValues(string(mode)).Observe(duration.Seconds())
	r.DroppedReferences.Add(float64(dropped))
	r.ConflictsTotal.Add(float64(conflicts))

	if err != nil {
		return
	}
	r.Systems.WithLabelValues(string(model.StateAdded)).Set(float64(stats.Added))
	r.Systems.WithLabelValues(string(model.StateRemoved)).Set(float64(stats.Removed))
	r.Systems.WithLabelValues(string(model.StateModified)).Set(float64(stats.Modified))
	r.Systems.WithLabelValues(string(model.StateUnchanged)).Set(float64(stats.Unchanged))
	r.Integrations.Set(float64(stats.Integrations))
}

func (r *Registry) RecordCoverage(source string, ratio float64) {
	if r == nil {
		return
	}
	r.SourceCoverage.WithLabelValues(source).Set(ratio)
}

func (r *Registry) RecordSuggestions(kind string, n int) {
	if r == nil {
		return
	}
	r.SuggestionsTotal.WithLabelValues(kind).Add(float64(n))
}

func (r *Registry) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	r.HTTPRequestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}
