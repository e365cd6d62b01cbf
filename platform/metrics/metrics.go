// Package metrics holds the Prometheus collectors of the service on a
// dedicated registry, so /metrics only shows what this service exports.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recruit"

// Cache lookup outcomes.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Registry owns every collector of the service.
type Registry struct {
	registry *prometheus.Registry

	unmappedStatus      *prometheus.CounterVec
	firstContactClamped prometheus.Counter
	aggregationSeconds  prometheus.Histogram
	reportCache         *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	importedRows        *prometheus.CounterVec
}

// New creates a registry with the Go runtime and process collectors attached.
func New() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Registry{
		registry: reg,
		unmappedStatus: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "funnel_unmapped_status_total",
			Help:      "Rows whose raw status is not in the taxonomy, by raw status.",
		}, []string{"status"}),
		firstContactClamped: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "funnel_first_contact_clamped_total",
			Help:      "Consultant funnels whose first-contact count was capped at assigned.",
		}),
		aggregationSeconds: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "funnel_aggregation_seconds",
			Help:      "Time spent normalising and aggregating one month.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		reportCache: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "funnel_report_cache_total",
			Help:      "Report cache lookups by result.",
		}, []string{"result"}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		importedRows: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheet_import_rows_total",
			Help:      "Staging rows written by sheet imports, by month.",
		}, []string{"month"}),
	}
}

// UnmappedStatus counts rows with an unknown raw status.
func (r *Registry) UnmappedStatus(status string, rows int) {
	if r == nil {
		return
	}
	r.unmappedStatus.WithLabelValues(status).Add(float64(rows))
}

// FirstContactClamped counts one capped consultant funnel.
func (r *Registry) FirstContactClamped() {
	if r == nil {
		return
	}
	r.firstContactClamped.Inc()
}

// ObserveAggregation records how long one aggregation took.
func (r *Registry) ObserveAggregation(d time.Duration) {
	if r == nil {
		return
	}
	r.aggregationSeconds.Observe(d.Seconds())
}

// ReportCache counts a cache lookup outcome.
func (r *Registry) ReportCache(result string) {
	if r == nil {
		return
	}
	r.reportCache.WithLabelValues(result).Inc()
}

// ImportedRows counts staging rows written for a month.
func (r *Registry) ImportedRows(month string, rows int) {
	if r == nil {
		return
	}
	r.importedRows.WithLabelValues(month).Add(float64(rows))
}

// Middleware records request counts and latency per route template.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the registry to tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
