// Package metrics exposes Prometheus collectors for the dashboard backend.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	telemetryTotal    *prometheus.CounterVec
	telemetryPoints   prometheus.Histogram
	rollupDuration    *prometheus.HistogramVec
	exportsTotal      *prometheus.CounterVec
	artifactsSwept    prometheus.Counter
}

// New creates collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdc_http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		telemetryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_telemetry_generated_total",
			Help: "Telemetry generations by device.",
		}, []string{"device"}),
		telemetryPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pdc_telemetry_points",
			Help:    "Hourly points per generated channel.",
			Buckets: prometheus.ExponentialBuckets(24, 2, 10),
		}),
		rollupDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pdc_rollup_duration_seconds",
			Help:    "Monthly rollup duration by engine.",
			Buckets: prometheus.DefBuckets,
		}, []string{"engine"}),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pdc_exports_total",
			Help: "Exports rendered by kind.",
		}, []string{"kind"}),
		artifactsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pdc_artifacts_swept_total",
			Help: "Expired export artifacts removed.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.telemetryTotal,
		m.telemetryPoints,
		m.rollupDuration,
		m.exportsTotal,
		m.artifactsSwept,
	)
	return m
}

// Handler serves the registry in the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records request count and latency per route template.
// errorStatus is the status the error handler will write for err. Errors
// that carry no status become 500.
func errorStatus(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = errorStatus(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// TelemetryGenerated records one generation of n points per channel.
func (m *Metrics) TelemetryGenerated(device string, n int) {
	if m == nil {
		return
	}
	m.telemetryTotal.WithLabelValues(device).Inc()
	m.telemetryPoints.Observe(float64(n))
}

// RollupDone records the duration of one rollup.
func (m *Metrics) RollupDone(engine string, d time.Duration) {
	if m == nil {
		return
	}
	m.rollupDuration.WithLabelValues(engine).Observe(d.Seconds())
}

// ExportRendered counts one rendered export.
func (m *Metrics) ExportRendered(kind string) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(kind).Inc()
}

// ArtifactsSwept counts artifacts removed by the TTL sweep.
func (m *Metrics) ArtifactsSwept(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.artifactsSwept.Add(float64(n))
}
