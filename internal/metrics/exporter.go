package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh cycle outcomes.
const (
	OutcomeSuccess    = "success"
	OutcomeFetchError = "fetch_error"
	OutcomeParseError = "parse_error"
	OutcomeAbandoned  = "abandoned"
	OutcomePanic      = "panic"
)

// ExporterMetrics describes the exporter's own operation. It is kept apart
// from the grid registry and served on its own path.
type ExporterMetrics struct {
	registry    *prometheus.Registry
	refreshes   *prometheus.CounterVec
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
	published   prometheus.Gauge
}

// NewExporterMetrics registers the exporter's collectors, including the Go
// runtime and process collectors, on a private registry.
func NewExporterMetrics() *ExporterMetrics {
	m := &ExporterMetrics{
		registry: prometheus.NewRegistry(),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "selenium_exporter_refresh_total",
				Help: "Refresh cycles by outcome",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "selenium_exporter_refresh_duration_seconds",
			Help:    "Time spent fetching, parsing and publishing grid status",
			Buckets: prometheus.DefBuckets,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "selenium_exporter_last_success_timestamp_seconds",
			Help: "Unix time of the last published refresh",
		}),
		published: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "selenium_exporter_published_samples",
			Help: "Number of grid samples currently published",
		}),
	}

	m.registry.MustRegister(
		m.refreshes,
		m.duration,
		m.lastSuccess,
		m.published,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, outcome := range []string{OutcomeSuccess, OutcomeFetchError, OutcomeParseError, OutcomeAbandoned, OutcomePanic} {
		m.refreshes.WithLabelValues(outcome)
	}

	return m
}

// ObserveRefresh records the outcome and duration of one refresh cycle.
func (m *ExporterMetrics) ObserveRefresh(outcome string, elapsed time.Duration) {
	m.refreshes.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// ObservePublish records a successful publish of n samples.
func (m *ExporterMetrics) ObservePublish(n int, at time.Time) {
	m.published.Set(float64(n))
	m.lastSuccess.Set(float64(at.Unix()))
}

// Gatherer exposes the underlying registry.
func (m *ExporterMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves the exporter's own metrics.
func (m *ExporterMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
