package dev

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the dev loop metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "routegen").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the dev loop metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "routegen",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus metrics for the dev loop.
//
// Metrics collected:
//   - routegen_passes_total: Counter of generation passes by status
//   - routegen_pass_duration_seconds: Histogram of pass duration
//   - routegen_routes: Gauge of matcher groups in the last good table
//   - routegen_reload_clients: Gauge of connected reload clients
type Metrics struct {
	passesTotal   *prometheus.CounterVec
	passDuration  prometheus.Histogram
	routes        prometheus.Gauge
	reloadClients prometheus.Gauge
}

// NewMetrics creates and registers the dev loop metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		passesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "passes_total",
			Help:        "Total number of generation passes by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "pass_duration_seconds",
			Help:        "Generation pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		routes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "routes",
			Help:        "Number of routes in the last successful table",
			ConstLabels: config.ConstLabels,
		}),

		reloadClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "reload_clients",
			Help:        "Number of connected reload clients",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// RecordPass records a finished generation pass.
func (m *Metrics) RecordPass(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.passesTotal.WithLabelValues(status).Inc()
	m.passDuration.Observe(duration.Seconds())
}

// RecordRoutes records the route count of the last successful table.
func (m *Metrics) RecordRoutes(n int) {
	if m == nil {
		return
	}
	m.routes.Set(float64(n))
}

// RecordReloadClients records the number of connected reload clients.
func (m *Metrics) RecordReloadClients(n int) {
	if m == nil {
		return
	}
	m.reloadClients.Set(float64(n))
}
