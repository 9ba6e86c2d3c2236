package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the engine's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "engine").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for pass duration in seconds.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the engine's Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the pass-duration histogram buckets.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "weft",
		Subsystem: "engine",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the engine's Prometheus metrics, recorded once per pass.
//
// Metrics collected:
//   - weft_engine_passes_total: Counter of completed scheduler passes
//   - weft_engine_pass_duration_seconds: Histogram of pass duration
//   - weft_engine_presenter_runs_total: Counter of presenter executions
//   - weft_engine_memo_hits_total: Counter of skipped re-renders
//   - weft_engine_nodes_built_total: Counter of display nodes created
//   - weft_engine_nodes_razed_total: Counter of display nodes despawned
//   - weft_engine_list_moves_total: Counter of keyed-list item moves
//   - weft_engine_cycle_errors_total: Counter of dropped render chains
//   - weft_engine_diagnostics_total: Counter of structural diagnostics
type Metrics struct {
	passes        prometheus.Counter
	passDuration  prometheus.Histogram
	presenterRuns prometheus.Counter
	memoHits      prometheus.Counter
	nodesBuilt    prometheus.Counter
	nodesRazed    prometheus.Counter
	listMoves     prometheus.Counter
	cycleErrors   prometheus.Counter
	diagnostics   prometheus.Counter
}

// NewMetrics creates and registers the engine metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		passes: counter("passes_total", "Total number of completed scheduler passes"),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Scheduler pass duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		presenterRuns: counter("presenter_runs_total", "Total number of presenter executions"),
		memoHits:      counter("memo_hits_total", "Total number of re-renders skipped by memoization"),
		nodesBuilt:    counter("nodes_built_total", "Total number of display nodes created"),
		nodesRazed:    counter("nodes_razed_total", "Total number of display nodes despawned"),
		listMoves:     counter("list_moves_total", "Total number of keyed-list item moves"),
		cycleErrors:   counter("cycle_errors_total", "Total number of render chains dropped for cycling"),
		diagnostics:   counter("diagnostics_total", "Total number of structural diagnostics emitted"),
	}
}

// observePass records one pass. Safe on a nil receiver so the engine can
// run without metrics attached.
func (m *Metrics) observePass(s PassStats) {
	if m == nil {
		return
	}
	m.passes.Inc()
	m.passDuration.Observe(s.Duration.Seconds())
	m.presenterRuns.Add(float64(s.PresenterRuns))
	m.memoHits.Add(float64(s.MemoHits))
	m.nodesBuilt.Add(float64(s.NodesBuilt))
	m.nodesRazed.Add(float64(s.NodesRazed))
	m.listMoves.Add(float64(s.ListMoves))
	m.cycleErrors.Add(float64(s.CycleErrors))
	m.diagnostics.Add(float64(s.Diagnostics))
}
