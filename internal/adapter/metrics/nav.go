package metrics

import "github.com/prometheus/client_golang/prometheus"

// NavMetrics holds Prometheus metrics for nav building and default nav edits.
type NavMetrics struct {
	Builds        *prometheus.CounterVec
	BuildDuration *prometheus.HistogramVec
	DefaultEdits  *prometheus.CounterVec
}

// NewNavMetrics creates and registers nav metrics on the given registry.
func NewNavMetrics(reg prometheus.Registerer) *NavMetrics {
	m := &NavMetrics{
		Builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nav",
			Name:      "builds_total",
			Help:      "Total number of nav builds, by kind and result.",
		}, []string{"kind", "result"}),
		BuildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "nav",
			Name:      "build_duration_seconds",
			Help:      "Duration of nav builds including preference loading, in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}, []string{"kind"}),
		DefaultEdits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nav",
			Name:      "default_edits_total",
			Help:      "Total number of default nav updates and resets, by operation.",
		}, []string{"operation"}),
	}

	reg.MustRegister(m.Builds, m.BuildDuration, m.DefaultEdits)
	return m
}
