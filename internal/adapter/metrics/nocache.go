package metrics

import "github.com/prometheus/client_golang/prometheus"

// NocacheMetrics holds Prometheus metrics for nocache session storage.
type NocacheMetrics struct {
	SessionReads  *prometheus.CounterVec
	SessionWrites *prometheus.CounterVec
	RegionsServed prometheus.Counter
	StoredBytes   prometheus.Histogram
}

// NewNocacheMetrics creates and registers nocache metrics on the given registry.
func NewNocacheMetrics(reg prometheus.Registerer) *NocacheMetrics {
	m := &NocacheMetrics{
		SessionReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nocache",
			Name:      "session_reads_total",
			Help:      "Total number of nocache session reads, by result (hit, miss, error).",
		}, []string{"result"}),
		SessionWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nocache",
			Name:      "session_writes_total",
			Help:      "Total number of nocache session writes, by result.",
		}, []string{"result"}),
		RegionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nocache",
			Name:      "regions_served_total",
			Help:      "Total number of nocache regions rendered for clients.",
		}),
		StoredBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "nocache",
			Name:      "session_size_bytes",
			Help:      "Size of written nocache sessions in bytes.",
			Buckets:   prometheus.ExponentialBuckets(128, 4, 8),
		}),
	}

	reg.MustRegister(m.SessionReads, m.SessionWrites, m.RegionsServed, m.StoredBytes)
	return m
}
