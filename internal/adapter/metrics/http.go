package metrics

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics tracks requests per surface (control panel, nocache endpoints,
// anything else) and route.
type HTTPMetrics struct {
	Requests      *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
	ResponseBytes *prometheus.HistogramVec
	InFlight      *prometheus.GaugeVec

	cpPrefix string
}

// NewHTTPMetrics registers the HTTP metrics. Routes below cpPrefix (e.g.
// "/cp") are labelled as the cp surface.
func NewHTTPMetrics(reg prometheus.Registerer, cpPrefix string) *HTTPMetrics {
	labels := []string{"surface", "method", "route", "code"}
	m := &HTTPMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by surface, route and status code.",
		}, labels),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving HTTP requests.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, labels),
		ResponseBytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Size of HTTP response bodies.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 7),
		}, []string{"surface", "route"}),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		}, []string{"surface"}),
		cpPrefix: "/" + strings.Trim(cpPrefix, "/"),
	}

	reg.MustRegister(m.Requests, m.Latency, m.ResponseBytes, m.InFlight)
	return m
}

// Surface classifies a matched route.
func (m *HTTPMetrics) Surface(route string) string {
	switch {
	case route == m.cpPrefix || strings.HasPrefix(route, m.cpPrefix+"/"):
		return "cp"
	case strings.HasPrefix(route, "/!/nocache"):
		return "nocache"
	default:
		return "other"
	}
}

// Middleware records every request except probes and scrapes. Requests that
// matched no route share the "unmatched" route label.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if route == "/metrics" || strings.HasPrefix(route, "/health/") {
				return next(c)
			}
			if route == "" {
				route = "unmatched"
			}
			surface := m.Surface(route)

			inFlight := m.InFlight.WithLabelValues(surface)
			inFlight.Inc()
			defer inFlight.Dec()

			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(seconds float64) {
				res := c.Response()
				code := strconv.Itoa(res.Status)
				method := c.Request().Method
				m.Requests.WithLabelValues(surface, method, route, code).Inc()
				m.Latency.WithLabelValues(surface, method, route, code).Observe(seconds)
				m.ResponseBytes.WithLabelValues(surface, route).Observe(float64(res.Size))
			}))
			defer timer.ObserveDuration()

			return next(c)
		}
	}
}
