package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const (
	requestsTotalName   = "climate_http_requests_total"
	requestDurationName = "climate_http_request_duration_seconds"
	unmatchedRoute      = "unmatched"
)

// Metrics counts requests per route pattern on a private registry. Routes
// are the mux patterns, never raw paths, so label cardinality stays bounded.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	durations *prometheus.SummaryVec
	handler   http.Handler
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: requestsTotalName,
			Help: "HTTP requests by route pattern, method and status.",
		}, []string{"method", "route", "status"}),
		durations: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Name: requestDurationName,
			Help: "HTTP request latency by route pattern and method.",
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(m.requests, m.durations)
	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
		ErrorHandling: promhttp.ContinueOnError,
	})
	return m
}

func (m *Metrics) Observe(route, method string, status int, d time.Duration) {
	if route == "" {
		route = unmatchedRoute
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.durations.WithLabelValues(method, route).Observe(d.Seconds())
}

// Gather returns the registered families sorted by name.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}
