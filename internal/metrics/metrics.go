// Package metrics defines the Prometheus collectors exported by todayd.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TodoMutationsTotal  *prometheus.CounterVec
	LoginsTotal         *prometheus.CounterVec
}

// New creates the collectors in a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "today_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "today_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TodoMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "today_todo_mutations_total",
				Help: "Todo mutations by operation",
			},
			[]string{"op"},
		),
		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "today_logins_total",
				Help: "Google sign-in attempts by result",
			},
			[]string{"result"},
		),
	}
}

// ObserveRequest records one served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Mutation counts one todo create, update or delete.
func (m *Metrics) Mutation(op string) {
	m.TodoMutationsTotal.WithLabelValues(op).Inc()
}

// Login counts one sign-in attempt.
func (m *Metrics) Login(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
