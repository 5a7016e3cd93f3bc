// Package metrics holds the service's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// RequestsTotal counts HTTP requests by method, route pattern, and status.
	RequestsTotal = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "inventura_http_requests_total",
		Help: "Total HTTP requests handled.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes HTTP request latency by method and route pattern.
	RequestDuration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventura_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// Completions counts task completion outcomes (completed or flagged).
	Completions = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "inventura_task_completions_total",
		Help: "Task completion attempts by outcome.",
	}, []string{"outcome"})
)

// Handler returns the exposition endpoint for the service registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
