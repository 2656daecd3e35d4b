// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventflow_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	checkoutOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_checkout_operations_total",
			Help: "Total number of checkout operations",
		},
		[]string{"operation", "status"},
	)

	catalogQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventflow_catalog_queries_total",
			Help: "Catalog queries by collection and the stage that emptied the result",
		},
		[]string{"collection", "empty_stage"},
	)
)

// ObserveHTTPRequest records one served request
func ObserveHTTPRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

// RecordCheckoutOperation counts a checkout operation outcome
func RecordCheckoutOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	checkoutOperations.WithLabelValues(operation, status).Inc()
}

// RecordCatalogQuery counts a pipeline run. emptyStage is "" for non-empty results.
func RecordCatalogQuery(collection, emptyStage string) {
	if emptyStage == "" {
		emptyStage = "none"
	}
	catalogQueries.WithLabelValues(collection, emptyStage).Inc()
}
