// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagameal_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tagameal_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tagameal_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	RecipeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagameal_recipe_mutations_total",
			Help: "Committed recipe mutations by operation",
		},
		[]string{"operation"}, // create, update, delete, copy, rate
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tagameal_image_uploads_total",
			Help: "Processed image uploads by kind and result",
		},
		[]string{"kind", "result"},
	)
)

func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func RecordRecipeMutation(operation string) {
	RecipeMutations.WithLabelValues(operation).Inc()
}

func RecordImageUpload(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ImageUploads.WithLabelValues(kind, result).Inc()
}
