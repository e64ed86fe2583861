// Package metrics holds the Prometheus collectors shared by the backend
// client and the view orchestrator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricewatch",
			Name:      "backend_requests_total",
			Help:      "Backend API calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	backendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pricewatch",
			Name:      "backend_request_duration_seconds",
			Help:      "Backend API call latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 60, 360},
		},
		[]string{"endpoint"},
	)

	viewLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricewatch",
			Name:      "view_loads_total",
			Help:      "View section loads by view and outcome.",
		},
		[]string{"view", "outcome"},
	)

	catalogGeneration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pricewatch",
			Name:      "catalog_generation",
			Help:      "Current product catalog generation.",
		},
	)
)

func init() {
	prometheus.MustRegister(backendRequests, backendLatency, viewLoads, catalogGeneration)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveBackend records one backend call.
func ObserveBackend(endpoint string, started time.Time, err error) {
	backendRequests.WithLabelValues(endpoint, outcome(err)).Inc()
	backendLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// ObserveView records one view section load.
func ObserveView(view string, err error) {
	viewLoads.WithLabelValues(view, outcome(err)).Inc()
}

// SetCatalogGeneration publishes the catalog generation after a replace.
func SetCatalogGeneration(gen uint64) {
	catalogGeneration.Set(float64(gen))
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
