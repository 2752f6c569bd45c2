package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	rpcRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agoradeals",
		Subsystem: "rpc",
		Name:      "requests_total",
		Help:      "RPC requests processed, labelled by method and outcome.",
	}, []string{"method", "outcome"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "agoradeals",
		Subsystem: "rpc",
		Name:      "request_duration_seconds",
		Help:      "RPC request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agoradeals",
		Subsystem: "node",
		Name:      "events_total",
		Help:      "Ledger events emitted by committed operations.",
	}, []string{"type"})
)

// ObserveRequest records one finished RPC request.
func ObserveRequest(method, outcome string, seconds float64) {
	rpcRequests.WithLabelValues(method, outcome).Inc()
	rpcDuration.WithLabelValues(method).Observe(seconds)
}

// CountEvent records one emitted ledger event.
func CountEvent(eventType string) {
	eventsEmitted.WithLabelValues(eventType).Inc()
}

// Handler exposes the process metrics in Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
