package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts gateway requests by operation
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jandoedu",
			Name:      "gateway_requests_total",
			Help:      "Gateway requests by operation.",
		},
		[]string{"operation"},
	)

	// ErrorsTotal counts gateway failures by operation
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jandoedu",
			Name:      "gateway_errors_total",
			Help:      "Gateway request failures by operation.",
		},
		[]string{"operation"},
	)

	// LoginsTotal counts logins by outcome (success, invalid)
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jandoedu",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// RequestDuration observes gateway request latency
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jandoedu",
			Name:      "gateway_request_duration_seconds",
			Help:      "Gateway request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, ErrorsTotal, LoginsTotal, RequestDuration)
}

// Handler returns the HTTP handler exposing the metrics endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
