// Package observability holds the Prometheus collectors shared by the HTTP
// middleware and the session gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal counts HTTP requests by method, route template and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgw_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records request latency in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "authgw_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// AuthDecisions counts access-policy outcomes: authenticated, anonymous,
	// rejected or errored.
	AuthDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgw_auth_decisions_total",
			Help: "Access policy decisions",
		},
		[]string{"policy", "outcome"},
	)

	// BridgeRequests counts requests proxied to the auth engine by outcome.
	BridgeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authgw_bridge_requests_total",
			Help: "Requests forwarded to the auth engine",
		},
		[]string{"outcome"},
	)

	SessionsPurged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "authgw_sessions_purged_total",
			Help: "Expired sessions removed by the purge loop",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthDecisions,
		BridgeRequests,
		SessionsPurged,
	)
}
