package client

// Prometheus metrics for outbound API traffic. Registered with the default
// registry at package load; consumers embedding the SDK in a long-running
// process can expose them via promhttp.

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "defectflow"

// requestsTotal counts completed requests.
// Labels:
//   - method: HTTP verb
//   - status: numeric HTTP status code ("0" when no response was received)
var requestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "requests_total",
		Help:      "Total number of API requests issued, by method and status.",
	},
	[]string{"method", "status"},
)

// requestFailuresTotal counts requests that surfaced an error to the caller.
// Label:
//   - kind: "network" (no response) or "api" (response carried an error)
var requestFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "request_failures_total",
		Help:      "Total number of failed API requests, by failure kind.",
	},
	[]string{"kind"},
)

// requestDuration measures wall time per request, from send to body read.
var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "request_duration_seconds",
		Help:      "Duration of API requests end-to-end.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)
