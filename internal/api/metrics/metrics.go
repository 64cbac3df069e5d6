// Package metrics defines and registers all custom Prometheus metrics
// for the tracking gateway. It is the single source of truth for
// metric names, labels, and help strings.
//
// Metrics register with the default Prometheus registry at import time
// via promauto; the gateway exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "parceltrack"

// TrackingRequestsTotal counts tracking lookups by carrier and outcome.
// Labels:
//   - carrier: registry key of the queried carrier (e.g. "dhl")
//   - outcome: "ok", "not_found", "config_error", "auth_error",
//     "transport_error" or "parse_error"
var TrackingRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_requests_total",
		Help:      "Total number of tracking lookups, by carrier and outcome.",
	},
	[]string{"carrier", "outcome"},
)

// TrackingRequestDuration measures how long a single carrier lookup
// takes, including the outbound provider call.
// Label:
//   - carrier: registry key of the queried carrier
var TrackingRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tracking_request_duration_seconds",
		Help:      "Duration of tracking lookups from request to normalized response.",
		Buckets:   prometheus.DefBuckets, // .005 … 10
	},
	[]string{"carrier"},
)

// FanoutCarriersTotal counts per-carrier results of multi-carrier
// fan-out queries.
// Label:
//   - result: "hit" (carrier returned shipments), "miss" (empty) or
//     "skipped" (carrier errored and was excluded)
var FanoutCarriersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fanout_carriers_total",
		Help:      "Per-carrier results of multi-carrier fan-out queries.",
	},
	[]string{"result"},
)
