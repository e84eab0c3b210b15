// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"method", "path"},
	)

	SearchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_cache_hits_total",
			Help: "Search requests served from already-stored listings",
		},
	)

	SearchFallbackFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_fallback_fetches_total",
			Help: "Search requests that reached out to the listing source",
		},
	)

	ListingsInserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listings_inserted_total",
			Help: "New listings persisted after dedupe",
		},
	)

	ExternalCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_calls_total",
			Help: "Calls made to external collaborators",
		},
		[]string{"target", "outcome"},
	)
)

// Outcome maps a call result onto the outcome label of ExternalCallsTotal.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
