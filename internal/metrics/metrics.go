package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectorRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_connector_requests_total",
			Help: "Upstream connector calls by outcome",
		},
		[]string{"connector", "outcome"},
	)

	ConnectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travel_connector_duration_seconds",
			Help:    "Duration of upstream connector calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"connector"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_cache_lookups_total",
			Help: "Cache lookups by cache and result",
		},
		[]string{"cache", "result"},
	)

	Resolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_resolutions_total",
			Help: "Destination resolutions by outcome",
		},
		[]string{"outcome"},
	)
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
	OutcomeEmpty = "empty"
)

// ObserveConnector records one connector call that started at start.
func ObserveConnector(connector string, start time.Time, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	ObserveOutcome(connector, start, outcome)
}

// ObserveOutcome records a call whose outcome is not derived from an error,
// such as a successful call that found nothing (OutcomeEmpty).
func ObserveOutcome(connector string, start time.Time, outcome string) {
	ConnectorDuration.WithLabelValues(connector).Observe(time.Since(start).Seconds())
	ConnectorRequests.WithLabelValues(connector, outcome).Inc()
}

func CacheResult(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
