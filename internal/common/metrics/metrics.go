// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icebreaker_requests_total",
			Help: "Total number of icebreaker requests by outcome",
		},
		[]string{"status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "icebreaker_stage_duration_seconds",
			Help: "Duration of pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	ResolutionMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icebreaker_resolution_misses_total",
			Help: "Total number of name resolutions without a confident profile URL",
		},
		[]string{"identity"},
	)

	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icebreaker_fetch_failures_total",
			Help: "Total number of profile fetches that degraded to an empty profile",
		},
		[]string{"identity"},
	)

	SynthesisFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icebreaker_synthesis_failures_total",
			Help: "Total number of fatal synthesis failures",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icebreaker_profile_cache_total",
			Help: "Profile cache lookups by result",
		},
		[]string{"result"},
	)
)
