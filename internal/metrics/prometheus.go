package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for the bot. The process is one-shot, so instead of
// serving /metrics the run pushes its counters to a Pushgateway when one is
// configured.

var (
	PostsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seasonmetrics_posts_published_total",
			Help: "Total number of posts published to Bluesky",
		},
		[]string{"kind"},
	)

	TrackersSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seasonmetrics_trackers_skipped_total",
			Help: "Total number of trackers skipped this run",
		},
		[]string{"reason"},
	)

	FetchErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seasonmetrics_fetch_errors_total",
			Help: "Total number of season data fetch failures",
		},
	)

	PublishErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seasonmetrics_publish_errors_total",
			Help: "Total number of failed Bluesky posts",
		},
	)

	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seasonmetrics_cache_hits_total",
			Help: "Total number of season cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seasonmetrics_cache_misses_total",
			Help: "Total number of season cache misses",
		},
	)

	RunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "seasonmetrics_run_duration_seconds",
			Help: "Wall-clock duration of the last run",
		},
	)
)

// Push sends the run's metrics to a Pushgateway. Best-effort: a failure is
// logged, never fatal.
func Push(gatewayURL string) {
	if gatewayURL == "" {
		return
	}
	err := push.New(gatewayURL, "seasonmetrics_bot").
		Gatherer(prometheus.DefaultGatherer).
		Push()
	if err != nil {
		log.Warn().Err(err).Str("gateway", gatewayURL).Msg("Failed to push metrics")
		return
	}
	log.Info().Str("gateway", gatewayURL).Msg("Metrics pushed")
}
