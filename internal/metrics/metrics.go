package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ScoringPasses counts risk scoring passes by keyword set variant.
	ScoringPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logpulse_scoring_passes_total",
		Help: "Number of risk scoring passes executed.",
	}, []string{"keyword_set"})

	// ScoringDuration tracks how long a scoring pass takes.
	ScoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "logpulse_scoring_duration_seconds",
		Help:    "Duration of risk scoring passes.",
		Buckets: prometheus.DefBuckets,
	})

	// ForecastCacheHits counts forecasts served from the daily cache.
	ForecastCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpulse_forecast_cache_hits_total",
		Help: "Forecasts served from the per-day cache.",
	})

	// ForecastCacheMisses counts forecasts that had to be generated.
	ForecastCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "logpulse_forecast_cache_misses_total",
		Help: "Forecasts generated because no fresh cached entry existed.",
	})

	// StoreFallbacks counts persistence operations that degraded to the
	// key-value fallback store.
	StoreFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "logpulse_store_fallbacks_total",
		Help: "Persistence operations that fell back to the key-value store.",
	}, []string{"operation"})
)

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
