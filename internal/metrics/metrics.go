// Package metrics holds the Prometheus collectors for the analytics pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CityFetches counts per-city pipeline outcomes by stage (validate, resolve, fetch).
	CityFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_city_fetches_total",
			Help: "Per-city pipeline outcomes by stage",
		},
		[]string{"stage", "outcome"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "weather_batch_cities",
			Help:    "Number of cities requested per batch",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		},
	)

	ProviderRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weather_provider_request_duration_seconds",
			Help:    "Outbound provider request duration in seconds, retries included",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "outcome"},
	)

	GeocodeCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_geocode_cache_total",
			Help: "Geocode cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	LastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "weather_analytics_last_refresh_timestamp_seconds",
			Help: "Unix time of the last scheduled analytics refresh",
		},
	)

	RefreshFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weather_analytics_refresh_failures_total",
			Help: "Scheduled analytics refreshes that failed",
		},
	)
)
