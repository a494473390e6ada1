package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "weather_now"

// Metrics holds the Prometheus counters, histograms, and gauges for weather searches.
type Metrics struct {
	Searches        *prometheus.CounterVec   // labels: entry={city,location}, outcome={success,not_found,unsupported,permission,network,stale}
	SearchDuration  *prometheus.HistogramVec // labels: entry
	SearchesRunning prometheus.Gauge

	// Upstream API metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: api={geocode_forward,geocode_reverse,forecast}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: api

	GeocodeCache *prometheus.CounterVec // labels: method={forward,reverse}, result={hit,miss}
	Notices      *prometheus.CounterVec // labels: kind={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.Searches,
		m.SearchDuration,
		m.SearchesRunning,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.GeocodeCache,
		m.Notices,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Weather searches by entry point and outcome.",
		}, []string{"entry", "outcome"}),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Duration of a complete search, from loading to settled.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"entry"}),
		SearchesRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "searches_in_flight",
			Help:      "Searches started but not yet settled.",
		}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Open-Meteo API requests by api and outcome.",
		}, []string{"api", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Open-Meteo API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"api"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		Notices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_total",
			Help:      "Notices emitted by kind.",
		}, []string{"kind"}),
	}
}
