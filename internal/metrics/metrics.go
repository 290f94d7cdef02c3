package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	SearchRequestsTotal   *prometheus.CounterVec
	SearchRequestDuration *prometheus.HistogramVec

	RedditThreadsMatched prometheus.Counter

	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter

	ScansInFlight prometheus.Gauge
}

func New() *Metrics {
	return &Metrics{
		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reddit_radar_search_requests_total",
				Help: "Total number of search API requests",
			},
			[]string{"kind", "status"},
		),
		SearchRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reddit_radar_search_request_duration_seconds",
				Help:    "Search request duration in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"kind"},
		),

		RedditThreadsMatched: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reddit_radar_reddit_threads_matched_total",
				Help: "Normalized items that passed the reddit thread filter",
			},
		),

		CacheHitsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reddit_radar_cache_hits_total",
				Help: "Total number of cache hits",
			},
		),
		CacheMissesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "reddit_radar_cache_misses_total",
				Help: "Total number of cache misses",
			},
		),

		ScansInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "reddit_radar_scans_in_flight",
				Help: "Topic scans currently being processed",
			},
		),
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func (m *Metrics) RecordSearch(kind, status string, duration time.Duration) {
	m.SearchRequestsTotal.WithLabelValues(kind, status).Inc()
	m.SearchRequestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *Metrics) RecordRedditThreads(count int) {
	m.RedditThreadsMatched.Add(float64(count))
}

func (m *Metrics) RecordCacheHit() {
	m.CacheHitsTotal.Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.CacheMissesTotal.Inc()
}

func (m *Metrics) IncScansInFlight() {
	m.ScansInFlight.Inc()
}

func (m *Metrics) DecScansInFlight() {
	m.ScansInFlight.Dec()
}
