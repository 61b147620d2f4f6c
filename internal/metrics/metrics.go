package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookcatalog_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookcatalog_db_query_duration_seconds",
			Help:    "Duration of PostgreSQL queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookcatalog_db_query_errors_total",
			Help: "Total PostgreSQL query errors",
		},
		[]string{"operation"},
	)

	SeriesCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookcatalog_series_cache_hits_total",
			Help: "Series name list served from cache",
		},
	)

	SeriesCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookcatalog_series_cache_misses_total",
			Help: "Series name list loaded from the database",
		},
	)
)

// ObserveQuery records the duration and outcome of a repository operation.
// Errors matching one of expected are outcomes, not failures, and are not counted.
//
//	defer metrics.ObserveQuery("book.get_by_isbn", time.Now(), &err, book.ErrNotFound)
func ObserveQuery(operation string, start time.Time, errp *error, expected ...error) {
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if errp == nil || *errp == nil {
		return
	}
	for _, e := range expected {
		if errors.Is(*errp, e) {
			return
		}
	}
	DBQueryErrors.WithLabelValues(operation).Inc()
}
