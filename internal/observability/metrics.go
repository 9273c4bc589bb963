package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careerhub_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records relational query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "careerhub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ListingQueryLatency records listing store latency by category, backend and operation.
	ListingQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "careerhub_listing_query_latency_seconds",
		Help:    "Listing store query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"category", "backend", "operation"})

	// RandomPickCache counts random pick cache lookups by category and result (hit, miss, empty).
	RandomPickCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careerhub_random_pick_cache_total",
		Help: "Random pick cache lookups by category and result",
	}, []string{"category", "result"})

	// IngestMessages counts ingestion messages by category and status.
	IngestMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "careerhub_ingest_messages_total",
		Help: "Crawled records received for ingestion",
	}, []string{"category", "status"})
)

// TrackQuery returns a function that records relational query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// TrackListingQuery returns a function that records listing store latency when called.
func TrackListingQuery(category, backend, operation string) func() {
	start := time.Now()
	return func() {
		ListingQueryLatency.WithLabelValues(category, backend, operation).Observe(time.Since(start).Seconds())
	}
}
