// Package metrics holds the Prometheus collectors shared by the seed loader
// and the gRPC server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SeedEntities counts seed loader outcomes by category and outcome
	// (created, skipped, failed).
	SeedEntities = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodfriends_seed_entities_total",
		Help: "Seed loader outcomes by entity category",
	}, []string{"category", "outcome"})

	// RPCRequests counts handled gRPC calls by method and status code.
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodfriends_rpc_requests_total",
		Help: "Total gRPC requests by method and code",
	}, []string{"method", "code"})

	// RPCLatency records gRPC handler latency by method.
	RPCLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moodfriends_rpc_latency_seconds",
		Help:    "gRPC handler latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// RecommendationsServed observes how many candidates each
	// recommendation response carried.
	RecommendationsServed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "moodfriends_recommendations_served",
		Help:    "Number of recommendations returned per request",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	// CacheLookups counts Redis cache hits and misses by key family.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodfriends_cache_lookups_total",
		Help: "Cache lookups by key family and result",
	}, []string{"family", "result"})
)

// ObserveRPC records one finished call.
func ObserveRPC(method, code string, start time.Time) {
	RPCRequests.WithLabelValues(method, code).Inc()
	RPCLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// CacheResult records a hit or miss for a key family.
func CacheResult(family string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(family, result).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
