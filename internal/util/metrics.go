package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searches_total",
		Help: "Total number of availability searches",
	})

	SearchesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "searches_failed_total",
		Help: "Total number of searches that failed fast",
	}, []string{"reason"})

	SearchesTimedOutTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searches_timed_out_total",
		Help: "Total number of searches that hit their deadline",
	})

	SearchesDegradedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "searches_degraded_total",
		Help: "Total number of searches served with degraded inventory data",
	})

	SearchRadiusExpansionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_radius_expansions_total",
		Help: "Total number of radius expansion retries",
	})

	SearchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_latency_seconds",
		Help:    "End-to-end availability search latency",
		Buckets: prometheus.DefBuckets,
	})

	SearchResultCount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_result_count",
		Help:    "Number of ranked results returned per search",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	SearchCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_cache_hits_total",
		Help: "Total number of search responses served from cache",
	})

	SearchCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "search_cache_misses_total",
		Help: "Total number of search cache misses",
	})

	InventoryUpdatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inventory_updates_total",
		Help: "Total number of inventory update events applied",
	})

	InventoryUpdatesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_updates_failed_total",
		Help: "Total number of inventory update events rejected",
	}, []string{"reason"})

	StoreEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_events_total",
		Help: "Total number of store registry events applied",
	}, []string{"type"})

	GeoIndexSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "geo_index_size",
		Help: "Number of active stores in the spatial index",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
