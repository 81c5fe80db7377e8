// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "churchmap_dataset_loads_total",
		Help: "Dataset load attempts by source and result",
	}, []string{"source", "result"})
	DatasetStates = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "churchmap_dataset_states",
		Help: "Number of states in the active dataset",
	})
	DatasetChurches = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "churchmap_dataset_churches",
		Help: "Number of churches in the active dataset",
	})
	SearchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "churchmap_search_requests_total",
		Help: "Total number of search requests",
	})
	SearchCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "churchmap_search_cache_hits_total",
		Help: "Search results served from redis",
	})
	SearchCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "churchmap_search_cache_misses_total",
		Help: "Search results computed because redis had no entry",
	})
	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "churchmap_http_request_duration_seconds",
		Help:    "HTTP request duration by route pattern",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetStates)
	prometheus.MustRegister(DatasetChurches)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchCacheHitsTotal)
	prometheus.MustRegister(SearchCacheMissesTotal)
	prometheus.MustRegister(RequestDuration)
}

// Handler exposes the registered collectors.
func Handler() http.Handler { return promhttp.Handler() }
