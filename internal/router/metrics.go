package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// routerMetrics contains the package-level Prometheus metrics.
type routerMetrics struct {
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheEvictions prometheus.Counter
	cacheSize      prometheus.Gauge
	resolutions    *prometheus.CounterVec
}

var (
	routerMetricsInstance *routerMetrics
	routerMetricsOnce     sync.Once
)

// getRouterMetrics returns the singleton router metrics instance.
func getRouterMetrics() *routerMetrics {
	routerMetricsOnce.Do(func() {
		routerMetricsInstance = &routerMetrics{
			cacheHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "linkrouter",
					Subsystem: "router",
					Name:      "regex_cache_hits_total",
					Help:      "Total number of template regex cache hits",
				},
			),
			cacheMisses: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "linkrouter",
					Subsystem: "router",
					Name:      "regex_cache_misses_total",
					Help:      "Total number of template regex cache misses",
				},
			),
			cacheEvictions: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "linkrouter",
					Subsystem: "router",
					Name:      "regex_cache_evictions_total",
					Help:      "Total number of template regex cache evictions",
				},
			),
			cacheSize: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "linkrouter",
					Subsystem: "router",
					Name:      "regex_cache_size",
					Help:      "Current number of entries in the template regex cache",
				},
			),
			resolutions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "linkrouter",
					Subsystem: "router",
					Name:      "resolutions_total",
					Help:      "Total number of URL resolutions by outcome",
				},
				[]string{"outcome"},
			),
		}
	})
	return routerMetricsInstance
}
