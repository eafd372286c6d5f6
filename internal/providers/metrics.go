package providers

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/systmms/secretchain/pkg/provider"
)

// Reload triggers recorded by secretchain_file_reloads_total.
const (
	ReloadTriggerInitial = "initial"
	ReloadTriggerStale   = "stale"
	ReloadTriggerWatch   = "watch"
	ReloadTriggerManual  = "manual"
)

var (
	cacheHitsTotal           *prometheus.CounterVec
	cacheMissesTotal         *prometheus.CounterVec
	lookupErrorsTotal        *prometheus.CounterVec
	fileReloadsTotal         *prometheus.CounterVec
	fallbackResolutionsTotal prometheus.Counter

	// Registration guard
	metricsOnce       sync.Once
	metricsRegistered atomic.Bool
)

// InitMetrics registers the provider metrics with the default Prometheus
// registry. Recording is a no-op until it has been called.
func InitMetrics() {
	metricsOnce.Do(func() {
		cacheHitsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretchain_cache_hits_total",
				Help: "Total number of secret lookups served from a provider cache",
			},
			[]string{"provider"},
		)

		cacheMissesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretchain_cache_misses_total",
				Help: "Total number of secret lookups that reached the backing store",
			},
			[]string{"provider"},
		)

		lookupErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretchain_lookup_errors_total",
				Help: "Total number of failed secret lookups by error code",
			},
			[]string{"provider", "code"},
		)

		fileReloadsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "secretchain_file_reloads_total",
				Help: "Total number of secrets file reloads by trigger",
			},
			[]string{"trigger"},
		)

		fallbackResolutionsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "secretchain_fallback_resolutions_total",
				Help: "Total number of hybrid lookups resolved by the fallback provider",
			},
		)

		metricsRegistered.Store(true)
	})
}

func recordCacheHit(name string) {
	if !metricsRegistered.Load() {
		return
	}
	cacheHitsTotal.WithLabelValues(name).Inc()
}

func recordCacheMiss(name string) {
	if !metricsRegistered.Load() {
		return
	}
	cacheMissesTotal.WithLabelValues(name).Inc()
}

func recordLookupError(name string, err error) {
	if !metricsRegistered.Load() {
		return
	}
	lookupErrorsTotal.WithLabelValues(name, string(provider.CodeOf(err))).Inc()
}

func recordFileReload(trigger string) {
	if !metricsRegistered.Load() {
		return
	}
	fileReloadsTotal.WithLabelValues(trigger).Inc()
}

func recordFallbackResolution() {
	if !metricsRegistered.Load() {
		return
	}
	fallbackResolutionsTotal.Inc()
}
