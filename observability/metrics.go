package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// DISPATCH METRICS
// =============================================================================

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polycall_calls_total",
			Help: "Total number of cross-language function calls dispatched",
		},
		[]string{"function", "language", "status"}, // status: success, error
	)

	callDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "polycall_call_duration_seconds",
			Help:    "Dispatched call duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"function", "language"},
	)
)

// =============================================================================
// CACHE METRICS
// =============================================================================

var cacheEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "polycall_cache_events_total",
		Help: "Result cache hits and misses",
	},
	[]string{"function", "event"}, // event: hit, miss
)

// =============================================================================
// SECURITY METRICS
// =============================================================================

var securityEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "polycall_security_events_total",
		Help: "Access verification outcomes recorded by the security layer",
	},
	[]string{"function", "outcome"}, // outcome: allowed, denied
)

// =============================================================================
// MEMORY BRIDGE METRICS
// =============================================================================

var (
	memoryRegionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "polycall_memory_regions_active",
			Help: "Number of memory bridge regions currently tracked",
		},
	)

	memoryEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "polycall_memory_events_total",
			Help: "Memory bridge lifecycle events",
		},
		[]string{"event"}, // event: acquire, release, reclaim
	)
)

// =============================================================================
// PUBLIC API
// =============================================================================

// RecordCall records dispatch call outcome and latency. Called once per
// Context.Call completion, success or failure.
func RecordCall(function, language, status string, durationMS float64) {
	callsTotal.WithLabelValues(function, language, status).Inc()
	callDurationSeconds.WithLabelValues(function, language).Observe(durationMS / 1000.0)
}

// RecordCacheEvent records a result cache hit or miss for function.
func RecordCacheEvent(function, event string) {
	cacheEventsTotal.WithLabelValues(function, event).Inc()
}

// RecordSecurityEvent records a VerifyAccess outcome for function.
func RecordSecurityEvent(function, outcome string) {
	securityEventsTotal.WithLabelValues(function, outcome).Inc()
}

// RecordMemoryEvent records a memory bridge lifecycle event and adjusts
// the active region gauge accordingly.
func RecordMemoryEvent(event string) {
	memoryEventsTotal.WithLabelValues(event).Inc()
	switch event {
	case "acquire":
		memoryRegionsActive.Inc()
	case "release", "reclaim":
		memoryRegionsActive.Dec()
	}
}
