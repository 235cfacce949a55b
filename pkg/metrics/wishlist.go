package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wishlist"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeDegraded = "degraded"
)

// Metrics records wishlist operations, stats computations and HTTP traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	operations    *prometheus.CounterVec
	statsDuration *prometheus.HistogramVec
	statsCache    *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// New registers the collectors on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Wishlist operations by name and outcome.",
	}, []string{"operation", "outcome"})
	statsDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stats_duration_seconds",
		Help:      "Duration of dashboard statistics computations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
	statsCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_cache_total",
		Help:      "Statistics cache lookups by result.",
	}, []string{"result"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern, method and status.",
	}, []string{"route", "method", "status"})
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	reg.MustRegister(operations, statsDuration, statsCache, httpRequests, httpDuration)
	return &Metrics{
		operations:    operations,
		statsDuration: statsDuration,
		statsCache:    statsCache,
		httpRequests:  httpRequests,
		httpDuration:  httpDuration,
	}
}

// IncOperation counts one wishlist operation.
func (m *Metrics) IncOperation(operation, outcome string) {
	if m == nil || m.operations == nil {
		return
	}
	m.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// ObserveStats records the duration of one statistics computation.
func (m *Metrics) ObserveStats(outcome string, duration time.Duration) {
	if m == nil || m.statsDuration == nil {
		return
	}
	m.statsDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncStatsCache counts a cache hit or miss.
func (m *Metrics) IncStatsCache(hit bool) {
	if m == nil || m.statsCache == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.statsCache.WithLabelValues(result).Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, status int, duration time.Duration) {
	if m == nil || m.httpRequests == nil {
		return
	}
	route = normalizeLabel(route)
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
