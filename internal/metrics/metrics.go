// Package metrics exposes the shop's Prometheus instruments.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the shop's counters and histograms. A nil *Metrics is valid and records nothing.
type Metrics struct {
	recommendations *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	aiFailures      *prometheus.CounterVec
	stale           prometheus.Counter
	checkouts       *prometheus.CounterVec
}

// New registers the shop metrics on reg. With a nil registerer the returned metrics are no-ops.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_recommendations_total",
			Help: "Recommendation results produced, by source.",
		}, []string{"source"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shop_recommendation_duration_seconds",
			Help:    "Time to produce a recommendation result, by source.",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		aiFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_ai_failures_total",
			Help: "Failed AI provider calls, by operation.",
		}, []string{"operation"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shop_recommendations_stale_total",
			Help: "Recommendation refreshes discarded because a newer one was issued.",
		}),
		checkouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shop_checkouts_total",
			Help: "Checkout attempts, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.recommendations, m.duration, m.aiFailures, m.stale, m.checkouts)
	return m
}

// ObserveRecommendation records one produced result.
func (m *Metrics) ObserveRecommendation(source string, elapsed time.Duration) {
	if m == nil || m.recommendations == nil {
		return
	}
	label := normalizeLabel(source)
	m.recommendations.WithLabelValues(label).Inc()
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// IncAIFailure counts a failed AI call for the named operation.
func (m *Metrics) IncAIFailure(operation string) {
	if m == nil || m.aiFailures == nil {
		return
	}
	m.aiFailures.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncStale counts a discarded out-of-date refresh.
func (m *Metrics) IncStale() {
	if m == nil || m.stale == nil {
		return
	}
	m.stale.Inc()
}

// IncCheckout counts a checkout attempt with the given result.
func (m *Metrics) IncCheckout(result string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
