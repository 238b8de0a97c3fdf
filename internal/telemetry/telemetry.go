package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the week view and proposal flows.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	WeekCacheLookups       *prometheus.CounterVec
	WeekCacheInvalidations prometheus.Counter
	WeekBuildDuration      prometheus.Histogram
	WeekBuildErrors        prometheus.Counter
	ProposalRequests       *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WeekCacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familyhub_week_cache_lookups_total",
			Help: "Week cache lookups by result (hit, miss, error)",
		}, []string{"result"}),

		WeekCacheInvalidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "familyhub_week_cache_invalidations_total",
			Help: "Explicit week cache invalidations",
		}),

		WeekBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "familyhub_week_build_duration_seconds",
			Help:    "Time spent building a week view from storage",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		WeekBuildErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "familyhub_week_build_errors_total",
			Help: "Week builds that failed on a data access error",
		}),

		ProposalRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "familyhub_ai_proposal_requests_total",
			Help: "AI week proposal requests by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.WeekCacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) CacheInvalidated() {
	if m == nil {
		return
	}
	m.WeekCacheInvalidations.Inc()
}

func (m *Metrics) ObserveBuild(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.WeekBuildDuration.Observe(d.Seconds())
	if err != nil {
		m.WeekBuildErrors.Inc()
	}
}

func (m *Metrics) Proposal(outcome string) {
	if m == nil {
		return
	}
	m.ProposalRequests.WithLabelValues(outcome).Inc()
}
