package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CacheLookup("hit")
	m.CacheLookup("hit")
	m.CacheLookup("miss")
	m.CacheInvalidated()
	m.ObserveBuild(10*time.Millisecond, nil)
	m.ObserveBuild(time.Millisecond, errors.New("boom"))
	m.Proposal("rate_limited")

	if got := testutil.ToFloat64(m.WeekCacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.WeekCacheInvalidations); got != 1 {
		t.Errorf("expected 1 invalidation, got %v", got)
	}
	if got := testutil.ToFloat64(m.WeekBuildErrors); got != 1 {
		t.Errorf("expected 1 build error, got %v", got)
	}
	if got := testutil.ToFloat64(m.ProposalRequests.WithLabelValues("rate_limited")); got != 1 {
		t.Errorf("expected 1 rate limited proposal, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.CacheLookup("hit")
	m.CacheInvalidated()
	m.ObserveBuild(time.Second, nil)
	m.Proposal("ok")
}
