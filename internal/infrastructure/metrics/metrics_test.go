package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/ledgerbook/internal/usecase"
)

var _ usecase.MetricsRecorder = (*Metrics)(nil)

func TestNewRegistersMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := New(registry)
	m.ObserveQuery("ledger", 3*time.Millisecond, 12)
	m.CacheLookup(true)
	m.RequestStarted()
	m.RequestFinished(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestBusinessCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LettrageApplied()
	m.LettrageApplied()
	m.LettrageRemoved()
	m.StatementLinesImported(7)
	m.CacheLookup(false)
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.RateLimited()

	if got := testutil.ToFloat64(m.LettragesApplied); got != 2 {
		t.Fatalf("expected 2 lettrages applied, got %v", got)
	}
	if got := testutil.ToFloat64(m.LettragesRemoved); got != 1 {
		t.Fatalf("expected 1 lettrage removed, got %v", got)
	}
	if got := testutil.ToFloat64(m.StatementLines); got != 7 {
		t.Fatalf("expected 7 statement lines, got %v", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Fatalf("expected 2 cache misses, got %v", got)
	}
	if got := testutil.ToFloat64(m.RateLimitHits); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %v", got)
	}
}

func TestHTTPRequestTracking(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RequestStarted()
	if got := testutil.ToFloat64(m.HTTPRequests); got != 1 {
		t.Fatalf("expected 1 request in flight, got %v", got)
	}

	m.RequestFinished(http.MethodPost, "/api/v1/accounts/:code/lettrages", http.StatusCreated, 5*time.Millisecond)

	if got := testutil.ToFloat64(m.HTTPRequests); got != 0 {
		t.Fatalf("expected no request in flight, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPTotal.WithLabelValues(http.MethodPost, "/api/v1/accounts/:code/lettrages", "201")); got != 1 {
		t.Fatalf("expected 1 request counted, got %v", got)
	}
}

func TestRegisteringTwiceFails(t *testing.T) {
	registry := prometheus.NewRegistry()
	New(registry)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected duplicate registration to panic")
		}
	}()
	New(registry)
}
