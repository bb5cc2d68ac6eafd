package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Query metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	QueryRows     *prometheus.HistogramVec

	// Ledger cache metrics
	CacheLookups *prometheus.CounterVec

	// Lettrage metrics
	LettragesApplied prometheus.Counter
	LettragesRemoved prometheus.Counter

	// Statement metrics
	StatementLines prometheus.Counter

	// API metrics
	HTTPRequests prometheus.Gauge
	HTTPTotal    *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all Prometheus metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Queries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerbook_queries_total",
				Help: "Total ledger and transaction queries by kind",
			},
			[]string{"kind"},
		),
		QueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerbook_query_duration_seconds",
				Help:    "Duration of load, filter and sort for a query",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		QueryRows: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerbook_query_rows",
				Help:    "Rows matched by a query before pagination",
				Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
			[]string{"kind"},
		),

		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerbook_ledger_cache_lookups_total",
				Help: "Ledger cache lookups by result",
			},
			[]string{"result"},
		),

		LettragesApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerbook_lettrages_applied_total",
			Help: "Total number of lettrages applied",
		}),
		LettragesRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerbook_lettrages_removed_total",
			Help: "Total number of lettrages removed",
		}),

		StatementLines: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerbook_statement_lines_imported_total",
			Help: "Total bank statement lines imported",
		}),

		HTTPRequests: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerbook_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		HTTPTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerbook_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerbook_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ledgerbook_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// ObserveQuery records one query of the given kind.
func (m *Metrics) ObserveQuery(kind string, duration time.Duration, rows int) {
	m.Queries.WithLabelValues(kind).Inc()
	m.QueryDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.QueryRows.WithLabelValues(kind).Observe(float64(rows))
}

// CacheLookup records a ledger cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) LettrageApplied() { m.LettragesApplied.Inc() }
func (m *Metrics) LettrageRemoved() { m.LettragesRemoved.Inc() }

// StatementLinesImported adds n imported statement lines.
func (m *Metrics) StatementLinesImported(n int) {
	m.StatementLines.Add(float64(n))
}

// RequestStarted tracks an in-flight HTTP request.
func (m *Metrics) RequestStarted() { m.HTTPRequests.Inc() }

// RequestFinished records a completed HTTP request.
func (m *Metrics) RequestFinished(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.Dec()
	m.HTTPTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RateLimited records a rejected request.
func (m *Metrics) RateLimited() { m.RateLimitHits.Inc() }
