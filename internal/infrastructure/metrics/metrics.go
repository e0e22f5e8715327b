package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Journal metrics
	JournalsPosted prometheus.Counter
	JournalErrors  *prometheus.CounterVec
	EntryAmount    prometheus.Histogram

	// Settlement metrics
	SettlementsRequested prometheus.Counter
	SettlementsCompleted prometheus.Counter
	SettlementsFailed    prometheus.Counter
	SettlementDuration   prometheus.Histogram
	SpreadSavings        prometheus.Counter

	// Account metrics
	AccountsCreated   prometheus.Counter
	AccountOperations *prometheus.CounterVec

	// Netting metrics
	NettingTransfers   prometheus.Counter
	NettingCleared     prometheus.Counter
	CircularDetections prometheus.Counter

	// Valuation metrics
	ValuationSnapshots   prometheus.Counter
	ReconciliationDrifts prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsPending   prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Journal metrics
		JournalsPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_journals_posted_total",
			Help: "Total number of journals posted",
		}),
		JournalErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_journal_errors_total",
				Help: "Total number of journal posting errors by type",
			},
			[]string{"error_type"},
		),
		EntryAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_entry_amount",
			Help:    "Journal entry amounts in base currency",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Settlement metrics
		SettlementsRequested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_settlements_requested_total",
			Help: "Total number of settlements requested",
		}),
		SettlementsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_settlements_completed_total",
			Help: "Total number of settlements completed",
		}),
		SettlementsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_settlements_failed_total",
			Help: "Total number of settlements failed",
		}),
		SettlementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_settlement_duration_seconds",
			Help:    "Duration of settlement execution",
			Buckets: prometheus.DefBuckets,
		}),
		SpreadSavings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_spread_savings_total",
			Help: "Cumulative spread savings from internal cross-currency settlements",
		}),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_account_operations_total",
				Help: "Total account operations by type",
			},
			[]string{"operation"},
		),

		// Netting metrics
		NettingTransfers: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_netting_transfers_total",
			Help: "Total number of inter-entity transfers recorded",
		}),
		NettingCleared: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_netting_cleared_total",
			Help: "Total number of inter-entity transfers cleared",
		}),
		CircularDetections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_circular_detections_total",
			Help: "Total number of circular funding paths detected",
		}),

		// Valuation metrics
		ValuationSnapshots: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_valuation_snapshots_total",
			Help: "Total number of valuation snapshots persisted",
		}),
		ReconciliationDrifts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_reconciliation_drifts_total",
			Help: "Total number of reconciliation drift detections",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_http_requests_total",
				Help: "Total HTTP requests by method, path, and status",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_queries_total",
				Help: "Total database queries by operation",
			},
			[]string{"operation"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledger_db_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_errors_total",
				Help: "Total database errors by operation",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_operations_total",
				Help: "Total Redis operations by type",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_redis_errors_total",
				Help: "Total Redis errors by operation",
			},
			[]string{"operation"},
		),

		// Rate limiting metrics
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_rate_limit_hits_total",
				Help: "Total rate limit hits by client",
			},
			[]string{"client"},
		),

		// Outbox metrics
		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_events_published_total",
			Help: "Total outbox events published",
		}),
		EventsPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_events_pending",
			Help: "Current number of unpublished outbox events",
		}),
	}
}
