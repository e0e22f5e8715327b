package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/finvault/ledger/internal/adapter/http/handler"
	"github.com/finvault/ledger/internal/adapter/http/middleware"
	"github.com/finvault/ledger/internal/infrastructure/metrics"
	"github.com/finvault/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	JournalHandler        *handler.JournalHandler
	SettlementHandler     *handler.SettlementHandler
	ValuationHandler      *handler.ValuationHandler
	ConsolidationHandler  *handler.ConsolidationHandler
	ReconciliationHandler *handler.ReconciliationHandler
	HealthHandler         *handler.HealthHandler
	IdempotencyStore      usecase.IdempotencyStore
	Metrics               *metrics.Metrics
	Logger                zerolog.Logger
	RateLimitPerMinute    int
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(chimiddleware.Recoverer)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.NewRateLimitMiddleware(cfg.RateLimitPerMinute, cfg.Metrics).Wrap)
	}

	// Health and observability
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, 0)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Delete("/{id}", cfg.AccountHandler.Deactivate)
			r.Get("/{id}/entries", cfg.JournalHandler.ListByAccount)
			r.Get("/{id}/settlements", cfg.SettlementHandler.ListByAccount)
			r.Get("/{id}/position", cfg.ValuationHandler.Position)
			r.Post("/{id}/realized-gain", cfg.ValuationHandler.RealizedGain)
			r.Post("/{id}/revalue", cfg.ValuationHandler.Revalue)
			r.Get("/{id}/snapshots", cfg.ValuationHandler.ListSnapshots)
			r.Get("/{id}/reconciliation", cfg.ReconciliationHandler.Account)
		})

		// Journals
		r.Route("/journals", func(r chi.Router) {
			r.Post("/", cfg.JournalHandler.Create)
			r.Get("/{id}", cfg.JournalHandler.Get)
		})

		// Settlements
		r.Route("/settlements", func(r chi.Router) {
			r.Post("/", cfg.SettlementHandler.Create)
			r.Get("/{id}", cfg.SettlementHandler.Get)
			r.Post("/{id}/execute", cfg.SettlementHandler.Execute)
			r.Post("/p2p", cfg.SettlementHandler.P2P)
			r.Post("/internal", cfg.SettlementHandler.Internal)
		})

		// Inter-entity consolidation
		r.Route("/entities", func(r chi.Router) {
			r.Post("/transfers", cfg.ConsolidationHandler.RecordTransfer)
			r.Get("/{entityA}/balance/{entityB}", cfg.ConsolidationHandler.Balance)
			r.Post("/{entityA}/clear/{entityB}", cfg.ConsolidationHandler.Clear)
			r.Get("/{id}/circular-scan", cfg.ConsolidationHandler.CircularScan)
		})

		// Ledger-wide checks
		r.Get("/ledger/consistency", cfg.ReconciliationHandler.Ledger)
	})

	return r
}
