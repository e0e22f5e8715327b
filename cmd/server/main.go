package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/finvault/ledger/internal/adapter/fx"
	httpAdapter "github.com/finvault/ledger/internal/adapter/http"
	"github.com/finvault/ledger/internal/adapter/http/handler"
	postgresRepo "github.com/finvault/ledger/internal/adapter/repository/postgres"
	redisRepo "github.com/finvault/ledger/internal/adapter/repository/redis"
	"github.com/finvault/ledger/internal/infrastructure/config"
	"github.com/finvault/ledger/internal/infrastructure/eventpublisher"
	"github.com/finvault/ledger/internal/infrastructure/logger"
	"github.com/finvault/ledger/internal/infrastructure/metrics"
	"github.com/finvault/ledger/internal/infrastructure/postgres"
	"github.com/finvault/ledger/internal/infrastructure/redis"
	"github.com/finvault/ledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	settlementRepo := postgresRepo.NewSettlementRepository(pool)
	entityRepo := postgresRepo.NewEntityRepository(pool)
	interEntityRepo := postgresRepo.NewInterEntityRepository(pool)
	valuationRepo := postgresRepo.NewValuationRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// FX rates: static table behind a Redis read-through cache.
	rates := fx.NewCachedProvider(
		fx.NewStaticProvider(cfg.FxSpreadPct),
		cache,
		cfg.FxCacheTTL,
		log,
	)

	// Use cases
	journalUC := usecase.NewJournalUseCase(
		txManager, accountRepo, entryRepo, outboxRepo, auditRepo,
		rates, idGen, cfg.BaseCurrency, m,
	)
	settlementUC := usecase.NewSettlementUseCase(
		txManager, settlementRepo, accountRepo, journalUC,
		rates, outboxRepo, auditRepo, idGen, retrier, m,
	)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, auditRepo, idGen, m)
	valuationUC := usecase.NewValuationUseCase(
		txManager, accountRepo, entryRepo, valuationRepo,
		outboxRepo, auditRepo, rates, idGen, cfg.BaseCurrency, m,
	)
	consolidationUC := usecase.NewConsolidationUseCase(
		txManager, entityRepo, interEntityRepo, outboxRepo, auditRepo,
		rates, idGen, cfg.BaseCurrency,
		usecase.CircularFundingPolicy{
			MaxHops:         cfg.CircularMaxHops,
			ExcludeTreasury: cfg.CircularExcludeTreasury,
		},
		m,
	)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, ledgerRepo, valuationUC, m)

	// Outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxPollInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// HTTP surface
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		JournalHandler:        handler.NewJournalHandler(journalUC),
		SettlementHandler:     handler.NewSettlementHandler(settlementUC),
		ValuationHandler:      handler.NewValuationHandler(valuationUC),
		ConsolidationHandler:  handler.NewConsolidationHandler(consolidationUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      idempotencyStore,
		Metrics:               m,
		Logger:                log,
		RateLimitPerMinute:    cfg.RateLimitPerMinute,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
