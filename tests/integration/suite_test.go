package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/finvault/ledger/internal/adapter/fx"
	adapterhttp "github.com/finvault/ledger/internal/adapter/http"
	"github.com/finvault/ledger/internal/adapter/http/handler"
	"github.com/finvault/ledger/internal/adapter/repository/postgres"
	redisrepo "github.com/finvault/ledger/internal/adapter/repository/redis"
	infraredis "github.com/finvault/ledger/internal/infrastructure/redis"
	"github.com/finvault/ledger/internal/usecase"
	"github.com/finvault/ledger/tests/testutil"
)

// testEnv wires the full stack against real Postgres and Redis.
type testEnv struct {
	DB     *testutil.TestDB
	Router http.Handler

	AccountRepo    *postgres.AccountRepository
	EntryRepo      *postgres.EntryRepository
	SettlementRepo *postgres.SettlementRepository
	OutboxRepo     *postgres.OutboxRepository

	AccountUC       *usecase.AccountUseCase
	JournalUC       *usecase.JournalUseCase
	SettlementUC    *usecase.SettlementUseCase
	ValuationUC     *usecase.ValuationUseCase
	ConsolidationUC *usecase.ConsolidationUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)

	pool := testDB.Pool
	accountRepo := postgres.NewAccountRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	settlementRepo := postgres.NewSettlementRepository(pool)
	entityRepo := postgres.NewEntityRepository(pool)
	interEntityRepo := postgres.NewInterEntityRepository(pool)
	valuationRepo := postgres.NewValuationRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txManager := postgres.NewTxManager(pool)
	idGen := postgres.NewULIDGenerator()
	retrier := postgres.NewRetrier()

	rates := fx.NewStaticProvider(0.002)

	journalUC := usecase.NewJournalUseCase(txManager, accountRepo, entryRepo, outboxRepo, auditRepo, rates, idGen, "USD", nil)
	accountUC := usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, auditRepo, idGen, nil)
	settlementUC := usecase.NewSettlementUseCase(txManager, settlementRepo, accountRepo, journalUC, rates, outboxRepo, auditRepo, idGen, retrier, nil)
	valuationUC := usecase.NewValuationUseCase(txManager, accountRepo, entryRepo, valuationRepo, outboxRepo, auditRepo, rates, idGen, "USD", nil)
	consolidationUC := usecase.NewConsolidationUseCase(txManager, entityRepo, interEntityRepo, outboxRepo, auditRepo, rates, idGen, "USD", usecase.DefaultCircularFundingPolicy, nil)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, ledgerRepo, valuationUC, nil)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	redisClient, err := infraredis.NewClient(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() { _ = redisClient.Close() })

	router := adapterhttp.NewRouter(adapterhttp.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		JournalHandler:        handler.NewJournalHandler(journalUC),
		SettlementHandler:     handler.NewSettlementHandler(settlementUC),
		ValuationHandler:      handler.NewValuationHandler(valuationUC),
		ConsolidationHandler:  handler.NewConsolidationHandler(consolidationUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore:      redisrepo.NewIdempotencyStore(redisClient),
		Logger:                zerolog.Nop(),
	})

	return &testEnv{
		DB:              testDB,
		Router:          router,
		AccountRepo:     accountRepo,
		EntryRepo:       entryRepo,
		SettlementRepo:  settlementRepo,
		OutboxRepo:      outboxRepo,
		AccountUC:       accountUC,
		JournalUC:       journalUC,
		SettlementUC:    settlementUC,
		ValuationUC:     valuationUC,
		ConsolidationUC: consolidationUC,
	}
}

// doJSON issues a JSON request against the router and decodes the response
// body into out when it is non-nil.
func (env *testEnv) doJSON(t *testing.T, method, path string, payload, out any) int {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("failed to encode request: %v", err)
		}
	}

	r := httptest.NewRequest(method, path, &body)
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, r)

	if out != nil && w.Code < 300 {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("failed to parse response %q: %v", w.Body.String(), err)
		}
	}

	return w.Code
}
