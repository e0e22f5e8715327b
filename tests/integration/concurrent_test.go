package integration

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

func TestConcurrentSettlementExecution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.DB.TruncateAll(ctx)

	source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(1000))
	dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

	settlement, err := env.SettlementUC.CreateSettlementRequest(ctx, usecase.CreateSettlementRequestInput{
		InitiatorID:     "alice",
		SourceAccountID: source.ID,
		DestAccountID:   dest.ID,
		Amount:          decimal.NewFromInt(300),
		Currency:        "USD",
	})
	if err != nil {
		t.Fatalf("failed to create settlement: %v", err)
	}

	const workers = 10

	var wg sync.WaitGroup
	errs := make([]error, workers)
	results := make([]*domain.Settlement, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.SettlementUC.ExecuteSettlement(ctx, settlement.ID)
		}(i)
	}
	wg.Wait()

	// Every caller observes the completed settlement; the pending gate
	// admits exactly one execution.
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Errorf("worker %d: unexpected error: %v", i, errs[i])
			continue
		}
		if results[i].Status != domain.SettlementStatusCompleted {
			t.Errorf("worker %d: expected completed, got %s", i, results[i].Status)
		}
	}

	sourceAfter, err := env.AccountRepo.GetByID(ctx, source.ID)
	if err != nil {
		t.Fatalf("failed to reload source: %v", err)
	}
	destAfter, err := env.AccountRepo.GetByID(ctx, dest.ID)
	if err != nil {
		t.Fatalf("failed to reload dest: %v", err)
	}

	if !sourceAfter.Balance.Equal(decimal.NewFromInt(700)) {
		t.Errorf("expected source balance 700 after single execution, got %s", sourceAfter.Balance)
	}
	if !destAfter.Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("expected dest balance 300 after single execution, got %s", destAfter.Balance)
	}

	// Exactly one journal worth of entries.
	entries, err := env.EntryRepo.GetByAccount(ctx, source.ID, 100, 0)
	if err != nil {
		t.Fatalf("failed to list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 source entry, got %d", len(entries))
	}
}

func TestConcurrentJournalPostings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.DB.TruncateAll(ctx)

	source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(1000))
	dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

	const workers = 20
	amount := decimal.NewFromInt(10)

	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.JournalUC.CreateJournalEntry(ctx, usecase.CreateJournalEntryInput{
				ActorID:         "alice",
				DebitAccountID:  source.ID,
				CreditAccountID: dest.ID,
				Amount:          amount,
				Currency:        "USD",
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("worker %d: unexpected error: %v", i, err)
		}
	}

	sourceAfter, _ := env.AccountRepo.GetByID(ctx, source.ID)
	destAfter, _ := env.AccountRepo.GetByID(ctx, dest.ID)

	if !sourceAfter.Balance.Equal(decimal.NewFromInt(800)) {
		t.Errorf("expected source balance 800, got %s", sourceAfter.Balance)
	}
	if !destAfter.Balance.Equal(decimal.NewFromInt(200)) {
		t.Errorf("expected dest balance 200, got %s", destAfter.Balance)
	}
	if sourceAfter.Version != source.Version+workers {
		t.Errorf("expected source version %d, got %d", source.Version+workers, sourceAfter.Version)
	}
}
