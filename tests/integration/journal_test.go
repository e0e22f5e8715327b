package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/adapter/http/dto"
)

func TestJournalPosting(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("post balanced journal moves both balances", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(1000))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateJournalEntryRequest{
			ActorID:         "alice",
			DebitAccountID:  source.ID,
			CreditAccountID: dest.ID,
			Amount:          decimal.RequireFromString("250.75"),
			Currency:        "USD",
			TransactionRef:  "invoice-42",
		}

		var resp dto.JournalResponse
		code := env.doJSON(t, http.MethodPost, "/api/v1/journals", req, &resp)
		if code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		if resp.ID == "" {
			t.Error("expected journal ID")
		}
		if len(resp.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(resp.Entries))
		}

		sourceAfter, err := env.AccountRepo.GetByID(ctx, source.ID)
		if err != nil {
			t.Fatalf("failed to reload source: %v", err)
		}
		destAfter, err := env.AccountRepo.GetByID(ctx, dest.ID)
		if err != nil {
			t.Fatalf("failed to reload dest: %v", err)
		}

		if want := decimal.RequireFromString("749.25"); !sourceAfter.Balance.Equal(want) {
			t.Errorf("expected source balance %s, got %s", want, sourceAfter.Balance)
		}
		if want := decimal.RequireFromString("250.75"); !destAfter.Balance.Equal(want) {
			t.Errorf("expected dest balance %s, got %s", want, destAfter.Balance)
		}
		if sourceAfter.Version != source.Version+1 {
			t.Errorf("expected source version %d, got %d", source.Version+1, sourceAfter.Version)
		}
	})

	t.Run("journal read back matches posted entries", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(500))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateJournalEntryRequest{
			ActorID:         "alice",
			DebitAccountID:  source.ID,
			CreditAccountID: dest.ID,
			Amount:          decimal.NewFromInt(100),
			Currency:        "USD",
		}

		var created dto.JournalResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/journals", req, &created); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		var fetched dto.JournalResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/journals/"+created.ID, nil, &fetched); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if fetched.ID != created.ID {
			t.Errorf("expected journal %s, got %s", created.ID, fetched.ID)
		}
		if len(fetched.Entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(fetched.Entries))
		}

		var debits, credits int
		for _, e := range fetched.Entries {
			if e.Debit.IsPositive() {
				debits++
			}
			if e.Credit.IsPositive() {
				credits++
			}
		}
		if debits != 1 || credits != 1 {
			t.Errorf("expected one debit and one credit, got %d/%d", debits, credits)
		}
	})

	t.Run("reject journal between same account", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(100))

		req := dto.CreateJournalEntryRequest{
			ActorID:         "alice",
			DebitAccountID:  source.ID,
			CreditAccountID: source.ID,
			Amount:          decimal.NewFromInt(10),
			Currency:        "USD",
		}

		if code := env.doJSON(t, http.MethodPost, "/api/v1/journals", req, nil); code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, code)
		}
	})

	t.Run("reject journal beyond available liquidity", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(50))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateJournalEntryRequest{
			ActorID:         "alice",
			DebitAccountID:  source.ID,
			CreditAccountID: dest.ID,
			Amount:          decimal.NewFromInt(100),
			Currency:        "USD",
		}

		if code := env.doJSON(t, http.MethodPost, "/api/v1/journals", req, nil); code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, code)
		}

		// Nothing moved.
		sourceAfter, _ := env.AccountRepo.GetByID(ctx, source.ID)
		if !sourceAfter.Balance.Equal(decimal.NewFromInt(50)) {
			t.Errorf("expected source balance unchanged, got %s", sourceAfter.Balance)
		}
	})

	t.Run("ledger stays zero sum across postings", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		a := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(1000))
		b := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)
		c := env.DB.CreateTestAccount(ctx, "carol", "carol-usd", "USD", decimal.Zero)

		for _, post := range []dto.CreateJournalEntryRequest{
			{ActorID: "alice", DebitAccountID: a.ID, CreditAccountID: b.ID, Amount: decimal.NewFromInt(300), Currency: "USD"},
			{ActorID: "bob", DebitAccountID: b.ID, CreditAccountID: c.ID, Amount: decimal.NewFromInt(120), Currency: "USD"},
		} {
			if code := env.doJSON(t, http.MethodPost, "/api/v1/journals", post, nil); code != http.StatusCreated {
				t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
			}
		}

		var resp dto.LedgerConsistencyResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/ledger/consistency", nil, &resp); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if !resp.Consistent {
			t.Errorf("expected consistent ledger, base sum %s", resp.BaseSum)
		}
		if resp.EntryCount != 4 {
			t.Errorf("expected 4 entries, got %d", resp.EntryCount)
		}
	})
}
