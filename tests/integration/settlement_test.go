package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/adapter/http/dto"
)

func TestTwoPhaseSettlement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("request phase moves no balances", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(1000))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateSettlementRequest{
			InitiatorID:     "alice",
			SourceAccountID: source.ID,
			DestAccountID:   dest.ID,
			Amount:          decimal.NewFromInt(300),
			Currency:        "USD",
		}

		var resp dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements", req, &resp); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		if resp.Status != "pending" {
			t.Errorf("expected pending status, got %s", resp.Status)
		}

		sourceAfter, _ := env.AccountRepo.GetByID(ctx, source.ID)
		if !sourceAfter.Balance.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("expected untouched source balance, got %s", sourceAfter.Balance)
		}
	})

	t.Run("execute phase settles and is idempotent", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(1000))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateSettlementRequest{
			InitiatorID:     "alice",
			SourceAccountID: source.ID,
			DestAccountID:   dest.ID,
			Amount:          decimal.NewFromInt(300),
			Currency:        "USD",
		}

		var created dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements", req, &created); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		var executed dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements/"+created.ID+"/execute", nil, &executed); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if executed.Status != "completed" {
			t.Errorf("expected completed status, got %s", executed.Status)
		}
		if executed.JournalID == "" {
			t.Error("expected journal reference on completed settlement")
		}

		// Executing a terminal settlement is a no-op, not an error.
		var again dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements/"+created.ID+"/execute", nil, &again); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if again.Status != "completed" {
			t.Errorf("expected completed status, got %s", again.Status)
		}

		sourceAfter, _ := env.AccountRepo.GetByID(ctx, source.ID)
		destAfter, _ := env.AccountRepo.GetByID(ctx, dest.ID)
		if !sourceAfter.Balance.Equal(decimal.NewFromInt(700)) {
			t.Errorf("expected source balance 700, got %s", sourceAfter.Balance)
		}
		if !destAfter.Balance.Equal(decimal.NewFromInt(300)) {
			t.Errorf("expected dest balance 300, got %s", destAfter.Balance)
		}
	})

	t.Run("duplicate idempotency key returns original settlement", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(1000))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateSettlementRequest{
			InitiatorID:     "alice",
			SourceAccountID: source.ID,
			DestAccountID:   dest.ID,
			Amount:          decimal.NewFromInt(50),
			Currency:        "USD",
			IdempotencyKey:  "settle-once",
		}

		var first dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements", req, &first); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		var second dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements", req, &second); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		if first.ID != second.ID {
			t.Errorf("expected same settlement for duplicate key, got %s and %s", first.ID, second.ID)
		}
	})

	t.Run("execution failure marks settlement failed", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(100))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateSettlementRequest{
			InitiatorID:     "alice",
			SourceAccountID: source.ID,
			DestAccountID:   dest.ID,
			Amount:          decimal.NewFromInt(100),
			Currency:        "USD",
		}

		var created dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements", req, &created); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		// Drain the source before execution.
		drain := dto.CreateJournalEntryRequest{
			ActorID:         "alice",
			DebitAccountID:  source.ID,
			CreditAccountID: dest.ID,
			Amount:          decimal.NewFromInt(80),
			Currency:        "USD",
		}
		if code := env.doJSON(t, http.MethodPost, "/api/v1/journals", drain, nil); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements/"+created.ID+"/execute", nil, nil); code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, code)
		}

		var after dto.SettlementResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/settlements/"+created.ID, nil, &after); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if after.Status != "failed" {
			t.Errorf("expected failed status, got %s", after.Status)
		}
		if after.FailureReason == "" {
			t.Error("expected failure reason to be recorded")
		}
	})

	t.Run("initiator must own the source account", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		source := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(100))
		dest := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.CreateSettlementRequest{
			InitiatorID:     "mallory",
			SourceAccountID: source.ID,
			DestAccountID:   dest.ID,
			Amount:          decimal.NewFromInt(10),
			Currency:        "USD",
		}

		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements", req, nil); code != http.StatusForbidden {
			t.Fatalf("expected status %d, got %d", http.StatusForbidden, code)
		}
	})
}

func TestP2PTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("one phase transfer between distinct owners", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		sender := env.DB.CreateTestAccount(ctx, "alice", "alice-usd", "USD", decimal.NewFromInt(500))
		receiver := env.DB.CreateTestAccount(ctx, "bob", "bob-usd", "USD", decimal.Zero)

		req := dto.P2PTransferRequest{
			SenderID:          "alice",
			ReceiverID:        "bob",
			SenderAccountID:   sender.ID,
			ReceiverAccountID: receiver.ID,
			Amount:            decimal.NewFromInt(125),
			Currency:          "USD",
		}

		var resp dto.SettlementResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements/p2p", req, &resp); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		if resp.Status != "completed" {
			t.Errorf("expected completed status, got %s", resp.Status)
		}

		senderAfter, _ := env.AccountRepo.GetByID(ctx, sender.ID)
		receiverAfter, _ := env.AccountRepo.GetByID(ctx, receiver.ID)
		if !senderAfter.Balance.Equal(decimal.NewFromInt(375)) {
			t.Errorf("expected sender balance 375, got %s", senderAfter.Balance)
		}
		if !receiverAfter.Balance.Equal(decimal.NewFromInt(125)) {
			t.Errorf("expected receiver balance 125, got %s", receiverAfter.Balance)
		}
	})

	t.Run("reject transfer between accounts of one owner", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		a := env.DB.CreateTestAccount(ctx, "alice", "alice-usd-1", "USD", decimal.NewFromInt(500))
		b := env.DB.CreateTestAccount(ctx, "alice", "alice-usd-2", "USD", decimal.Zero)

		req := dto.P2PTransferRequest{
			SenderID:          "alice",
			ReceiverID:        "alice",
			SenderAccountID:   a.ID,
			ReceiverAccountID: b.ID,
			Amount:            decimal.NewFromInt(10),
			Currency:          "USD",
		}

		if code := env.doJSON(t, http.MethodPost, "/api/v1/settlements/p2p", req, nil); code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, code)
		}
	})
}
