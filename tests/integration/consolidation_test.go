package integration

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/adapter/http/dto"
)

func TestInterEntityConsolidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("recorded transfer is a pending claim", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		opco := env.DB.CreateTestEntity(ctx, "grp", "opco", false)
		holdco := env.DB.CreateTestEntity(ctx, "grp", "holdco", false)

		req := dto.RecordInterEntityTransferRequest{
			ActorID:      "grp",
			FromEntityID: opco.ID,
			ToEntityID:   holdco.ID,
			Amount:       decimal.NewFromInt(100),
			Currency:     "USD",
			Kind:         "funding",
		}

		var resp dto.InterEntityTransferResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/transfers", req, &resp); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		if resp.Status != "pending" {
			t.Errorf("expected pending status, got %s", resp.Status)
		}
		if resp.ClearedAt != nil {
			t.Error("expected no cleared timestamp on a fresh transfer")
		}
	})

	t.Run("consolidated balance nets cross currency claims", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		opco := env.DB.CreateTestEntity(ctx, "grp", "opco", false)
		holdco := env.DB.CreateTestEntity(ctx, "grp", "holdco", false)

		// opco funds holdco with 100 EUR (108.70 USD at the static mid),
		// holdco funds opco back with 50 USD.
		transfers := []dto.RecordInterEntityTransferRequest{
			{ActorID: "grp", FromEntityID: opco.ID, ToEntityID: holdco.ID, Amount: decimal.NewFromInt(100), Currency: "EUR"},
			{ActorID: "grp", FromEntityID: holdco.ID, ToEntityID: opco.ID, Amount: decimal.NewFromInt(50), Currency: "USD"},
		}
		for _, tr := range transfers {
			if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/transfers", tr, nil); code != http.StatusCreated {
				t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
			}
		}

		var balance dto.ConsolidatedBalanceResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/entities/"+opco.ID+"/balance/"+holdco.ID, nil, &balance); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if want := decimal.RequireFromString("58.7"); !balance.NetBase.Equal(want) {
			t.Errorf("expected net base %s, got %s", want, balance.NetBase)
		}
		if balance.Direction != "receivable" {
			t.Errorf("expected receivable direction, got %s", balance.Direction)
		}
		if balance.PendingCount != 2 {
			t.Errorf("expected 2 pending transfers, got %d", balance.PendingCount)
		}
	})

	t.Run("clearing cycle clears a settled pair in one batch", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		opco := env.DB.CreateTestEntity(ctx, "grp", "opco", false)
		holdco := env.DB.CreateTestEntity(ctx, "grp", "holdco", false)

		// 100 EUR one way, 108.70 USD the other: net zero in base currency.
		transfers := []dto.RecordInterEntityTransferRequest{
			{ActorID: "grp", FromEntityID: opco.ID, ToEntityID: holdco.ID, Amount: decimal.NewFromInt(100), Currency: "EUR"},
			{ActorID: "grp", FromEntityID: holdco.ID, ToEntityID: opco.ID, Amount: decimal.RequireFromString("108.7"), Currency: "USD"},
		}
		for _, tr := range transfers {
			if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/transfers", tr, nil); code != http.StatusCreated {
				t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
			}
		}

		var result dto.ClearingResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/"+opco.ID+"/clear/"+holdco.ID, nil, &result); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if !result.Cleared {
			t.Fatalf("expected pair to clear, net base %s", result.Balance.NetBase)
		}
		if result.ClearedCount != 2 {
			t.Errorf("expected 2 cleared transfers, got %d", result.ClearedCount)
		}

		// Nothing left pending between the pair.
		var after dto.ConsolidatedBalanceResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/entities/"+opco.ID+"/balance/"+holdco.ID, nil, &after); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}
		if after.PendingCount != 0 {
			t.Errorf("expected 0 pending transfers, got %d", after.PendingCount)
		}
	})

	t.Run("clearing refuses an unbalanced pair", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		opco := env.DB.CreateTestEntity(ctx, "grp", "opco", false)
		holdco := env.DB.CreateTestEntity(ctx, "grp", "holdco", false)

		tr := dto.RecordInterEntityTransferRequest{
			ActorID: "grp", FromEntityID: opco.ID, ToEntityID: holdco.ID,
			Amount: decimal.NewFromInt(75), Currency: "USD",
		}
		if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/transfers", tr, nil); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}

		var result dto.ClearingResponse
		if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/"+opco.ID+"/clear/"+holdco.ID, nil, &result); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if result.Cleared {
			t.Error("expected unbalanced pair to stay open")
		}
		if result.ClearedCount != 0 {
			t.Errorf("expected 0 cleared transfers, got %d", result.ClearedCount)
		}
	})

	t.Run("reject transfer across principals", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		opco := env.DB.CreateTestEntity(ctx, "grp", "opco", false)
		other := env.DB.CreateTestEntity(ctx, "rival", "rival-co", false)

		tr := dto.RecordInterEntityTransferRequest{
			ActorID: "grp", FromEntityID: opco.ID, ToEntityID: other.ID,
			Amount: decimal.NewFromInt(10), Currency: "USD",
		}

		if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/transfers", tr, nil); code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, code)
		}
	})
}

func TestCircularFundingScan(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	record := func(t *testing.T, from, to string) {
		t.Helper()
		tr := dto.RecordInterEntityTransferRequest{
			ActorID: "grp", FromEntityID: from, ToEntityID: to,
			Amount: decimal.NewFromInt(10), Currency: "USD",
		}
		if code := env.doJSON(t, http.MethodPost, "/api/v1/entities/transfers", tr, nil); code != http.StatusCreated {
			t.Fatalf("expected status %d, got %d", http.StatusCreated, code)
		}
	}

	t.Run("detects a three hop cycle", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		a := env.DB.CreateTestEntity(ctx, "grp", "a", false)
		b := env.DB.CreateTestEntity(ctx, "grp", "b", false)
		c := env.DB.CreateTestEntity(ctx, "grp", "c", false)

		record(t, a.ID, b.ID)
		record(t, b.ID, c.ID)
		record(t, c.ID, a.ID)

		var report dto.CircularFundingResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/entities/"+a.ID+"/circular-scan", nil, &report); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if !report.Detected {
			t.Fatal("expected cycle to be detected")
		}
		if report.Hops != 3 {
			t.Errorf("expected 3 hops, got %d", report.Hops)
		}
		if len(report.Path) == 0 || report.Path[0] != a.ID || report.Path[len(report.Path)-1] != a.ID {
			t.Errorf("expected path to start and end at origin, got %v", report.Path)
		}
	})

	t.Run("no cycle in an acyclic graph", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		a := env.DB.CreateTestEntity(ctx, "grp", "a", false)
		b := env.DB.CreateTestEntity(ctx, "grp", "b", false)
		c := env.DB.CreateTestEntity(ctx, "grp", "c", false)

		record(t, a.ID, b.ID)
		record(t, b.ID, c.ID)

		var report dto.CircularFundingResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/entities/"+a.ID+"/circular-scan", nil, &report); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if report.Detected {
			t.Errorf("expected no cycle, got path %v", report.Path)
		}
	})

	t.Run("cycle through treasury is not flagged by default policy", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		a := env.DB.CreateTestEntity(ctx, "grp", "a", false)
		treasury := env.DB.CreateTestEntity(ctx, "grp", "treasury", true)

		record(t, a.ID, treasury.ID)
		record(t, treasury.ID, a.ID)

		var report dto.CircularFundingResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/entities/"+a.ID+"/circular-scan", nil, &report); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if report.Detected {
			t.Errorf("expected treasury hub traffic to be excluded, got path %v", report.Path)
		}
	})

	t.Run("cycle beyond max hops is not reported", func(t *testing.T) {
		env.DB.TruncateAll(ctx)

		entities := make([]string, 0, 7)
		for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
			e := env.DB.CreateTestEntity(ctx, "grp", name, false)
			entities = append(entities, e.ID)
		}

		for i := range entities {
			record(t, entities[i], entities[(i+1)%len(entities)])
		}

		// The ring is 7 hops; a 3 hop scan must not find it.
		var report dto.CircularFundingResponse
		if code := env.doJSON(t, http.MethodGet, "/api/v1/entities/"+entities[0]+"/circular-scan?max_hops=3", nil, &report); code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, code)
		}

		if report.Detected {
			t.Errorf("expected no detection within 3 hops, got path %v", report.Path)
		}
		if report.MaxHops != 3 {
			t.Errorf("expected max hops 3, got %d", report.MaxHops)
		}
	})
}
