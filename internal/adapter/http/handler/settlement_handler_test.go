package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/finvault/ledger/internal/adapter/http/dto"
	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

type settlementServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateSettlementRequestInput) (*domain.Settlement, error)
	executeFn  func(ctx context.Context, id string) (*domain.Settlement, error)
	p2pFn      func(ctx context.Context, input usecase.ProcessP2PTransferInput) (*domain.Settlement, error)
	internalFn func(ctx context.Context, input usecase.SettleInternallyInput) (*usecase.SettleInternallyResult, error)
	getFn      func(ctx context.Context, id string) (*domain.Settlement, error)
	listFn     func(ctx context.Context, input usecase.ListSettlementsByAccountInput) ([]*domain.Settlement, error)
}

func (s *settlementServiceStub) CreateSettlementRequest(ctx context.Context, input usecase.CreateSettlementRequestInput) (*domain.Settlement, error) {
	return s.createFn(ctx, input)
}

func (s *settlementServiceStub) ExecuteSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return s.executeFn(ctx, id)
}

func (s *settlementServiceStub) ProcessP2PTransfer(ctx context.Context, input usecase.ProcessP2PTransferInput) (*domain.Settlement, error) {
	return s.p2pFn(ctx, input)
}

func (s *settlementServiceStub) SettleInternally(ctx context.Context, input usecase.SettleInternallyInput) (*usecase.SettleInternallyResult, error) {
	return s.internalFn(ctx, input)
}

func (s *settlementServiceStub) GetSettlement(ctx context.Context, id string) (*domain.Settlement, error) {
	return s.getFn(ctx, id)
}

func (s *settlementServiceStub) ListSettlementsByAccount(ctx context.Context, input usecase.ListSettlementsByAccountInput) ([]*domain.Settlement, error) {
	return s.listFn(ctx, input)
}

func TestSettlementHandler_Create_ReturnsPending(t *testing.T) {
	h := NewSettlementHandler(&settlementServiceStub{
		createFn: func(ctx context.Context, input usecase.CreateSettlementRequestInput) (*domain.Settlement, error) {
			return &domain.Settlement{
				ID:              "set-1",
				SourceAccountID: input.SourceAccountID,
				DestAccountID:   input.DestAccountID,
				Amount:          input.Amount,
				Currency:        input.Currency,
				Status:          domain.SettlementStatusPending,
				Kind:            domain.SettlementKindInternal,
			}, nil
		},
	})

	body, _ := json.Marshal(dto.CreateSettlementRequest{
		InitiatorID:     "owner-1",
		SourceAccountID: "acc-1",
		DestAccountID:   "acc-2",
		Amount:          decimal.NewFromInt(100),
		Currency:        "USD",
	})

	req := httptest.NewRequest(http.MethodPost, "/settlements", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.SettlementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "pending" {
		t.Fatalf("expected pending settlement, got %s", resp.Status)
	}
}

func TestSettlementHandler_Execute_MapsLiquidityError(t *testing.T) {
	h := NewSettlementHandler(&settlementServiceStub{
		executeFn: func(ctx context.Context, id string) (*domain.Settlement, error) {
			return nil, domain.ErrInsufficientLiquidity
		},
	})

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/settlements/set-1/execute", nil), "id", "set-1")
	rec := httptest.NewRecorder()

	h.Execute(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestSettlementHandler_Internal_ReturnsConversionDetails(t *testing.T) {
	h := NewSettlementHandler(&settlementServiceStub{
		internalFn: func(ctx context.Context, input usecase.SettleInternallyInput) (*usecase.SettleInternallyResult, error) {
			return &usecase.SettleInternallyResult{
				Settlement: &domain.Settlement{
					ID:     "set-fx",
					Status: domain.SettlementStatusCompleted,
					Kind:   domain.SettlementKindFX,
				},
				AppliedRate:   decimal.NewFromFloat(0.88),
				SettledAmount: decimal.NewFromInt(88),
				SpreadSavings: decimal.NewFromFloat(0.05),
			}, nil
		},
	})

	body, _ := json.Marshal(dto.InternalSettlementRequest{
		InitiatorID:     "owner-1",
		SourceAccountID: "acc-eur",
		DestAccountID:   "acc-gbp",
		FromCurrency:    "EUR",
		ToCurrency:      "GBP",
		Amount:          decimal.NewFromInt(100),
	})

	req := httptest.NewRequest(http.MethodPost, "/settlements/internal", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.Internal(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.InternalSettlementResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.SettledAmount.Equal(decimal.NewFromInt(88)) {
		t.Fatalf("expected settled amount 88, got %s", resp.SettledAmount)
	}
	if !resp.SpreadSavings.Equal(decimal.NewFromFloat(0.05)) {
		t.Fatalf("expected spread savings 0.05, got %s", resp.SpreadSavings)
	}
}

func TestSettlementHandler_P2P_SameOwnerRejected(t *testing.T) {
	h := NewSettlementHandler(&settlementServiceStub{
		p2pFn: func(ctx context.Context, input usecase.ProcessP2PTransferInput) (*domain.Settlement, error) {
			return nil, domain.ErrSameOwner
		},
	})

	body, _ := json.Marshal(dto.P2PTransferRequest{
		SenderID:   "owner-1",
		ReceiverID: "owner-1",
		Amount:     decimal.NewFromInt(10),
		Currency:   "USD",
	})

	req := httptest.NewRequest(http.MethodPost, "/settlements/p2p", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.P2P(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
