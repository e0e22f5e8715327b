package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/ledger/internal/adapter/http/dto"
	"github.com/finvault/ledger/internal/domain"
	"github.com/finvault/ledger/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	CreateSettlementRequest(ctx context.Context, input usecase.CreateSettlementRequestInput) (*domain.Settlement, error)
	ExecuteSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	ProcessP2PTransfer(ctx context.Context, input usecase.ProcessP2PTransferInput) (*domain.Settlement, error)
	SettleInternally(ctx context.Context, input usecase.SettleInternallyInput) (*usecase.SettleInternallyResult, error)
	GetSettlement(ctx context.Context, id string) (*domain.Settlement, error)
	ListSettlementsByAccount(ctx context.Context, input usecase.ListSettlementsByAccountInput) ([]*domain.Settlement, error)
}

// SettlementHandler handles settlement-related HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC}
}

// Create registers a pending settlement. No funds move until execution.
func (h *SettlementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settlement, err := h.settlementUC.CreateSettlementRequest(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to create settlement", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SettlementFromDomain(settlement))
}

// Execute runs the two-phase settlement execution.
func (h *SettlementHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing settlement ID", "")
		return
	}

	settlement, err := h.settlementUC.ExecuteSettlement(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to execute settlement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// Get retrieves a settlement by ID.
func (h *SettlementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing settlement ID", "")
		return
	}

	settlement, err := h.settlementUC.GetSettlement(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get settlement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(settlement))
}

// ListByAccount lists settlements touching an account.
func (h *SettlementHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	settlements, err := h.settlementUC.ListSettlementsByAccount(r.Context(), usecase.ListSettlementsByAccountInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list settlements", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSettlementsResponse{
		Settlements: dto.SettlementsFromDomain(settlements),
		Total:       int64(len(settlements)),
	})
}

// P2P moves funds between two owners in a single unit of work.
func (h *SettlementHandler) P2P(w http.ResponseWriter, r *http.Request) {
	var req dto.P2PTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	settlement, err := h.settlementUC.ProcessP2PTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to process transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SettlementFromDomain(settlement))
}

// Internal performs a cross-currency settlement at the internal mid rate.
func (h *SettlementHandler) Internal(w http.ResponseWriter, r *http.Request) {
	var req dto.InternalSettlementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.settlementUC.SettleInternally(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to settle internally", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InternalSettlementFromResult(result))
}
