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

// ConsolidationService defines the behavior needed by ConsolidationHandler.
type ConsolidationService interface {
	RecordTransfer(ctx context.Context, input usecase.RecordTransferInput) (*domain.InterEntityTransfer, error)
	GetConsolidatedBalance(ctx context.Context, entityA, entityB string) (*domain.ConsolidatedBalance, error)
	RunClearingCycle(ctx context.Context, entityA, entityB string) (*usecase.ClearingResult, error)
	DetectCircularFunding(ctx context.Context, originEntityID string, maxHops int) (*domain.CircularFundingReport, error)
}

// ConsolidationHandler handles inter-entity consolidation HTTP requests.
type ConsolidationHandler struct {
	consolidationUC ConsolidationService
}

// NewConsolidationHandler creates a new ConsolidationHandler.
func NewConsolidationHandler(consolidationUC ConsolidationService) *ConsolidationHandler {
	return &ConsolidationHandler{consolidationUC: consolidationUC}
}

// RecordTransfer records a pending obligation between two entities.
func (h *ConsolidationHandler) RecordTransfer(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordInterEntityTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	transfer, err := h.consolidationUC.RecordTransfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to record transfer", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.InterEntityTransferFromDomain(transfer))
}

// Balance returns the netted base-currency position between two entities.
func (h *ConsolidationHandler) Balance(w http.ResponseWriter, r *http.Request) {
	entityA := chi.URLParam(r, "entityA")
	entityB := chi.URLParam(r, "entityB")
	if entityA == "" || entityB == "" {
		writeError(w, http.StatusBadRequest, "missing entity IDs", "")
		return
	}

	balance, err := h.consolidationUC.GetConsolidatedBalance(r.Context(), entityA, entityB)
	if err != nil {
		writeDomainError(w, "failed to consolidate balance", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsolidatedBalanceFromDomain(balance))
}

// Clear runs a clearing cycle for the entity pair.
func (h *ConsolidationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	entityA := chi.URLParam(r, "entityA")
	entityB := chi.URLParam(r, "entityB")
	if entityA == "" || entityB == "" {
		writeError(w, http.StatusBadRequest, "missing entity IDs", "")
		return
	}

	result, err := h.consolidationUC.RunClearingCycle(r.Context(), entityA, entityB)
	if err != nil {
		writeDomainError(w, "failed to run clearing cycle", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ClearingResponse{
		Balance:      dto.ConsolidatedBalanceFromDomain(result.Balance),
		Cleared:      result.Cleared,
		ClearedCount: result.ClearedCount,
	})
}

// CircularScan walks the entity's fund-flow graph looking for cycles.
func (h *ConsolidationHandler) CircularScan(w http.ResponseWriter, r *http.Request) {
	entityID := chi.URLParam(r, "id")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity ID", "")
		return
	}

	maxHops := parseIntQuery(r, "max_hops", 0)

	report, err := h.consolidationUC.DetectCircularFunding(r.Context(), entityID, maxHops)
	if err != nil {
		writeDomainError(w, "failed to scan for circular funding", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CircularFundingFromDomain(report))
}
