package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/ledger/internal/adapter/http/dto"
	"github.com/finvault/ledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.AccountReconciliation, error)
	CheckLedgerConsistency(ctx context.Context) (*usecase.LedgerConsistency, error)
}

// ReconciliationHandler handles consistency-check HTTP requests.
type ReconciliationHandler struct {
	reconciliationUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconciliationUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconciliationUC: reconciliationUC}
}

// Account replays an account's entries and reports any drift.
func (h *ReconciliationHandler) Account(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	reconciliation, err := h.reconciliationUC.ReconcileAccount(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountReconciliationFromUseCase(reconciliation))
}

// Ledger checks the global zero-sum invariant over base amounts.
func (h *ReconciliationHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	consistency, err := h.reconciliationUC.CheckLedgerConsistency(r.Context())
	if err != nil {
		writeDomainError(w, "failed to check ledger consistency", err)
		return
	}

	status := http.StatusOK
	if !consistency.Consistent {
		status = http.StatusConflict
	}

	writeJSON(w, status, dto.LedgerConsistencyResponse{
		BaseSum:    consistency.BaseSum,
		EntryCount: consistency.EntryCount,
		Consistent: consistency.Consistent,
		CheckedAt:  consistency.CheckedAt,
	})
}
