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

// ValuationService defines the behavior needed by ValuationHandler.
type ValuationService interface {
	GetReconstructedBalance(ctx context.Context, accountID string) (*domain.Position, error)
	CalculateRealizedGain(ctx context.Context, input usecase.CalculateRealizedGainInput) (*usecase.RealizedGainResult, error)
	RevalueAccount(ctx context.Context, accountID string) (*domain.ValuationSnapshot, error)
	ListSnapshots(ctx context.Context, input usecase.ListSnapshotsInput) ([]*domain.ValuationSnapshot, error)
}

// ValuationHandler handles valuation-related HTTP requests.
type ValuationHandler struct {
	valuationUC ValuationService
}

// NewValuationHandler creates a new ValuationHandler.
func NewValuationHandler(valuationUC ValuationService) *ValuationHandler {
	return &ValuationHandler{valuationUC: valuationUC}
}

// Position returns the account's position reconstructed from entry replay.
func (h *ValuationHandler) Position(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	position, err := h.valuationUC.GetReconstructedBalance(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, "failed to reconstruct position", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.PositionFromDomain(position))
}

// RealizedGain computes the gain for a disposal against the average cost.
func (h *ValuationHandler) RealizedGain(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	var req dto.RealizedGainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.valuationUC.CalculateRealizedGain(r.Context(), usecase.CalculateRealizedGainInput{
		ActorID:        req.ActorID,
		AccountID:      accountID,
		AmountDisposed: req.AmountDisposed,
		DisposalRate:   req.DisposalRate,
	})
	if err != nil {
		writeDomainError(w, "failed to calculate realized gain", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.RealizedGainResponse{
		RealizedGain:    result.RealizedGain,
		AverageCostRate: result.AverageCostRate,
		Snapshot:        dto.SnapshotFromDomain(result.Snapshot),
	})
}

// Revalue snapshots the account at the current market rate.
func (h *ValuationHandler) Revalue(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	snapshot, err := h.valuationUC.RevalueAccount(r.Context(), accountID)
	if err != nil {
		writeDomainError(w, "failed to revalue account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.SnapshotFromDomain(snapshot))
}

// ListSnapshots lists valuation snapshots for an account, newest first.
func (h *ValuationHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	snapshots, err := h.valuationUC.ListSnapshots(r.Context(), usecase.ListSnapshotsInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list snapshots", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SnapshotsFromDomain(snapshots))
}
