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

// JournalService defines the behavior needed by JournalHandler.
type JournalService interface {
	CreateJournalEntry(ctx context.Context, input usecase.CreateJournalEntryInput) (*domain.Journal, error)
	GetJournal(ctx context.Context, journalID string) (*domain.Journal, error)
	ListEntriesByAccount(ctx context.Context, input usecase.ListEntriesByAccountInput) ([]*domain.Entry, error)
}

// JournalHandler handles journal-related HTTP requests.
type JournalHandler struct {
	journalUC JournalService
}

// NewJournalHandler creates a new JournalHandler.
func NewJournalHandler(journalUC JournalService) *JournalHandler {
	return &JournalHandler{journalUC: journalUC}
}

// Create posts a balanced debit/credit journal.
func (h *JournalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateJournalEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	journal, err := h.journalUC.CreateJournalEntry(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, "failed to post journal", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.JournalFromDomain(journal))
}

// Get retrieves a journal with its entries.
func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing journal ID", "")
		return
	}

	journal, err := h.journalUC.GetJournal(r.Context(), id)
	if err != nil {
		writeDomainError(w, "failed to get journal", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.JournalFromDomain(journal))
}

// ListByAccount lists entries for an account.
func (h *JournalHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if accountID == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	entries, err := h.journalUC.ListEntriesByAccount(r.Context(), usecase.ListEntriesByAccountInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeDomainError(w, "failed to list entries", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ListEntriesResponse{
		Entries: dto.EntriesFromDomain(entries),
		Total:   int64(len(entries)),
	})
}
