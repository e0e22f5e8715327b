package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finvault/ledger/internal/domain"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrSettlementNotFound, http.StatusNotFound},
		{domain.ErrEntityNotFound, http.StatusNotFound},
		{domain.ErrNotOwner, http.StatusForbidden},
		{domain.ErrDuplicateIdempotency, http.StatusConflict},
		{domain.ErrInsufficientLiquidity, http.StatusUnprocessableEntity},
		{domain.ErrSameAccount, http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrUnbalancedEntry, http.StatusBadRequest},
		{domain.ErrRateUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Fatalf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestMapDomainErrorUnwrapsWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("create settlement: %w", domain.ErrInsufficientLiquidity)
	if got := mapDomainError(wrapped); got != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for wrapped liquidity error, got %d", got)
	}
}

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=50&bad=abc", nil)

	if got := parseIntQuery(req, "limit", 20); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	if got := parseIntQuery(req, "bad", 20); got != 20 {
		t.Fatalf("expected default for unparsable value, got %d", got)
	}
	if got := parseIntQuery(req, "missing", 20); got != 20 {
		t.Fatalf("expected default for missing value, got %d", got)
	}
}
