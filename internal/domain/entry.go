package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry represents a single ledger entry (one leg of a journal).
// Exactly one of Debit or Credit is non-zero. Entries are append-only:
// corrections are made with reversing entries, never by mutation.
type Entry struct {
	CreatedAt              time.Time
	ID                     string
	AccountID              string
	JournalID              string
	TransactionRef         string
	Currency               string
	Debit                  decimal.Decimal
	Credit                 decimal.Decimal
	FxRate                 decimal.Decimal
	BaseAmount             decimal.Decimal
	AccountPreviousBalance decimal.Decimal
	AccountCurrentBalance  decimal.Decimal
	AccountVersion         int64
}

// LocalAmount returns the signed amount in the entry currency
// (debit positive, credit negative).
func (e *Entry) LocalAmount() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// Validate checks the one-sided invariant: exactly one of debit/credit is
// positive, the other zero.
func (e *Entry) Validate() error {
	debitSet := e.Debit.IsPositive()
	creditSet := e.Credit.IsPositive()

	if debitSet == creditSet {
		return ErrInvalidEntry
	}

	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return ErrInvalidEntry
	}

	return nil
}
