package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the state of a settlement. A settlement is created
// pending and transitions exactly once to a terminal state; it never
// re-enters pending.
type SettlementStatus string

const (
	SettlementStatusPending   SettlementStatus = "pending"
	SettlementStatusCompleted SettlementStatus = "completed"
	SettlementStatusFailed    SettlementStatus = "failed"
)

// SettlementKind distinguishes the settlement paths.
type SettlementKind string

const (
	SettlementKindInternal SettlementKind = "internal"
	SettlementKindP2P      SettlementKind = "p2p"
	SettlementKindFX       SettlementKind = "fx"
)

// Settlement represents a request to move money between two vaults. Failed
// settlements remain in the store permanently for audit.
type Settlement struct {
	ID              string
	InitiatorID     string
	SourceAccountID string
	DestAccountID   string
	Amount          decimal.Decimal
	Currency        string
	DestCurrency    string
	AppliedRate     decimal.Decimal
	SettledAmount   decimal.Decimal
	Status          SettlementStatus
	Kind            SettlementKind
	IdempotencyKey  string
	FailureReason   string
	JournalID       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate validates the settlement request fields.
func (s *Settlement) Validate() error {
	if s.SourceAccountID == s.DestAccountID {
		return ErrSameAccount
	}

	if s.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// Terminal reports whether the settlement has reached a terminal state.
func (s *Settlement) Terminal() bool {
	return s.Status == SettlementStatusCompleted || s.Status == SettlementStatusFailed
}
