package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterEntityStatus is the state of an inter-entity obligation.
type InterEntityStatus string

const (
	InterEntityStatusPending InterEntityStatus = "pending"
	InterEntityStatusCleared InterEntityStatus = "cleared"
)

// InterEntityTransfer records a Due-To/Due-From obligation between two
// related entities of the same principal. It represents a claim, not an
// immediate balance movement; balances move when the pair is cleared.
type InterEntityTransfer struct {
	ID           string
	PrincipalID  string
	FromEntityID string
	ToEntityID   string
	Amount       decimal.Decimal
	Currency     string
	Kind         string
	Status       InterEntityStatus
	CreatedAt    time.Time
	ClearedAt    *time.Time
}

// Validate validates the transfer request fields.
func (t *InterEntityTransfer) Validate() error {
	if t.FromEntityID == t.ToEntityID {
		return ErrSameEntity
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return nil
}

// NetDirection describes which way a consolidated balance points.
type NetDirection string

const (
	NetDirectionReceivable NetDirection = "receivable"
	NetDirectionPayable    NetDirection = "payable"
	NetDirectionSettled    NetDirection = "settled"
)

// ConsolidatedBalance is the netted position between an entity pair,
// normalized to base currency at query time.
type ConsolidatedBalance struct {
	EntityA      string
	EntityB      string
	NetBase      decimal.Decimal
	Direction    NetDirection
	PendingCount int
	ComputedAt   time.Time
}

// EntityEdge is a directed edge in a principal's fund-flow graph. One edge
// exists per distinct (from, to) pair with at least one transfer.
type EntityEdge struct {
	FromEntityID string
	ToEntityID   string
}

// CircularFundingReport is the result of a cycle scan over the fund-flow
// graph. Detection is advisory: anomalies go to manual review, nothing is
// remediated automatically.
type CircularFundingReport struct {
	OriginEntityID string
	Detected       bool
	Path           []string
	Hops           int
	MaxHops        int
	ScannedAt      time.Time
}
