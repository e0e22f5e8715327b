package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValuationReason records what triggered a snapshot.
type ValuationReason string

const (
	ValuationReasonRevaluation ValuationReason = "revaluation"
	ValuationReasonDisposal    ValuationReason = "disposal"
)

// ValuationSnapshot captures an account's book and market value at a point in
// time. Snapshots are append-only history and are never updated in place.
type ValuationSnapshot struct {
	ID             string
	AccountID      string
	LocalBalance   decimal.Decimal
	BookValue      decimal.Decimal
	MarketValue    decimal.Decimal
	RealizedGain   decimal.Decimal
	UnrealizedGain decimal.Decimal
	Rate           decimal.Decimal
	Reason         ValuationReason
	ValuedAt       time.Time
}

// Position is an account's reconstructed state from full entry replay.
// MaterializedBalance is the running balance the account row carries; the
// round-trip law requires LocalBalance to equal it.
type Position struct {
	AccountID           string
	Currency            string
	LocalBalance        decimal.Decimal
	CostBasis           decimal.Decimal
	MarketValue         decimal.Decimal
	UnrealizedGain      decimal.Decimal
	AverageCostRate     decimal.Decimal
	MaterializedBalance decimal.Decimal
	AsOf                time.Time
}

// Consistent reports whether the replayed balance matches the materialized
// running balance within tolerance.
func (p *Position) Consistent() bool {
	return p.LocalBalance.Sub(p.MaterializedBalance).Abs().LessThanOrEqual(BalanceTolerance)
}
