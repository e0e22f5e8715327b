package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceTolerance is the maximum absolute base-currency imbalance a journal
// may carry and still be considered balanced. It absorbs rounding from
// repeated decimal conversions.
var BalanceTolerance = decimal.New(1, -6) // 1e-6

// Journal is the set of entries posted together as one atomic accounting
// event. The sum of the entries' base-currency amounts (debit positive,
// credit negative) is zero within BalanceTolerance.
type Journal struct {
	ID        string
	Entries   []*Entry
	Metadata  map[string]any
	CreatedAt time.Time
}

// BaseSum returns the signed base-currency sum of the journal's entries.
func (j *Journal) BaseSum() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range j.Entries {
		sum = sum.Add(e.BaseAmount)
	}

	return sum
}

// Balanced reports whether the journal balances to zero in base currency
// within tolerance.
func (j *Journal) Balanced() bool {
	return j.BaseSum().Abs().LessThanOrEqual(BalanceTolerance)
}
